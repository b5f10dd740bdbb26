package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureJSON(t *testing.T) *bytes.Buffer {
	t.Helper()
	Setup("debug", "json")
	var buf bytes.Buffer
	logrus.SetOutput(&buf)
	t.Cleanup(func() {
		logrus.SetOutput(os.Stdout)
		logrus.SetLevel(logrus.InfoLevel)
	})
	return &buf
}

func TestWithContext_TagsUser(t *testing.T) {
	buf := captureJSON(t)

	ctx := ContextWithUserID(context.Background(), "u-1")
	WithContext(ctx).WithField("organization_id", "acme-corp").Info("joined")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "u-1", line["user"])
	assert.Equal(t, "acme-corp", line["organization_id"])
	assert.Equal(t, "joined", line["msg"])
}

func TestWithContext_Anonymous(t *testing.T) {
	buf := captureJSON(t)

	WithContext(context.Background()).Warn("lookup failed")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "anonymous", line["user"])
	assert.Equal(t, "warning", line["level"])
}

func TestSetup_InvalidLevelDefaultsToInfo(t *testing.T) {
	Setup("chatty", "text")
	t.Cleanup(func() { Setup("info", "json") })

	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
	_, isText := logrus.StandardLogger().Formatter.(*logrus.TextFormatter)
	assert.True(t, isText)
}
