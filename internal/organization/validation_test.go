package organization

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeID(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"Acme Corp", "acme-corp"},
		{"Acme   Corp", "acme-corp"},
		{"ACME_Corp!!", "acmecorp"},
		{"my-org-2024", "my-org-2024"},
		{"  leading", "-leading"},
		{"Ünïcödé Org", "ncd-org"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeID(tc.input))
		})
	}
}

func TestNormalizeID_Idempotent(t *testing.T) {
	inputs := []string{"Acme Corp", "a  b   c", "Hello, World!", " x ", "--dash--", "Tab\tSeparated"}
	for _, in := range inputs {
		once := NormalizeID(in)
		assert.Equal(t, once, NormalizeID(once), "input %q", in)
	}
}

func TestValidateID(t *testing.T) {
	accepted := []string{"abc", "acme-corp", "123", "a-1", strings.Repeat("a", 50)}
	for _, id := range accepted {
		assert.NoError(t, ValidateID(id), "expected %q to be accepted", id)
	}

	rejected := map[string]string{
		"ab":                    "Organization ID must be between 3 and 50 characters.",
		strings.Repeat("a", 51): "Organization ID must be between 3 and 50 characters.",
		"Acme":                  "Organization ID can only contain lowercase letters, numbers, and hyphens.",
		"acme corp":             "Organization ID can only contain lowercase letters, numbers, and hyphens.",
		"acme_corp":             "Organization ID can only contain lowercase letters, numbers, and hyphens.",
		"":                      "Organization ID can only contain lowercase letters, numbers, and hyphens.",
	}
	for id, message := range rejected {
		err := ValidateID(id)
		if assert.Error(t, err, "expected %q to be rejected", id) {
			assert.True(t, IsValidation(err))
			assert.Equal(t, message, UserMessage(err))
		}
	}
}

// Anything NormalizeID produces either validates or fails only on length
func TestNormalizeThenValidate(t *testing.T) {
	for _, in := range []string{"Acme Corp", "x", "Über Großartig GmbH", strings.Repeat("ab ", 30)} {
		err := ValidateID(NormalizeID(in))
		if err != nil {
			assert.Equal(t, "Organization ID must be between 3 and 50 characters.", UserMessage(err), "input %q", in)
		}
	}
}
