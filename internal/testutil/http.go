package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

// HTTPTestClient calls a running test server as one caller
type HTTPTestClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewHTTPTestClient(baseURL, token string) *HTTPTestClient {
	return &HTTPTestClient{
		BaseURL: baseURL,
		Token:   token,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// WithToken returns a client for the same server acting as another caller
func (c *HTTPTestClient) WithToken(token string) *HTTPTestClient {
	return &HTTPTestClient{BaseURL: c.BaseURL, Token: token, Client: c.Client}
}

// Anonymous returns a client that sends no Authorization header
func (c *HTTPTestClient) Anonymous() *HTTPTestClient {
	return c.WithToken("")
}

// POST sends body encoded as JSON
func (c *HTTPTestClient) POST(t *testing.T, path string, body interface{}) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}
	return c.do(t, http.MethodPost, path, bytes.NewReader(payload))
}

// POSTRaw sends body as-is, for malformed payload tests
func (c *HTTPTestClient) POSTRaw(t *testing.T, path, body string) *http.Response {
	t.Helper()
	return c.do(t, http.MethodPost, path, strings.NewReader(body))
}

func (c *HTTPTestClient) GET(t *testing.T, path string) *http.Response {
	t.Helper()
	return c.do(t, http.MethodGet, path, nil)
}

func (c *HTTPTestClient) do(t *testing.T, method, path string, body io.Reader) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		t.Fatalf("Failed to create %s %s: %v", method, path, err)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

// DecodeJSON reads and closes the body, failing the test on malformed JSON
func DecodeJSON(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()

	body := ReadBody(t, resp)
	if err := json.Unmarshal([]byte(body), target); err != nil {
		t.Fatalf("Failed to decode response (body: %s): %v", body, err)
	}
}

func ReadBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	return string(body)
}

// AssertStatusCode reports a mismatch with the body attached; on a match the body is left unread
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()

	if resp.StatusCode != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, resp.StatusCode, ReadBody(t, resp))
	}
}
