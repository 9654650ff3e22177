//go:build staging

package staging

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	baseURL string
	apiKey  string
	client  = &http.Client{Timeout: 10 * time.Second}
)

// TestMain points the suite at API_URL (default localhost:8080) authenticated with API_KEY
func TestMain(m *testing.M) {
	baseURL = envOr("API_URL", "http://localhost:8080")
	apiKey = envOr("API_KEY", "test-api-key")
	os.Exit(m.Run())
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newClientID returns a client id no other run has used, so runs never share cycles
func newClientID() string {
	return "staging-" + uuid.NewString()
}

// makeRequest sends an authenticated request, JSON-encoding body when non-nil, and returns the read body
func makeRequest(t *testing.T, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, baseURL+path, payload)
	require.NoError(t, err)
	req.Header.Set("X-API-Key", apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(t, err, "%s %s", method, path)
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

// decodeJSON unmarshals a response body, failing the test on malformed JSON
func decodeJSON[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}
