package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONResponse decodes JSON response into v and verifies success
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// AssertEmptyObject verifies the body is exactly the JSON object {}
func AssertEmptyObject(t *testing.T, resp *http.Response) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	assert.JSONEq(t, `{}`, string(body))
}

// AssertFieldError verifies an API validation body carries message on field
func AssertFieldError(t *testing.T, resp *http.Response, field, message string) {
	t.Helper()

	var result ErrorResponse
	AssertJSONResponse(t, resp, &result)
	require.Contains(t, result.Errors, field, "no errors for field %s", field)
	assert.Contains(t, result.Errors[field], message)
}

// AssertRedirect verifies a 302 to path
func AssertRedirect(t *testing.T, resp *http.Response, path string) {
	t.Helper()

	assert.Equal(t, http.StatusFound, resp.StatusCode, "unexpected status code")
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, path, loc.Path)
}
