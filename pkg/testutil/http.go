// Package testutil provides common test utilities for handler and integration tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// GraphQLResponse is the decoded body of a GraphQL-over-HTTP response.
type GraphQLResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []GraphQLError             `json:"errors"`
}

type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path"`
	Extensions map[string]any `json:"extensions"`
}

// Messages lists the error messages in response order.
func (r *GraphQLResponse) Messages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Message)
	}
	return out
}

// NewGraphQLRequest builds a POST /graphql request.
func NewGraphQLRequest(t *testing.T, query string, variables map[string]any) *http.Request {
	t.Helper()
	return NewJSONRequest(t, http.MethodPost, "/graphql", map[string]any{
		"query":     query,
		"variables": variables,
	})
}

// NewJSONRequest creates an HTTP request with JSON body.
// The body is marshaled to JSON automatically.
func NewJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	bodyBytes, err := json.Marshal(body)
	require.NoError(t, err, "failed to marshal request body")

	req := httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DoRequest executes a request against a handler and returns the recorder.
func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// DecodeGraphQL asserts a 200 response and decodes it.
func DecodeGraphQL(t *testing.T, rr *httptest.ResponseRecorder) *GraphQLResponse {
	t.Helper()
	AssertStatus(t, rr, http.StatusOK)
	var resp GraphQLResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), "failed to unmarshal graphql response")
	return &resp
}

// Field decodes data[name] into T.
func Field[T any](t *testing.T, resp *GraphQLResponse, name string) T {
	t.Helper()
	var out T
	raw, ok := resp.Data[name]
	require.True(t, ok, "field %q missing from data", name)
	require.NoError(t, json.Unmarshal(raw, &out), "failed to unmarshal field %q", name)
	return out
}

// Cookie returns the named Set-Cookie from the response, or nil.
func Cookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// AssertStatus asserts the response status code matches expected.
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, rr.Code, "unexpected status code")
}

// AssertErrorCode asserts the JSON error envelope carries the expected code.
func AssertErrorCode(t *testing.T, rr *httptest.ResponseRecorder, expectedCode string) {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), "failed to unmarshal error response")
	assert.Equal(t, expectedCode, body["error"], "unexpected error code")
}

// AssertFieldErrors asserts the GraphQL errors, in order, by message.
func AssertFieldErrors(t *testing.T, resp *GraphQLResponse, messages ...string) {
	t.Helper()
	if len(messages) == 0 {
		assert.Empty(t, resp.Errors)
		return
	}
	assert.Equal(t, messages, resp.Messages())
}
