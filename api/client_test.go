package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	cases := map[string]string{
		"127.0.0.1:11500":         "http://127.0.0.1:11500",
		"https://tok.example.com": "https://tok.example.com",
		"http://[::1]:8080":       "http://[::1]:8080",
	}

	for host, want := range cases {
		t.Run(host, func(t *testing.T) {
			c, err := NewClient(host, nil)
			require.NoError(t, err)
			assert.Equal(t, want, c.base.String())
		})
	}
}

func TestClientEncode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/encode", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req EncodeRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hi", req.Text)

		assert.NoError(t, json.NewEncoder(w).Encode(EncodeResponse{IDs: []int{104, 105}}))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, srv.Client())
	require.NoError(t, err)

	resp, err := c.Encode(t.Context(), &EncodeRequest{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, []int{104, 105}, resp.IDs)
}

func TestClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		assert.NoError(t, json.NewEncoder(w).Encode(ErrorResponse{Message: "unknown token id 999", Code: ErrCodeUnknownToken}))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, srv.Client())
	require.NoError(t, err)

	_, err = c.Decode(t.Context(), &DecodeRequest{IDs: []int{999}})

	var serr StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, http.StatusNotFound, serr.StatusCode)
	assert.Equal(t, ErrCodeUnknownToken, serr.Code)
	assert.Equal(t, "404 Not Found: unknown token id 999", serr.Error())
}

func TestStatusErrorMessage(t *testing.T) {
	assert.Equal(t, "oops", StatusError{ErrorMessage: "oops"}.Error())
	assert.Equal(t, "500 Internal Server Error", StatusError{Status: "500 Internal Server Error"}.Error())
	assert.Contains(t, StatusError{}.Error(), "server logs")
}
