package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Do_AcceptedStatuses(t *testing.T) {
	for _, status := range []int{200, 201, 202, 204} {
		server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			rw.WriteHeader(status)
		}))

		client := NewClient(server.URL, false)
		_, _, err := client.Do(context.Background(), "GET", "/users", nil, nil)
		require.NoError(t, err, "status %d must be accepted", status)

		server.Close()
	}
}

func Test_Do_UnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		rw.WriteHeader(500)
		_, _ = rw.Write([]byte(`{"error":"internal server error"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, false)
	_, _, err := client.Do(context.Background(), "POST", "/users", nil, map[string]string{"username": "XX01001"})

	require.Error(t, err)

	var statusErr *UnexpectedStatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, 500, statusErr.Status)
	require.Contains(t, statusErr.Body, "internal server error")
	require.Contains(t, statusErr.URL, "/users")
}

func Test_Do_BasicAuthAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		username, password, ok := req.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "admin", username)
		require.Equal(t, "password", password)
		require.Equal(t, "application/json", req.Header.Get("Content-Type"))

		rw.WriteHeader(204)
	}))
	defer server.Close()

	client := NewClient(server.URL, false)
	auth := BasicAuth{Username: "admin", Password: "password"}
	_, _, err := client.Do(context.Background(), "PUT", "/spaces/s1/users/u1", &auth, map[string]interface{}{})

	require.NoError(t, err)
}

func Test_DoJSON_Unmarshal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte(`{"userId":"abc123"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, false)

	var resp struct {
		UserID string `json:"userId"`
	}
	err := client.DoJSON(context.Background(), "GET", "/user", nil, nil, &resp)

	require.NoError(t, err)
	require.Equal(t, "abc123", resp.UserID)
}

func Test_NewClient_TrimsTrailingSlash(t *testing.T) {
	client := NewClient("http://example.com/api/v3/onezone/", false)
	require.Equal(t, "http://example.com/api/v3/onezone", client.BaseURL)
}
