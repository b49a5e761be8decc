package luma

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func Test_Client_SetSpaceDefaultGroup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		require.Equal(t, "PUT", req.Method)
		require.Equal(t, "/admin/spaces/space1/default_group", req.URL.Path)

		// no auth in the observed deployments
		_, _, ok := req.BasicAuth()
		require.False(t, ok)

		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.Equal(t, int64(1), gjson.GetBytes(body, "#").Int())
		require.Equal(t, int64(2000), gjson.GetBytes(body, "0.gid").Int())
		require.Equal(t, "DESY", gjson.GetBytes(body, "0.storageName").String())

		rw.WriteHeader(204)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, false)
	err := client.SetSpaceDefaultGroup(context.Background(), "space1", []GroupMapping{
		{GID: 2000, StorageName: "DESY"},
	})

	require.NoError(t, err)
}

func Test_Client_AddUserMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		require.Equal(t, "POST", req.Method)
		require.Equal(t, "/admin/users", req.URL.Path)

		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.Equal(t, "onedata-user-id-1", gjson.GetBytes(body, "id").String())

		rw.Header().Set("Location", "/api/v3/luma/admin/users/42")
		rw.WriteHeader(201)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, false)
	lumaID, err := client.AddUserMapping(context.Background(), "onedata-user-id-1")

	require.NoError(t, err)
	require.Equal(t, "42", lumaID)
}

func Test_Client_AddUserMapping_NoLocation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		rw.WriteHeader(201)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, false)
	_, err := client.AddUserMapping(context.Background(), "onedata-user-id-1")

	require.Error(t, err)
	require.Contains(t, err.Error(), "no Location header")
}

func Test_Client_SetUserCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		require.Equal(t, "PUT", req.Method)
		require.Equal(t, "/admin/users/42/credentials", req.URL.Path)

		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.Equal(t, "DESY", gjson.GetBytes(body, "0.storageName").String())
		require.Equal(t, "posix", gjson.GetBytes(body, "0.type").String())
		require.Equal(t, int64(1001), gjson.GetBytes(body, "0.uid").Int())
		require.Equal(t, int64(1001), gjson.GetBytes(body, "0.gid").Int())

		rw.WriteHeader(204)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, false)
	err := client.SetUserCredentials(context.Background(), "42", []StorageCredentials{
		{StorageName: "DESY", Type: "posix", UID: 1001, GID: 1001},
	})

	require.NoError(t, err)
}
