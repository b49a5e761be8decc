package luma

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/bkryza/luma-user-setup-example/rest"
)

// Client talks to the administrative API of a LUMA mapping service. The
// observed deployments expose it without authentication; auth may be set
// for installations that protect it.
type Client struct {
	rest *rest.Client
	auth *rest.BasicAuth
}

func NewClient(baseURL string, auth *rest.BasicAuth, insecureTLS bool) *Client {
	return &Client{
		rest: rest.NewClient(baseURL, insecureTLS),
		auth: auth,
	}
}

// GroupMapping sets a default GID for a space on a named storage.
type GroupMapping struct {
	GID         uint   `json:"gid"`
	StorageName string `json:"storageName"`
}

// StorageCredentials maps a platform user to a UID/GID pair on a named
// storage.
type StorageCredentials struct {
	StorageName string `json:"storageName"`
	Type        string `json:"type"`
	UID         uint   `json:"uid"`
	GID         uint   `json:"gid"`
}

// SetSpaceDefaultGroup sets the default group mappings for a space. Storages
// that apply group inheritance expect this before per-user registration.
func (c *Client) SetSpaceDefaultGroup(ctx context.Context, spaceID string, mappings []GroupMapping) error {
	path := fmt.Sprintf("/admin/spaces/%s/default_group", spaceID)
	return c.rest.DoJSON(ctx, http.MethodPut, path, c.auth, mappings, nil)
}

// AddUserMapping registers a platform user with LUMA and returns the
// LUMA-local id, taken from the last path segment of the response Location
// header.
func (c *Client) AddUserMapping(ctx context.Context, userID string) (string, error) {
	header, _, err := c.rest.Do(ctx, http.MethodPost, "/admin/users", c.auth, map[string]string{"id": userID})
	if err != nil {
		return "", err
	}

	location := header.Get("Location")
	if location == "" {
		return "", fmt.Errorf("no Location header in LUMA response for user %q", userID)
	}

	lumaID := location[strings.LastIndex(location, "/")+1:]
	if lumaID == "" {
		return "", fmt.Errorf("malformed Location header %q in LUMA response for user %q", location, userID)
	}

	return lumaID, nil
}

// SetUserCredentials sets the storage UID/GID credentials of a registered
// LUMA user.
func (c *Client) SetUserCredentials(ctx context.Context, lumaID string, credentials []StorageCredentials) error {
	path := fmt.Sprintf("/admin/users/%s/credentials", lumaID)
	return c.rest.DoJSON(ctx, http.MethodPut, path, c.auth, credentials, nil)
}
