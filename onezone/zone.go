package onezone

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bkryza/luma-user-setup-example/rest"
)

// Client talks to the Onezone REST API, both as end users (identity and
// token harvesting) and as the zone administrator (space enrollment).
type Client struct {
	rest      *rest.Client
	adminAuth rest.BasicAuth
}

func NewClient(baseURL string, adminAuth rest.BasicAuth, insecureTLS bool) *Client {
	return &Client{
		rest:      rest.NewClient(baseURL, insecureTLS),
		adminAuth: adminAuth,
	}
}

// GetUserID fetches the zone-assigned user id of the account authenticated
// with login and password.
func (c *Client) GetUserID(ctx context.Context, login, password string) (string, error) {
	auth := rest.BasicAuth{Username: login, Password: password}

	var resp struct {
		UserID string `json:"userId"`
	}
	err := c.rest.DoJSON(ctx, http.MethodGet, "/user", &auth, nil, &resp)
	if err != nil {
		return "", err
	}
	if resp.UserID == "" {
		return "", fmt.Errorf("no userId in /user response for %q", login)
	}

	return resp.UserID, nil
}

// CreateClientToken mints a new access token for the account authenticated
// with login and password.
func (c *Client) CreateClientToken(ctx context.Context, login, password string) (string, error) {
	auth := rest.BasicAuth{Username: login, Password: password}

	var resp struct {
		Token string `json:"token"`
	}
	err := c.rest.DoJSON(ctx, http.MethodPost, "/user/client_tokens", &auth, map[string]interface{}{}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("no token in /user/client_tokens response for %q", login)
	}

	return resp.Token, nil
}

// AddSpaceUser adds a user to a space. Requires zone administrator rights.
func (c *Client) AddSpaceUser(ctx context.Context, spaceID, userID string) error {
	path := fmt.Sprintf("/spaces/%s/users/%s", spaceID, userID)
	return c.rest.DoJSON(ctx, http.MethodPut, path, &c.adminAuth, map[string]interface{}{}, nil)
}
