package onezone

import (
	"context"
	"net/http"

	"github.com/bkryza/luma-user-setup-example/rest"
)

// PanelClient talks to the Onepanel administrative API of a zone. Account
// creation requires a panel administrator.
type PanelClient struct {
	rest *rest.Client
	auth rest.BasicAuth
}

func NewPanelClient(baseURL string, auth rest.BasicAuth, insecureTLS bool) *PanelClient {
	return &PanelClient{
		rest: rest.NewClient(baseURL, insecureTLS),
		auth: auth,
	}
}

type createUserRequest struct {
	Username string `json:"username"`
	UserRole string `json:"userRole"`
	Password string `json:"password"`
}

// CreateUser creates a basic-auth account with the "regular" role.
func (c *PanelClient) CreateUser(ctx context.Context, username, password string) error {
	return c.rest.DoJSON(ctx, http.MethodPost, "/users", &c.auth, createUserRequest{
		Username: username,
		UserRole: "regular",
		Password: password,
	}, nil)
}
