package rest

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/sirupsen/logrus"
)

// BasicAuth holds credentials for HTTP basic authentication.
type BasicAuth struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Every Onedata and LUMA endpoint this tool talks to reports success with
// one of these codes.
var acceptedStatuses = map[int]struct{}{
	http.StatusOK:        {},
	http.StatusCreated:   {},
	http.StatusAccepted:  {},
	http.StatusNoContent: {},
}

// UnexpectedStatusError is returned for any response outside the accepted
// status set. It carries the server's error body.
type UnexpectedStatusError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.Status, e.Body)
}

// Client issues JSON requests against a single REST API root.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a client for the API rooted at baseURL. With insecureTLS
// set, server certificates are not verified (self-signed certificates are the
// norm in the observed deployments).
func NewClient(baseURL string, insecureTLS bool) *Client {
	httpClient := cleanhttp.DefaultPooledClient()
	if insecureTLS {
		transport := cleanhttp.DefaultPooledTransport()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // nolint:gosec
		httpClient.Transport = transport
	}

	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    httpClient,
	}
}

// Do issues a request with an optional JSON body and optional basic auth,
// validates the response status against the accepted set and returns the
// response headers and raw body. The error body is logged before an
// UnexpectedStatusError is returned.
func (c *Client) Do(ctx context.Context, method, path string, auth *BasicAuth, body interface{}) (http.Header, []byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal %s %s request: %w", method, path, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return nil, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != nil {
		req.SetBasicAuth(auth.Username, auth.Password)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close() // nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	if _, ok := acceptedStatuses[resp.StatusCode]; !ok {
		logrus.Errorf("%s %s returned %d: %s", method, req.URL, resp.StatusCode, string(respBody))
		return nil, nil, &UnexpectedStatusError{
			Method: method,
			URL:    req.URL.String(),
			Status: resp.StatusCode,
			Body:   string(respBody),
		}
	}

	return resp.Header, respBody, nil
}

// DoJSON is Do with the response body unmarshalled into out. A nil out
// discards the body.
func (c *Client) DoJSON(ctx context.Context, method, path string, auth *BasicAuth, body, out interface{}) error {
	_, respBody, err := c.Do(ctx, method, path, auth, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	err = json.Unmarshal(respBody, out)
	if err != nil {
		return fmt.Errorf("unmarshal %s %s response: %w", method, path, err)
	}

	return nil
}
