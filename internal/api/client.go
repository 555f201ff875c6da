// Package api is the HTTP client for the host management API. All calls
// take a context, attach the bearer token when one is available, and map
// failures onto the structured error codes the rest of opsdeck keys on.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/opsdeck/opsdeck/internal/errors"
	"github.com/opsdeck/opsdeck/internal/logger"
)

// TokenSource supplies the current access token, if any. The session store
// implements this so the client never holds credential state of its own.
type TokenSource interface {
	Token() (string, bool)
}

// Client talks to one management API server.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     logger.Logger
}

// NewClient creates a client for the given base URL. The URL should not
// include the /api prefix; paths passed to requests carry it.
func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.Noop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// SetTokenSource wires in the token provider. Set once at startup, after
// the session store exists.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// detailBody is the error envelope the server wraps failures in.
type detailBody struct {
	Detail string `json:"detail"`
}

// do performs one request and decodes the JSON response into out (which
// may be nil for calls where the body is discarded).
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "Failed to encode request body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "Failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	c.log.Debug("%s %s", method, path)
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrAPI,
			fmt.Sprintf("Cannot reach %s", c.baseURL),
			"Check the server URL and that the management API is running")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return errors.New(errors.ErrAuth,
			"Not authenticated",
			"Run 'opsdeck login' to sign in")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.apiError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "Failed to decode server response")
	}
	return nil
}

// apiError turns a non-2xx response into a structured error, preferring
// the server's own detail message when it sent one.
func (c *Client) apiError(resp *http.Response) error {
	message := fmt.Sprintf("Server returned %s", resp.Status)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8192))
	if err == nil {
		var detail detailBody
		if json.Unmarshal(raw, &detail) == nil && detail.Detail != "" {
			message = detail.Detail
		}
	}

	code := errors.ErrAPI
	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusForbidden {
		code = errors.ErrAction
	}
	return errors.New(code, message, "")
}

// loginRequest matches the server's login schema.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for an access token. It does not attach
// any existing token; a failed login must not disturb the current session.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	encoded, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, errors.Wrap(err, "Failed to encode credentials")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", bytes.NewReader(encoded))
	if err != nil {
		return nil, errors.Wrap(err, "Failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrAPI,
			fmt.Sprintf("Cannot reach %s", c.baseURL),
			"Check the server URL and that the management API is running")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, errors.New(errors.ErrAuth,
			"Incorrect username or password",
			"Check your credentials and try again")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.apiError(resp)
	}

	var tokens LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, errors.Wrap(err, "Failed to decode login response")
	}
	if tokens.AccessToken == "" {
		return nil, errors.New(errors.ErrAPI,
			"Login response did not include a token",
			"The server may be misconfigured")
	}
	return &tokens, nil
}

// Me fetches the profile of the authenticated user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Overview fetches the combined dashboard payload.
func (c *Client) Overview(ctx context.Context) (*Overview, error) {
	var overview Overview
	if err := c.do(ctx, http.MethodGet, "/api/dashboard/overview", nil, &overview); err != nil {
		return nil, err
	}
	return &overview, nil
}

// Services fetches the full systemd unit list.
func (c *Client) Services(ctx context.Context) ([]Service, error) {
	var list ServiceList
	if err := c.do(ctx, http.MethodGet, "/api/services/list", nil, &list); err != nil {
		return nil, err
	}
	return list.Services, nil
}

// ServiceAction asks the server to start, stop, or restart a unit.
func (c *Client) ServiceAction(ctx context.Context, name, action string) (*ActionResult, error) {
	var result ActionResult
	path := fmt.Sprintf("/api/services/%s/%s", url.PathEscape(name), url.PathEscape(action))
	if err := c.do(ctx, http.MethodPost, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SystemInfo fetches the detailed host report.
func (c *Client) SystemInfo(ctx context.Context) (*HostInfo, error) {
	var info HostInfo
	if err := c.do(ctx, http.MethodGet, "/api/system/info", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// RestartSystem asks the host to reboot.
func (c *Client) RestartSystem(ctx context.Context) (*MessageResponse, error) {
	var msg MessageResponse
	if err := c.do(ctx, http.MethodPost, "/api/system/restart", nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ShutdownSystem asks the host to power off.
func (c *Client) ShutdownSystem(ctx context.Context) (*MessageResponse, error) {
	var msg MessageResponse
	if err := c.do(ctx, http.MethodPost, "/api/system/shutdown", nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
