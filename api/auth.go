package api

import (
	"context"

	"github.com/camden-git/photomscompanion/models"
)

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest carries new-account details.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token and the account entity. Auth
// endpoints never attach a bearer token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.withoutToken().postJSON(ctx, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new account and returns a token for it, so callers can
// log the user in immediately.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.withoutToken().postJSON(ctx, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// withoutToken returns a shallow copy of the client that skips bearer auth.
func (c *Client) withoutToken() *Client {
	clone := *c
	clone.tokenProvider = nil
	return &clone
}
