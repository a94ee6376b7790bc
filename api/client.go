package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TokenProvider returns the bearer token to attach to authenticated requests.
// Typically this is session.Manager.Token.
type TokenProvider func(ctx context.Context) (string, error)

// Client talks to the remote PhotoMS server. All methods take a context and
// perform exactly one request; retry policy is left to the caller.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	tokenProvider TokenProvider
}

// NewClient creates a client for the given server base URL. tokenProvider may
// be nil for unauthenticated use (login/register only).
func NewClient(baseURL string, timeout time.Duration, tokenProvider TokenProvider) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
			},
		},
		tokenProvider: tokenProvider,
	}
}

// newRequest builds a request against the API base path, attaching the bearer
// token when a provider is configured.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api"+path, body)
	if err != nil {
		return nil, fmt.Errorf("api: building %s %s: %w", method, path, err)
	}

	if c.tokenProvider != nil {
		token, tokenErr := c.tokenProvider(ctx)
		if tokenErr != nil {
			return nil, fmt.Errorf("api: resolving token: %w", tokenErr)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

// doJSON executes req and decodes a 2xx JSON response into out (which may be
// nil to discard the body). Non-2xx responses become *Error or ErrNotFound.
func (c *Client) doJSON(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decoding %s %s response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// postJSON marshals body and POSTs it to path, decoding the response into out.
func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("api: encoding %s payload: %w", path, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doJSON(req, out)
}
