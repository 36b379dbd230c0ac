package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultVerifyTimeout bounds how long a credential verification may take
// before the in-flight request is cancelled.
const DefaultVerifyTimeout = 10 * time.Second

// Client represents an HTTP client for the Folio API
type Client struct {
	baseURL       string
	httpClient    *http.Client
	verifyTimeout time.Duration
}

// New creates a new API client for the given base URL
// (e.g. "http://localhost:8080")
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		verifyTimeout: DefaultVerifyTimeout,
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// SetVerifyTimeout overrides the verification timeout
func (c *Client) SetVerifyTimeout(d time.Duration) {
	if d > 0 {
		c.verifyTimeout = d
	}
}

// User represents the account returned by the API
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the login and dev-token responses
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// verifyResponse represents the verification response body
type verifyResponse struct {
	User User `json:"user"`
}

// SetupRequest represents the first-run setup request body
type SetupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Setup performs first-run setup, creating the admin account. It only
// succeeds once per deployment; afterwards the server answers 409.
func (c *Client) Setup(ctx context.Context, email, password, name string) (*LoginResponse, error) {
	jsonData, err := json.Marshal(SetupRequest{Email: email, Password: password, Name: name})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/setup", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("setup failed (status %d): %s", resp.StatusCode, string(body))
	}

	var setupResp LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&setupResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &setupResp, nil
}

// Login authenticates the user and returns a token with the user identity.
// Rejected credentials surface as ErrBadCredentials.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	jsonData, err := json.Marshal(LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/auth/login", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		io.Copy(io.Discard, resp.Body)
		return nil, ErrBadCredentials
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("login failed (status %d): %s", resp.StatusCode, string(body))
	}

	var loginResp LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &loginResp, nil
}

// Verify asks the backend whether the credential is still valid and, if so,
// returns the associated user. The call is bounded by the verify timeout;
// on expiry the in-flight request is cancelled and ErrVerifyTimeout is
// returned. A 401/403 becomes ErrVerifyInvalid; any transport fault becomes
// ErrVerifyUnreachable. Verify never touches stored credentials.
func (c *Client) Verify(ctx context.Context, token string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, c.verifyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/auth/verify", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrVerifyTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrVerifyUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		io.Copy(io.Discard, resp.Body)
		return nil, ErrVerifyInvalid
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrVerifyUnreachable, resp.StatusCode, string(body))
	}

	var verifyResp verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&verifyResp); err != nil {
		// A garbled body is a transient fault, not a verdict on the credential
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrVerifyUnreachable, err)
	}

	return &verifyResp.User, nil
}

// Logout notifies the backend that the token should be revoked.
// The response body is ignored; callers treat failures as best-effort.
func (c *Client) Logout(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/auth/logout", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("logout notify failed (status %d)", resp.StatusCode)
	}

	return nil
}

// DevToken requests a fresh credential from the development-only endpoint
func (c *Client) DevToken(ctx context.Context) (*LoginResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/auth/dev-token", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("dev token unavailable (status %d): %s", resp.StatusCode, string(body))
	}

	var tokenResp LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &tokenResp, nil
}
