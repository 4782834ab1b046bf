// ABOUTME: Typed wrappers for the Companion auth and chat endpoints
// ABOUTME: Request/response shapes mirror the backend JSON contract

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by POST /auth/login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// SignupRequest is the body of POST /auth/signup
type SignupRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// HistoryMessage is one entry of GET /chat/history
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatMessage is both the body and the response of POST /chat/chat
type ChatMessage struct {
	Content string `json:"content"`
}

// HealthResponse represents the service root response
type HealthResponse struct {
	Message string `json:"message"`
}

// Login calls POST /auth/login
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	var tok TokenResponse
	if err := c.Do(ctx, http.MethodPost, "/auth/login", LoginRequest{Email: email, Password: password}, &tok); err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("invalid response from backend: missing access_token")
	}
	return &tok, nil
}

// Signup calls POST /auth/signup. The response body is ignored.
func (c *Client) Signup(ctx context.Context, req *SignupRequest) error {
	return c.Do(ctx, http.MethodPost, "/auth/signup", req, nil)
}

// History calls GET /chat/history
func (c *Client) History(ctx context.Context) ([]HistoryMessage, error) {
	var history []HistoryMessage
	if err := c.Do(ctx, http.MethodGet, "/chat/history", nil, &history); err != nil {
		return nil, err
	}
	if history == nil {
		history = []HistoryMessage{}
	}
	return history, nil
}

// SendChat calls POST /chat/chat and returns the model's reply
func (c *Client) SendChat(ctx context.Context, content string) (*ChatMessage, error) {
	var reply ChatMessage
	if err := c.Do(ctx, http.MethodPost, "/chat/chat", ChatMessage{Content: content}, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// ClearHistory calls DELETE /chat/history
func (c *Client) ClearHistory(ctx context.Context) error {
	return c.Do(ctx, http.MethodDelete, "/chat/history", nil, nil)
}

// Health calls GET / on the service origin (the API is mounted below it)
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	root, err := c.rootURL()
	if err != nil {
		return nil, err
	}
	var health HealthResponse
	if err := c.do(ctx, http.MethodGet, root, "/", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// rootURL resolves "/" against the base URL
func (c *Client) rootURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid API URL %q: %w", c.baseURL, err)
	}
	return u.ResolveReference(&url.URL{Path: "/"}).String(), nil
}
