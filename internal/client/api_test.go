// ABOUTME: Tests for the typed auth and chat endpoint wrappers
// ABOUTME: Verifies paths, methods and JSON bodies against an httptest backend

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLogin_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body LoginRequest
		json.NewDecoder(r.Body).Decode(&body)
		if body.Email != "a@b.com" || body.Password != "pw" {
			t.Errorf("unexpected body %+v", body)
		}
		json.NewEncoder(w).Encode(TokenResponse{AccessToken: "tok1", TokenType: "bearer"})
	}))
	defer server.Close()

	c := New(server.URL+"/api", nil)
	tok, err := c.Login(context.Background(), "a@b.com", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.AccessToken != "tok1" {
		t.Errorf("expected tok1, got %s", tok.AccessToken)
	}
}

func TestLogin_MissingToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token_type":"bearer"}`))
	}))
	defer server.Close()

	c := New(server.URL, nil)
	if _, err := c.Login(context.Background(), "a@b.com", "pw"); err == nil {
		t.Error("expected error for missing access_token")
	}
}

func TestSignup_SendsSnakeCaseBody(t *testing.T) {
	var raw map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/signup" {
			t.Errorf("expected path /auth/signup, got %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&raw)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"_id":"1","email":"a@b.com"}`))
	}))
	defer server.Close()

	c := New(server.URL, nil)
	err := c.Signup(context.Background(), &SignupRequest{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           "a@b.com",
		Password:        "pw",
		ConfirmPassword: "pw",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{
		"first_name":       "Ada",
		"last_name":        "Lovelace",
		"email":            "a@b.com",
		"password":         "pw",
		"confirm_password": "pw",
	}
	if diff := cmp.Diff(want, raw); diff != "" {
		t.Errorf("signup body mismatch (-want +got):\n%s", diff)
	}
}

func TestHistory_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/chat/history" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`[{"role":"user","content":"hi"},{"role":"model","content":"hello"}]`))
	}))
	defer server.Close()

	c := New(server.URL, nil)
	history, err := c.History(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []HistoryMessage{{Role: "user", Content: "hi"}, {Role: "model", Content: "hello"}}
	if diff := cmp.Diff(want, history); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestHistory_NullBodyIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	}))
	defer server.Close()

	c := New(server.URL, nil)
	history, err := c.History(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if history == nil || len(history) != 0 {
		t.Errorf("expected empty non-nil history, got %#v", history)
	}
}

func TestSendChat_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat/chat" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body ChatMessage
		json.NewDecoder(r.Body).Decode(&body)
		if body.Content != "hello" {
			t.Errorf("expected content hello, got %q", body.Content)
		}
		json.NewEncoder(w).Encode(ChatMessage{Content: "hi there"})
	}))
	defer server.Close()

	c := New(server.URL, nil)
	reply, err := c.SendChat(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Content != "hi there" {
		t.Errorf("expected 'hi there', got %q", reply.Content)
	}
}

func TestClearHistory_UsesDelete(t *testing.T) {
	var method string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.Write([]byte(`{"message":"Chat history cleared successfully"}`))
	}))
	defer server.Close()

	c := New(server.URL, nil)
	if err := c.ClearHistory(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if method != http.MethodDelete {
		t.Errorf("expected DELETE, got %s", method)
	}
}

func TestHealth_HitsServiceRoot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			t.Errorf("expected path /, got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(HealthResponse{Message: "Welcome to the Supportive Companion API!"})
	}))
	defer server.Close()

	c := New(server.URL+"/api", nil)
	health, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if health.Message == "" {
		t.Error("expected health message")
	}
}
