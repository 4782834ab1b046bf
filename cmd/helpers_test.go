// ABOUTME: Shared fixtures for command tests
// ABOUTME: Provides a fake Companion server and resets global flag state

package cmd

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/markalston/companion/internal/client"
)

const (
	testPassword = "secret"
	testToken    = "tok-1"
)

// fakeServer mimics the Companion backend routes
type fakeServer struct {
	mu        sync.Mutex
	history   []client.HistoryMessage
	sent      []string
	clears    int
	failChat  bool
	failClear bool
	revoked   bool
}

// update mutates the fake under its lock
func (f *fakeServer) update(fn func(f *fakeServer)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

// snapshot returns the messages received, the clear count and the history size
func (f *fakeServer) snapshot() (sent []string, clears, historyLen int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...), f.clears, len(f.history)
}

func (f *fakeServer) authorized(r *http.Request) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.revoked && r.Header.Get("Authorization") == "Bearer "+testToken
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the Companion API"})
	})

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req client.LoginRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Password != testPassword {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
			return
		}
		writeJSON(w, http.StatusOK, client.TokenResponse{AccessToken: testToken, TokenType: "bearer"})
	})

	mux.HandleFunc("POST /api/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		var req client.SignupRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Email == "taken@example.com" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Email already registered"})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"email": req.Email})
	})

	mux.HandleFunc("GET /api/chat/history", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, f.history)
	})

	mux.HandleFunc("POST /api/chat/chat", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		var msg client.ChatMessage
		json.NewDecoder(r.Body).Decode(&msg)

		f.mu.Lock()
		defer f.mu.Unlock()
		f.sent = append(f.sent, msg.Content)
		if f.failChat {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "model unavailable"})
			return
		}
		reply := "echo: " + msg.Content
		f.history = append(f.history,
			client.HistoryMessage{Role: "user", Content: msg.Content},
			client.HistoryMessage{Role: "model", Content: reply})
		writeJSON(w, http.StatusOK, client.ChatMessage{Content: reply})
	})

	mux.HandleFunc("DELETE /api/chat/history", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failClear {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "db locked"})
			return
		}
		f.clears++
		f.history = nil
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

// setupTest starts a fake server and points the commands at it with a
// private config directory. Flag state is reset on cleanup.
func setupTest(t *testing.T) *fakeServer {
	t.Helper()

	fake := &fakeServer{}
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	t.Chdir(t.TempDir())
	for _, key := range []string{
		"COMPANION_API_URL",
		"COMPANION_CONFIG_DIR",
		"COMPANION_CREDENTIAL_STORE",
		"COMPANION_HTTP_TIMEOUT",
		"COMPANION_SEND_TIMEOUT",
		"COMPANION_LOGOUT_ON_UNAUTHORIZED",
		"LOG_LEVEL",
		"LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}

	resetFlags()
	apiURL = server.URL + "/api"
	configDir = t.TempDir()
	logOutput = io.Discard
	t.Cleanup(resetFlags)

	return fake
}

func resetFlags() {
	apiURL = ""
	configDir = ""
	jsonOutput = false
	verbose = false
	loginEmail = ""
	loginPasswordStdin = false
	signupFirstName = ""
	signupLastName = ""
	signupEmail = ""
	signupPasswordStdin = false
	clearYes = false
}

// login stores a valid credential through the login command
func login(t *testing.T) {
	t.Helper()

	loginEmail = "ada@example.com"
	loginPasswordStdin = true
	defer func() {
		loginEmail = ""
		loginPasswordStdin = false
	}()

	var buf strings.Builder
	if code := runLogin(t.Context(), &buf, strings.NewReader(testPassword+"\n")); code != 0 {
		t.Fatalf("login failed with exit code %d: %s", code, buf.String())
	}
}
