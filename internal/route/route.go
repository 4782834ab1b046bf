// ABOUTME: Route table and guard for navigation between app screens
// ABOUTME: Protected routes redirect to the login entry point when no credential is held

package route

import (
	"fmt"
	"strings"
)

// Route identifies a navigable screen
type Route string

const (
	// Login is the unauthenticated entry point
	Login Route = "/"
	// Signup is the account creation screen
	Signup Route = "/signup"
	// Chat is the protected conversation screen
	Chat Route = "/chat"
)

var protected = map[Route]bool{
	Chat: true,
}

// Authenticator reports whether a credential is currently held
type Authenticator interface {
	Authenticated() bool
}

// Navigator performs the navigation side effect for a route
type Navigator interface {
	Navigate(to Route)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(Route)

// Navigate implements Navigator
func (f NavigatorFunc) Navigate(to Route) { f(to) }

// Protected reports whether r requires a credential
func (r Route) Protected() bool {
	return protected[r]
}

// String returns the route path
func (r Route) String() string {
	return string(r)
}

// Guard returns to when it is admitted, or Login when to is protected and
// auth holds no credential. It never touches the network.
func Guard(auth Authenticator, to Route) Route {
	if !to.Protected() {
		return to
	}
	if auth == nil || !auth.Authenticated() {
		return Login
	}
	return to
}

// Parse maps a path or screen name to a Route
func Parse(s string) (Route, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "/", "login":
		return Login, nil
	case "/signup", "signup":
		return Signup, nil
	case "/chat", "chat":
		return Chat, nil
	default:
		return "", fmt.Errorf("unknown route %q", s)
	}
}
