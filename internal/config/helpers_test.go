// ABOUTME: Test helpers for config tests
// ABOUTME: Provides utilities for environment variable management

package config

import (
	"os"
	"testing"
)

// withCleanEnv clears the environment, points the config dir at a temp dir,
// applies extra, and returns a cleanup function that restores the original
// env. Use with t.Cleanup().
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    t.Cleanup(withCleanEnv(t, map[string]string{
//	        "COMPANION_CREDENTIAL_STORE": "sqlite",
//	    }))
//	}
func withCleanEnv(t *testing.T, extra map[string]string) func() {
	t.Helper()

	originalEnv := os.Environ()
	os.Clearenv()

	os.Setenv("COMPANION_CONFIG_DIR", t.TempDir())
	for key, value := range extra {
		os.Setenv(key, value)
	}

	return func() {
		os.Clearenv()
		for _, env := range originalEnv {
			for i := 0; i < len(env); i++ {
				if env[i] == '=' {
					os.Setenv(env[:i], env[i+1:])
					break
				}
			}
		}
	}
}

// chdirTemp runs the test from an empty directory so no stray .env is picked up
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}
