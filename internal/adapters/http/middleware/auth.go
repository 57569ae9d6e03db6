package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Auth returns middleware that requires a bearer token matching the given
// bcrypt hash. An empty hash disables authentication (local development).
// Paths listed in exempt bypass the check.
// PRE: tokenHash is empty or a valid bcrypt hash
// POST: Requests with a matching Authorization header reach next; others get 401
func Auth(tokenHash string, exempt ...string) func(http.Handler) http.Handler {
	exemptSet := make(map[string]bool, len(exempt))
	for _, p := range exempt {
		exemptSet[p] = true
	}

	// bcrypt comparison is expensive, so remember tokens that already
	// passed. The cache only ever holds accepted tokens.
	var mu sync.RWMutex
	accepted := make(map[string]bool)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenHash == "" || exemptSet[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", "Bearer")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			mu.RLock()
			cached := accepted[token]
			mu.RUnlock()
			if !cached {
				if err := bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(token)); err != nil {
					w.Header().Set("WWW-Authenticate", "Bearer")
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				mu.Lock()
				accepted[token] = true
				mu.Unlock()
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}
	token := strings.TrimSpace(auth[len(prefix):])
	return token, token != ""
}

// GenerateToken returns a random hex token suitable for API access.
func GenerateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
