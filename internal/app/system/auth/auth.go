// internal/app/system/auth/auth.go

// Package auth implements the session token service and the authorization
// middleware every protected route runs through.
//
// The contract, in order:
//  1. resolve the token from the cookie pair; absent => 401
//  2. verify signature and expiry; invalid => 401
//  3. if a role is required and the payload role mismatches => 403
//  4. if a session-id cookie is present and disagrees with the token's
//     embedded session id => 401 (stale token surviving a logout/login
//     cycle in another tab)
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/alumlink/alumlink/internal/app/system/apperr"
	"github.com/alumlink/alumlink/internal/app/system/httpjson"
	"go.uber.org/zap"
)

// SessionManager issues and verifies session tokens and provides the route
// middleware. One instance is built at startup and shared by all features.
type SessionManager struct {
	secret []byte
	domain string
	secure bool
	log    *zap.Logger
}

// NewSessionManager builds the session manager. The signing key must be
// non-empty; short keys are tolerated with a warning so local dev keeps
// working.
func NewSessionManager(secret, domain string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("token signing key is empty; provide >=32 random chars")
	}
	if len(secret) < 32 {
		logger.Warn("token signing key is short; 32+ chars recommended",
			zap.Int("length", len(secret)))
	}
	return &SessionManager{
		secret: []byte(secret),
		domain: domain,
		secure: secure,
		log:    logger,
	}, nil
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the verified claims for the request, if any.
func CurrentUser(r *http.Request) (*Claims, bool) {
	c, ok := r.Context().Value(currentUserKey).(*Claims)
	return c, ok
}

// WithTestUser injects claims directly into the request context, bypassing
// token verification. Only for handler tests.
func WithTestUser(r *http.Request, c *Claims) *http.Request {
	return withUser(r, c)
}

func withUser(r *http.Request, c *Claims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, c))
}

// Authenticate runs steps 1, 2, and 4 of the authorization contract and
// returns the verified claims.
func (m *SessionManager) Authenticate(r *http.Request) (*Claims, error) {
	token, sidCookie, ok := ResolveToken(r)
	if !ok {
		return nil, apperr.New(apperr.Unauthenticated, "authentication required")
	}

	claims, err := m.Verify(token)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unauthenticated, "invalid or expired session", err)
	}

	// A valid token presented alongside a different session-id cookie means
	// the cookie pair is out of sync: another tab logged out and back in.
	if sidCookie != "" && sidCookie != claims.SessionID {
		return nil, apperr.New(apperr.Unauthenticated, "session mismatch")
	}
	return claims, nil
}

// LoadSessionUser injects the session user into context when a valid token
// is present. It never rejects the request; gating is done by
// RequireSignedIn / RequireRole.
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, err := m.Authenticate(r); err == nil {
			r = withUser(r, claims)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures the request carries a valid session, responding
// 401 {error} otherwise.
func (m *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := m.Authenticate(r)
		if err != nil {
			httpjson.Error(w, m.log, err)
			return
		}
		next.ServeHTTP(w, withUser(r, claims))
	})
}

// RequireRole ensures the session user's role is one of the allowed roles:
// 401 when not signed in, 403 on role mismatch.
func (m *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := CurrentUser(r)
			if !ok {
				var err error
				claims, err = m.Authenticate(r)
				if err != nil {
					httpjson.Error(w, m.log, err)
					return
				}
				r = withUser(r, claims)
			}

			if _, has := set[strings.ToLower(claims.UserType)]; !has {
				httpjson.Error(w, m.log, apperr.New(apperr.Forbidden, "insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
