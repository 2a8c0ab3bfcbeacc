// internal/app/system/auth/cookies.go
package auth

import "net/http"

// Cookie names.
//
// SessionCookie is readable by client scripts and holds only the session id.
// The signed token lives in an HttpOnly cookie whose name is scoped by that
// session id, so one browser can hold several simultaneous logins (two tabs
// logged in as different roles) without the tokens colliding.
const (
	SessionCookie     = "current-session"
	tokenCookiePrefix = "auth-token-"

	// legacyTokenCookie is the unscoped cookie name older clients set before
	// session-scoped naming. ResolveToken falls back to it when no session
	// cookie is present.
	legacyTokenCookie = "auth-token"
)

// TokenCookieName returns the session-scoped token cookie name.
func TokenCookieName(sessionID string) string {
	return tokenCookiePrefix + sessionID
}

// ResolveToken locates the session token for the request. It reads the
// session-id cookie to find the session-scoped token cookie, falling back to
// the legacy unscoped name. The second return is the session-id cookie value
// ("" when absent), which the authorization contract compares against the
// token's embedded session id.
func ResolveToken(r *http.Request) (token, sessionID string, ok bool) {
	if sc, err := r.Cookie(SessionCookie); err == nil && sc.Value != "" {
		sessionID = sc.Value
		if tc, err := r.Cookie(TokenCookieName(sessionID)); err == nil && tc.Value != "" {
			return tc.Value, sessionID, true
		}
	}
	if tc, err := r.Cookie(legacyTokenCookie); err == nil && tc.Value != "" {
		return tc.Value, sessionID, true
	}
	return "", sessionID, false
}

// SetLoginCookies writes the cookie pair for a fresh login: the JS-readable
// session-id cookie and the HttpOnly token cookie scoped to that session.
func (m *SessionManager) SetLoginCookies(w http.ResponseWriter, token, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sessionID,
		Path:     "/",
		Domain:   m.domain,
		MaxAge:   int(TokenTTL.Seconds()),
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName(sessionID),
		Value:    token,
		Path:     "/",
		Domain:   m.domain,
		MaxAge:   int(TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearLoginCookies expires the cookie pair for the given session, plus the
// legacy token cookie if the client still carries one.
func (m *SessionManager) ClearLoginCookies(w http.ResponseWriter, sessionID string) {
	expire := func(name string, httpOnly bool) {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   m.domain,
			MaxAge:   -1,
			HttpOnly: httpOnly,
			Secure:   m.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	expire(SessionCookie, false)
	if sessionID != "" {
		expire(TokenCookieName(sessionID), true)
	}
	expire(legacyTokenCookie, true)
}
