// internal/testutil/http.go
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/alumlink/alumlink/internal/app/system/auth"
	"github.com/alumlink/alumlink/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
)

// ClaimsFor builds session claims for a user, the way a verified token would
// decode, for injecting into handler tests via auth.WithTestUser.
func ClaimsFor(u models.User) *auth.Claims {
	return &auth.Claims{
		UserType:  u.Role,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		SessionID: "test-session",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: u.ID.Hex(),
		},
	}
}

// JSONRequest builds a request with a JSON body and the session claims of
// the given user injected into context.
func JSONRequest(t *testing.T, method, target string, body any, as models.User) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return auth.WithTestUser(r, ClaimsFor(as))
}

// WithURLParam adds a chi route parameter to the request context, standing
// in for the router in direct handler tests.
func WithURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// DecodeBody unmarshals a recorder's JSON body into a map.
func DecodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response body %q: %v", rec.Body.String(), err)
	}
	return out
}
