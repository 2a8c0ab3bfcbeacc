package auth_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alumlink/alumlink/internal/app/features/auth"
	auditstore "github.com/alumlink/alumlink/internal/app/store/audit"
	sessionstore "github.com/alumlink/alumlink/internal/app/store/sessions"
	userstore "github.com/alumlink/alumlink/internal/app/store/users"
	sysauth "github.com/alumlink/alumlink/internal/app/system/auth"
	"github.com/alumlink/alumlink/internal/app/system/auditlog"
	"github.com/alumlink/alumlink/internal/domain/models"
	"github.com/alumlink/alumlink/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(t *testing.T, db *mongo.Database) *auth.Handler {
	t.Helper()
	sm, err := sysauth.NewSessionManager("test-signing-key-0123456789ABCDEF", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	audit := auditlog.New(auditstore.New(db), zap.NewNop(), auditlog.Config{Auth: "db", Admin: "db"})
	return auth.NewHandler(userstore.New(db), sessionstore.New(db), sm, audit, zap.NewNop())
}

func TestHandleRegister(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)

	body := map[string]any{
		"email":      "new@example.com",
		"password":   "password123",
		"role":       "student",
		"first_name": "Nina",
		"last_name":  "New",
	}
	rec := httptest.NewRecorder()
	h.HandleRegister(rec, testutil.JSONRequest(t, http.MethodPost, "/api/auth/register", body, models.User{}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Same email again conflicts.
	rec = httptest.NewRecorder()
	h.HandleRegister(rec, testutil.JSONRequest(t, http.MethodPost, "/api/auth/register", body, models.User{}))
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate email, got %d", rec.Code)
	}

	// Admin self-registration is refused.
	body["email"] = "sneaky@example.com"
	body["role"] = "admin"
	rec = httptest.NewRecorder()
	h.HandleRegister(rec, testutil.JSONRequest(t, http.MethodPost, "/api/auth/register", body, models.User{}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for admin role, got %d", rec.Code)
	}

	// Short passwords are refused.
	body["role"] = "student"
	body["password"] = "short"
	rec = httptest.NewRecorder()
	h.HandleRegister(rec, testutil.JSONRequest(t, http.MethodPost, "/api/auth/register", body, models.User{}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for short password, got %d", rec.Code)
	}
}

func TestHandleLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)

	// Register an account; it starts unapproved.
	register := map[string]any{
		"email":      "jane@example.com",
		"password":   "password123",
		"role":       "alumni",
		"first_name": "Jane",
		"last_name":  "Doe",
	}
	rec := httptest.NewRecorder()
	h.HandleRegister(rec, testutil.JSONRequest(t, http.MethodPost, "/api/auth/register", register, models.User{}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}

	login := func(email, password string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		body := map[string]any{"email": email, "password": password}
		h.HandleLogin(rec, testutil.JSONRequest(t, http.MethodPost, "/api/auth/login", body, models.User{}))
		return rec
	}

	// Unapproved accounts cannot sign in.
	if rec := login("jane@example.com", "password123"); rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 before approval, got %d", rec.Code)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	users := userstore.New(db)
	u, err := users.GetByEmail(ctx, "jane@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if _, err := users.Approve(ctx, u.ID); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	// Wrong password and unknown user both come back 401 with the same
	// message.
	if rec := login("jane@example.com", "wrong-password"); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong password, got %d", rec.Code)
	}
	if rec := login("nobody@example.com", "password123"); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for unknown user, got %d", rec.Code)
	}

	rec2 := login("jane@example.com", "password123")
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec2.Code, rec2.Body.String())
	}

	body := testutil.DecodeBody(t, rec2)
	sessionID, _ := body["session_id"].(string)
	if sessionID == "" {
		t.Fatal("expected session_id in login response")
	}

	// The cookie pair is set: the session pointer plus a per-session token.
	var haveSession, haveToken bool
	for _, c := range rec2.Result().Cookies() {
		switch c.Name {
		case sysauth.SessionCookie:
			haveSession = c.Value == sessionID
		case sysauth.TokenCookieName(sessionID):
			haveToken = c.Value != ""
			if !c.HttpOnly {
				t.Error("expected token cookie to be HttpOnly")
			}
		}
	}
	if !haveSession || !haveToken {
		t.Errorf("expected both login cookies, got session=%v token=%v", haveSession, haveToken)
	}

	// The session record was written.
	recs, err := sessionstore.New(db).ListForUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(recs) != 1 || recs[0].SessionID != sessionID {
		t.Errorf("expected one session record for %s, got %+v", sessionID, recs)
	}
}

func TestHandleLogout_WithoutSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rec := httptest.NewRecorder()
	h.HandleLogout(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// Cookies are cleared even without a valid session.
	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == sysauth.SessionCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected the session cookie to be expired")
	}
}

func TestHandleVerify(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)

	// Without claims on the context.
	rec := httptest.NewRecorder()
	h.HandleVerify(rec, httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a session, got %d", rec.Code)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	fixtures := testutil.NewFixtures(t, db)
	u := fixtures.CreateStudent(ctx, "Sam", "Student", "sam@example.com")

	rec = httptest.NewRecorder()
	h.HandleVerify(rec, testutil.JSONRequest(t, http.MethodGet, "/api/auth/verify", nil, u))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "sam@example.com") {
		t.Errorf("expected the session payload in the body, got %s", rec.Body.String())
	}
}
