package users_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alumlink/alumlink/internal/app/features/users"
	userstore "github.com/alumlink/alumlink/internal/app/store/users"
	"github.com/alumlink/alumlink/internal/testutil"
	"go.uber.org/zap"
)

func TestListAlumni_PrivacyFlags(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	open := fixtures.CreateAlumni(ctx, "Open", "Book", "open@example.com")
	closed := fixtures.CreateAlumni(ctx, "Private", "Person", "private@example.com")
	viewer := fixtures.CreateStudent(ctx, "Sam", "Student", "sam@example.com")

	store := userstore.New(db)
	yes := true
	if err := store.UpdateProfile(ctx, open.ID, userstore.ProfileUpdate{
		FirstName:          open.FirstName,
		LastName:           open.LastName,
		ShowEmailInProfile: &yes,
	}); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	h := users.NewHandler(store, zap.NewNop())
	rec := httptest.NewRecorder()
	h.HandleListAlumni(rec, testutil.JSONRequest(t, http.MethodGet, "/api/users/alumni", nil, viewer))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	alumni, _ := testutil.DecodeBody(t, rec)["alumni"].([]any)
	if len(alumni) != 2 {
		t.Fatalf("expected 2 alumni, got %d", len(alumni))
	}
	for _, raw := range alumni {
		profile, _ := raw.(map[string]any)
		email, _ := profile["email"].(string)
		switch profile["id"] {
		case open.ID.Hex():
			if email != "open@example.com" {
				t.Errorf("expected the opted-in email to show, got %q", email)
			}
		case closed.ID.Hex():
			if email != "" {
				t.Errorf("expected the email hidden by default, got %q", email)
			}
		}
	}
}

func TestHandleGetProfile_SelfSeesEverything(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	u := fixtures.CreateAlumni(ctx, "Jane", "Doe", "jane@example.com")

	h := users.NewHandler(userstore.New(db), zap.NewNop())
	rec := httptest.NewRecorder()
	h.HandleGetProfile(rec, testutil.JSONRequest(t, http.MethodGet, "/api/profile", nil, u))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	profile, _ := testutil.DecodeBody(t, rec)["profile"].(map[string]any)
	if profile == nil {
		t.Fatal("expected a profile in the response")
	}
	// The self view includes the email regardless of privacy flags.
	if profile["email"] != "jane@example.com" {
		t.Errorf("expected own email visible, got %v", profile["email"])
	}
	if _, ok := profile["show_email_in_profile"]; !ok {
		t.Error("expected privacy flags in the self view")
	}
}

func TestHandleUpdateProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	u := fixtures.CreateAlumni(ctx, "Jane", "Doe", "jane@example.com")

	h := users.NewHandler(userstore.New(db), zap.NewNop())

	// Bio HTML is sanitized on the way in.
	body := map[string]any{
		"first_name": "Jane",
		"last_name":  "Doe",
		"company":    "Acme",
		"bio":        `Engineer<script>alert(1)</script> and mentor`,
	}
	rec := httptest.NewRecorder()
	h.HandleUpdateProfile(rec, testutil.JSONRequest(t, http.MethodPut, "/api/profile", body, u))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	profile, _ := testutil.DecodeBody(t, rec)["profile"].(map[string]any)
	if bio, _ := profile["bio"].(string); bio != "Engineer and mentor" {
		t.Errorf("expected sanitized bio, got %q", bio)
	}
	if profile["company"] != "Acme" {
		t.Errorf("expected company update, got %v", profile["company"])
	}

	// A nameless update is refused.
	rec = httptest.NewRecorder()
	h.HandleUpdateProfile(rec, testutil.JSONRequest(t, http.MethodPut, "/api/profile",
		map[string]any{"company": "Acme"}, u))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without a name, got %d", rec.Code)
	}
}

func TestHandleGetUser_PublicView(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	target := fixtures.CreateAlumni(ctx, "Alex", "Alum", "alex@example.com")
	viewer := fixtures.CreateStudent(ctx, "Sam", "Student", "sam@example.com")

	h := users.NewHandler(userstore.New(db), zap.NewNop())
	rec := httptest.NewRecorder()
	req := testutil.JSONRequest(t, http.MethodGet, "/api/users/"+target.ID.Hex(), nil, viewer)
	h.HandleGetUser(rec, testutil.WithURLParam(req, "id", target.ID.Hex()))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	user, _ := testutil.DecodeBody(t, rec)["user"].(map[string]any)
	if email, _ := user["email"].(string); email != "" {
		t.Errorf("expected the email hidden in the public view, got %q", email)
	}

	// Unknown ids are 404.
	rec = httptest.NewRecorder()
	missing := "ffffffffffffffffffffffff"
	req = testutil.JSONRequest(t, http.MethodGet, "/api/users/"+missing, nil, viewer)
	h.HandleGetUser(rec, testutil.WithURLParam(req, "id", missing))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for a missing user, got %d", rec.Code)
	}
}
