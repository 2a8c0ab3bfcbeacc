package notifications_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alumlink/alumlink/internal/app/features/notifications"
	notificationstore "github.com/alumlink/alumlink/internal/app/store/notifications"
	"github.com/alumlink/alumlink/internal/domain/models"
	"github.com/alumlink/alumlink/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func seed(t *testing.T, db *mongo.Database, u models.User, n int) []models.Notification {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := notificationstore.New(db)
	out := make([]models.Notification, 0, n)
	for i := 0; i < n; i++ {
		created, err := store.Create(ctx, models.Notification{
			RecipientID:   u.ID,
			RecipientType: u.Role,
			Type:          models.NotificationConnection,
			Title:         "Connection accepted",
			Message:       "someone accepted your request",
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		out = append(out, created)
	}
	return out
}

func TestHandleList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	student := fixtures.CreateStudent(ctx, "Sam", "Student", "sam@example.com")
	seed(t, db, student, 2)

	h := notifications.NewHandler(notificationstore.New(db), zap.NewNop())
	rec := httptest.NewRecorder()
	h.HandleList(rec, testutil.JSONRequest(t, http.MethodGet, "/api/notifications", nil, student))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := testutil.DecodeBody(t, rec)
	if body["count"] != float64(2) || body["unread_count"] != float64(2) {
		t.Errorf("expected 2 notifications, all unread; got count=%v unread=%v",
			body["count"], body["unread_count"])
	}
}

func TestHandleMarkRead_OwnershipLooksLikeMissing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	student := fixtures.CreateStudent(ctx, "Sam", "Student", "sam@example.com")
	other := fixtures.CreateStudent(ctx, "Olly", "Other", "olly@example.com")
	created := seed(t, db, student, 1)

	h := notifications.NewHandler(notificationstore.New(db), zap.NewNop())
	markRead := func(as models.User) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := testutil.JSONRequest(t, http.MethodPut,
			"/api/notifications/"+created[0].ID.Hex()+"/read", nil, as)
		h.HandleMarkRead(rec, testutil.WithURLParam(req, "id", created[0].ID.Hex()))
		return rec
	}

	// Someone else's notification is indistinguishable from a missing one.
	if rec := markRead(other); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for another user's notification, got %d", rec.Code)
	}
	if rec := markRead(student); rec.Code != http.StatusOK {
		t.Errorf("expected 200 for the owner, got %d", rec.Code)
	}

	store := notificationstore.New(db)
	unread, err := store.CountUnread(ctx, student.ID)
	if err != nil {
		t.Fatalf("CountUnread failed: %v", err)
	}
	if unread != 0 {
		t.Errorf("expected 0 unread after marking, got %d", unread)
	}
}

func TestHandleMarkAllRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	student := fixtures.CreateStudent(ctx, "Sam", "Student", "sam@example.com")
	seed(t, db, student, 3)

	h := notifications.NewHandler(notificationstore.New(db), zap.NewNop())
	rec := httptest.NewRecorder()
	h.HandleMarkAllRead(rec, testutil.JSONRequest(t, http.MethodPut, "/api/notifications/read-all", nil, student))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	unread, err := notificationstore.New(db).CountUnread(ctx, student.ID)
	if err != nil {
		t.Fatalf("CountUnread failed: %v", err)
	}
	if unread != 0 {
		t.Errorf("expected 0 unread, got %d", unread)
	}
}
