package messages_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alumlink/alumlink/internal/app/features/messages"
	connstore "github.com/alumlink/alumlink/internal/app/store/connections"
	msgstore "github.com/alumlink/alumlink/internal/app/store/messages"
	"github.com/alumlink/alumlink/internal/domain/models"
	"github.com/alumlink/alumlink/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(db *mongo.Database) *messages.Handler {
	return messages.NewHandler(msgstore.New(db, connstore.New(db)), zap.NewNop())
}

func TestHandleSend_RequiresConnection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	student := fixtures.CreateStudent(ctx, "Sam", "Student", "sam@example.com")
	alum := fixtures.CreateAlumni(ctx, "Alex", "Alum", "alex@example.com")

	h := newHandler(db)
	body := map[string]any{
		"recipient_id":   alum.ID.Hex(),
		"recipient_type": alum.Role,
		"content":        "hello",
	}

	rec := httptest.NewRecorder()
	h.HandleSend(rec, testutil.JSONRequest(t, http.MethodPost, "/api/messages", body, student))
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 without a connection, got %d: %s", rec.Code, rec.Body.String())
	}

	fixtures.CreateConnection(ctx, student, alum, models.ConnectionAccepted)

	rec = httptest.NewRecorder()
	h.HandleSend(rec, testutil.JSONRequest(t, http.MethodPost, "/api/messages", body, student))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 once connected, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleSendConnectionRequest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	student := fixtures.CreateStudent(ctx, "Sam", "Student", "sam@example.com")
	alum := fixtures.CreateAlumni(ctx, "Alex", "Alum", "alex@example.com")
	otherStudent := fixtures.CreateStudent(ctx, "Olly", "Other", "olly@example.com")

	h := newHandler(db)
	send := func(as models.User, recipient models.User) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		body := map[string]any{
			"recipient_id":   recipient.ID.Hex(),
			"recipient_type": recipient.Role,
			"content":        "I'd love to connect",
		}
		h.HandleSendConnectionRequest(rec,
			testutil.JSONRequest(t, http.MethodPost, "/api/messages/connection-request", body, as))
		return rec
	}

	// Alumni cannot initiate, and students cannot target other students.
	if rec := send(alum, student); rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for an alumni sender, got %d", rec.Code)
	}
	if rec := send(student, otherStudent); rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for a student recipient, got %d", rec.Code)
	}

	rec := send(student, alum)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// A repeat while the request is still pending conflicts.
	if rec := send(student, alum); rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for a repeat request, got %d", rec.Code)
	}
}

func TestHandleUnreadCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	student := fixtures.CreateStudent(ctx, "Sam", "Student", "sam@example.com")
	alum := fixtures.CreateAlumni(ctx, "Alex", "Alum", "alex@example.com")
	fixtures.CreateConnection(ctx, student, alum, models.ConnectionAccepted)

	store := msgstore.New(db, connstore.New(db))
	if _, err := store.Send(ctx, student.ID, student.Role, msgstore.SendRequest{
		RecipientID:   alum.ID,
		RecipientType: alum.Role,
		Content:       "hello",
	}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	h := newHandler(db)
	rec := httptest.NewRecorder()
	h.HandleUnreadCount(rec, testutil.JSONRequest(t, http.MethodGet, "/api/messages/unread-count", nil, alum))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := testutil.DecodeBody(t, rec)["unread_count"]; got != float64(1) {
		t.Errorf("expected unread_count 1, got %v", got)
	}
}
