package connections_test

import (
	"testing"

	"github.com/alumlink/alumlink/internal/app/store/connections"
	"github.com/alumlink/alumlink/internal/domain/models"
	"github.com/alumlink/alumlink/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestCreate_PairSymmetry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	student := fixtures.CreateStudent(ctx, "Sam", "Student", "sam@example.com")
	alum := fixtures.CreateAlumni(ctx, "Alex", "Alum", "alex@example.com")

	store := connections.New(db)
	created, err := store.Create(ctx, connections.CreateRequest{
		RequesterID:   student.ID,
		RecipientID:   alum.ID,
		RequesterType: student.Role,
		RecipientType: alum.Role,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Status != models.ConnectionPending {
		t.Errorf("expected status pending, got %q", created.Status)
	}

	// Both orderings must resolve to the same connection.
	ab, err := store.GetBetween(ctx, student.ID, alum.ID)
	if err != nil {
		t.Fatalf("GetBetween(student, alum) failed: %v", err)
	}
	ba, err := store.GetBetween(ctx, alum.ID, student.ID)
	if err != nil {
		t.Fatalf("GetBetween(alum, student) failed: %v", err)
	}
	if ab.ID != created.ID || ba.ID != created.ID {
		t.Errorf("expected both orderings to return connection %s, got %s and %s",
			created.ID.Hex(), ab.ID.Hex(), ba.ID.Hex())
	}
}

func TestCreate_DuplicateActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	student := fixtures.CreateStudent(ctx, "Sam", "Student", "sam@example.com")
	alum := fixtures.CreateAlumni(ctx, "Alex", "Alum", "alex@example.com")

	store := connections.New(db)

	req := connections.CreateRequest{
		RequesterID:   student.ID,
		RecipientID:   alum.ID,
		RequesterType: student.Role,
		RecipientType: alum.Role,
	}
	first, err := store.Create(ctx, req)
	if err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	// Second request while the first is pending.
	if _, err := store.Create(ctx, req); err != connections.ErrDuplicate {
		t.Errorf("expected ErrDuplicate for pending pair, got %v", err)
	}

	// Still blocked after acceptance.
	if _, err := store.UpdateStatus(ctx, first.ID, models.ConnectionAccepted); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if _, err := store.Create(ctx, req); err != connections.ErrDuplicate {
		t.Errorf("expected ErrDuplicate for accepted pair, got %v", err)
	}

	// Reversed direction counts as the same pair.
	reversed := connections.CreateRequest{
		RequesterID:   alum.ID,
		RecipientID:   student.ID,
		RequesterType: alum.Role,
		RecipientType: student.Role,
	}
	if _, err := store.Create(ctx, reversed); err != connections.ErrDuplicate {
		t.Errorf("expected ErrDuplicate for reversed pair, got %v", err)
	}
}

func TestCreate_RejectedDoesNotBlock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	student := fixtures.CreateStudent(ctx, "Sam", "Student", "sam@example.com")
	alum := fixtures.CreateAlumni(ctx, "Alex", "Alum", "alex@example.com")

	store := connections.New(db)
	req := connections.CreateRequest{
		RequesterID:   student.ID,
		RecipientID:   alum.ID,
		RequesterType: student.Role,
		RecipientType: alum.Role,
	}

	first, err := store.Create(ctx, req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	rejected, err := store.UpdateStatus(ctx, first.ID, models.ConnectionRejected)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if rejected.RejectedAt == nil {
		t.Error("expected rejected_at to be stamped")
	}

	second, err := store.Create(ctx, req)
	if err != nil {
		t.Fatalf("expected re-request after rejection to succeed, got %v", err)
	}
	if second.ID == first.ID {
		t.Error("expected a new connection document for the re-request")
	}
	if second.Status != models.ConnectionPending {
		t.Errorf("expected new request to be pending, got %q", second.Status)
	}

	// The active edge wins over the rejected history.
	got, err := store.GetBetween(ctx, student.ID, alum.ID)
	if err != nil {
		t.Fatalf("GetBetween failed: %v", err)
	}
	if got.ID != second.ID {
		t.Errorf("expected GetBetween to return the active connection %s, got %s",
			second.ID.Hex(), got.ID.Hex())
	}
}

func TestCreate_SelfConnection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	student := fixtures.CreateStudent(ctx, "Sam", "Student", "sam@example.com")

	store := connections.New(db)
	_, err := store.Create(ctx, connections.CreateRequest{
		RequesterID:   student.ID,
		RecipientID:   student.ID,
		RequesterType: student.Role,
		RecipientType: student.Role,
	})
	if err != connections.ErrSelfConnection {
		t.Errorf("expected ErrSelfConnection, got %v", err)
	}
}

func TestUpdateStatus_AcceptStampsTimestamp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	student := fixtures.CreateStudent(ctx, "Sam", "Student", "sam@example.com")
	alum := fixtures.CreateAlumni(ctx, "Alex", "Alum", "alex@example.com")
	conn := fixtures.CreateConnection(ctx, student, alum, models.ConnectionPending)

	store := connections.New(db)
	accepted, err := store.UpdateStatus(ctx, conn.ID, models.ConnectionAccepted)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if accepted.Status != models.ConnectionAccepted {
		t.Errorf("expected status accepted, got %q", accepted.Status)
	}
	if accepted.AcceptedAt == nil {
		t.Error("expected accepted_at to be stamped")
	}
}

func TestUpdateStatus_Missing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := connections.New(db)
	_, err := store.UpdateStatus(ctx, primitive.NewObjectID(), models.ConnectionAccepted)
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestGetBetween_NoHistory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	a := fixtures.CreateStudent(ctx, "A", "One", "a@example.com")
	b := fixtures.CreateAlumni(ctx, "B", "Two", "b@example.com")

	store := connections.New(db)
	if _, err := store.GetBetween(ctx, a.ID, b.ID); err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments for untouched pair, got %v", err)
	}
}

func TestListForUser_FilterAndUserInfo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	student := fixtures.CreateStudent(ctx, "Sam", "Student", "sam@example.com")
	alum1 := fixtures.CreateAlumni(ctx, "Alex", "Alum", "alex@example.com")
	alum2 := fixtures.CreateAlumni(ctx, "Blake", "Builder", "blake@example.com")

	fixtures.CreateConnection(ctx, student, alum1, models.ConnectionAccepted)
	fixtures.CreateConnection(ctx, student, alum2, models.ConnectionPending)

	store := connections.New(db)

	all, err := store.ListForUser(ctx, student.ID, connections.FilterAll, false)
	if err != nil {
		t.Fatalf("ListForUser(all) failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 connections, got %d", len(all))
	}

	pending, err := store.ListForUser(ctx, student.ID, connections.FilterPending, false)
	if err != nil {
		t.Fatalf("ListForUser(pending) failed: %v", err)
	}
	if len(pending) != 1 || pending[0].Status != models.ConnectionPending {
		t.Fatalf("expected exactly the pending connection, got %+v", pending)
	}

	enriched, err := store.ListForUser(ctx, student.ID, connections.FilterAccepted, true)
	if err != nil {
		t.Fatalf("ListForUser(accepted, withUserInfo) failed: %v", err)
	}
	if len(enriched) != 1 {
		t.Fatalf("expected 1 accepted connection, got %d", len(enriched))
	}
	if enriched[0].User == nil {
		t.Fatal("expected counterpart profile to be attached")
	}
	if enriched[0].User.FirstName != "Alex" {
		t.Errorf("expected counterpart Alex, got %q", enriched[0].User.FirstName)
	}
	if enriched[0].User.Email != "" {
		t.Error("expected counterpart email to be hidden without the privacy flag")
	}
}
