// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"testing"

	connstore "github.com/alumlink/alumlink/internal/app/store/connections"
	userstore "github.com/alumlink/alumlink/internal/app/store/users"
	"github.com/alumlink/alumlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// Fixtures builds test data through the real stores so fixtures go through
// the same validation and normalization paths as production writes.
type Fixtures struct {
	t     *testing.T
	db    *mongo.Database
	users *userstore.Store
	conns *connstore.Store
}

// NewFixtures creates a fixture builder bound to the test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{
		t:     t,
		db:    db,
		users: userstore.New(db),
		conns: connstore.New(db),
	}
}

// DB returns the underlying test database.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates an approved user with the given role. The password is
// always "password123" (hashed with min cost to keep tests fast).
func (f *Fixtures) CreateUser(ctx context.Context, firstName, lastName, email, role string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash fixture password: %v", err)
	}

	u, err := f.users.Create(ctx, models.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		FirstName:    firstName,
		LastName:     lastName,
		IsApproved:   true,
	})
	if err != nil {
		f.t.Fatalf("create fixture user %s: %v", email, err)
	}
	return u
}

// CreateStudent creates an approved student.
func (f *Fixtures) CreateStudent(ctx context.Context, firstName, lastName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, firstName, lastName, email, models.RoleStudent)
}

// CreateAlumni creates an approved alumni user.
func (f *Fixtures) CreateAlumni(ctx context.Context, firstName, lastName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, firstName, lastName, email, models.RoleAlumni)
}

// CreateConnection creates a connection between two users in the given
// status, going through the real request/accept path.
func (f *Fixtures) CreateConnection(ctx context.Context, requester, recipient models.User, status string) *models.Connection {
	f.t.Helper()

	conn, err := f.conns.Create(ctx, connstore.CreateRequest{
		RequesterID:   requester.ID,
		RecipientID:   recipient.ID,
		RequesterType: requester.Role,
		RecipientType: recipient.Role,
	})
	if err != nil {
		f.t.Fatalf("create fixture connection: %v", err)
	}
	if status == models.ConnectionPending {
		return conn
	}

	conn, err = f.conns.UpdateStatus(ctx, conn.ID, status)
	if err != nil {
		f.t.Fatalf("transition fixture connection to %s: %v", status, err)
	}
	return conn
}
