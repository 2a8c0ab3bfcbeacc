// internal/app/store/users/store.go
package users

import (
	"context"
	"errors"
	"time"

	"github.com/alumlink/alumlink/internal/app/system/normalize"
	"github.com/alumlink/alumlink/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateEmail is returned when creating a user with an email that
	// already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errBadRole        = errors.New(`role must be "student"|"alumni"|"admin"`)
)

// Store manages the single role-partitioned users collection.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// EnsureIndexes creates the unique email index and the directory index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_users_email").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "is_approved", Value: 1}, {Key: "last_name", Value: 1}},
			Options: options.Index().SetName("idx_users_directory"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns
// mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing and validating fields. The
// caller supplies an already-hashed password. New accounts start unapproved
// unless the caller sets IsApproved (admin seeding).
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Email = normalize.Email(u.Email)
	u.FirstName = normalize.Name(u.FirstName)
	u.LastName = normalize.Name(u.LastName)

	if !models.ValidRole(u.Role) {
		return models.User{}, errBadRole
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// ListByRole returns users of the given role, newest last name first in the
// directory sense (sorted by last_name, first_name). When approvedOnly is
// set, unapproved registrations are excluded.
func (s *Store) ListByRole(ctx context.Context, role string, approvedOnly bool) ([]models.User, error) {
	filter := bson.M{"role": role}
	if approvedOnly {
		filter["is_approved"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "last_name", Value: 1}, {Key: "first_name", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPending returns unapproved student and alumni registrations, oldest
// first, for the admin approval queue.
func (s *Store) ListPending(ctx context.Context) ([]models.User, error) {
	filter := bson.M{
		"is_approved": false,
		"role":        bson.M{"$in": bson.A{models.RoleStudent, models.RoleAlumni}},
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMany loads the users for a set of ids. Missing ids are skipped.
func (s *Store) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProfileUpdate holds the self-service profile fields. Role and approval are
// deliberately absent: only admins change those.
type ProfileUpdate struct {
	FirstName          string
	LastName           string
	GraduationYear     int
	Department         string
	Company            string
	Position           string
	Bio                string
	ProfilePicture     string
	Phone              string
	ShowEmailInProfile *bool
	ShowPhoneInProfile *bool
}

// UpdateProfile updates a user's own profile fields. Privacy flags are
// tri-state: nil leaves the stored value untouched.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	set := bson.M{
		"first_name":      normalize.Name(upd.FirstName),
		"last_name":       normalize.Name(upd.LastName),
		"graduation_year": upd.GraduationYear,
		"department":      upd.Department,
		"company":         upd.Company,
		"position":        upd.Position,
		"bio":             upd.Bio,
		"profile_picture": upd.ProfilePicture,
		"phone":           upd.Phone,
		"updated_at":      time.Now().UTC(),
	}
	if upd.ShowEmailInProfile != nil {
		set["show_email_in_profile"] = *upd.ShowEmailInProfile
	}
	if upd.ShowPhoneInProfile != nil {
		set["show_phone_in_profile"] = *upd.ShowPhoneInProfile
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Promote changes a user's role and marks the account approved. Used for
// admin seeding at startup.
func (s *Store) Promote(ctx context.Context, id primitive.ObjectID, role string) error {
	if !models.ValidRole(role) {
		return errBadRole
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"role": role, "is_approved": true, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Approve marks a registration as approved so the account can log in.
func (s *Store) Approve(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_approved": true, "updated_at": time.Now().UTC()}},
		after,
	).Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Delete removes a user. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByRole returns the number of users per role for the admin stats view.
func (s *Store) CountByRole(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64, 3)
	for _, role := range []string{models.RoleStudent, models.RoleAlumni, models.RoleAdmin} {
		n, err := s.c.CountDocuments(ctx, bson.M{"role": role})
		if err != nil {
			return nil, err
		}
		out[role] = n
	}
	return out, nil
}
