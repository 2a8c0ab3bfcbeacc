// internal/app/store/connections/store.go

// Package connections manages the request/accept/reject relationship graph
// between two users. At most one active (pending or accepted) connection may
// exist per unordered pair; a rejected connection is treated as non-existent
// when a new request arrives.
package connections

import (
	"context"
	"errors"
	"time"

	"github.com/alumlink/alumlink/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicate is returned when an active connection already exists for
	// the pair.
	ErrDuplicate = errors.New("an active connection already exists between these users")
	// ErrSelfConnection is returned when requester and recipient are the
	// same user.
	ErrSelfConnection = errors.New("cannot create a connection with yourself")
	errBadStatus      = errors.New(`status must be "accepted" or "rejected"`)
)

// Store manages the connections collection. It also holds the users
// collection for the counterpart lookup in ListForUser.
type Store struct {
	c     *mongo.Collection
	users *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:     db.Collection("connections"),
		users: db.Collection("users"),
	}
}

// EnsureIndexes creates the pair lookup index and a partial unique index on
// active edges. The application still checks before inserting (for a
// friendly Conflict message); the index closes the check-then-act window for
// concurrent duplicate requests.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "pair_key", Value: 1}},
			Options: options.Index().
				SetName("idx_connections_pair_active").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"active": true}),
		},
		{
			Keys:    bson.D{{Key: "requester_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_connections_requester"),
		},
		{
			Keys:    bson.D{{Key: "recipient_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_connections_recipient"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// GetBetween returns the connection between two users, checking both
// orderings of the pair. If an active edge exists it wins; otherwise the most
// recent (rejected) edge is returned. Returns mongo.ErrNoDocuments when the
// pair has no history at all.
func (s *Store) GetBetween(ctx context.Context, a, b primitive.ObjectID) (*models.Connection, error) {
	key := models.PairKeyFor(a, b)

	var conn models.Connection
	err := s.c.FindOne(ctx, bson.M{"pair_key": key, "active": true}).Decode(&conn)
	if err == nil {
		return &conn, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	err = s.c.FindOne(ctx, bson.M{"pair_key": key},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})).Decode(&conn)
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// CreateRequest holds the inputs for a new connection request.
type CreateRequest struct {
	RequesterID   primitive.ObjectID
	RecipientID   primitive.ObjectID
	RequesterType string
	RecipientType string
	Message       string
}

// Create inserts a new pending connection. It fails with ErrDuplicate when
// an active (pending or accepted) connection already exists for the pair; a
// previously rejected connection does not block the request.
func (s *Store) Create(ctx context.Context, req CreateRequest) (*models.Connection, error) {
	if req.RequesterID == req.RecipientID {
		return nil, ErrSelfConnection
	}

	key := models.PairKeyFor(req.RequesterID, req.RecipientID)

	n, err := s.c.CountDocuments(ctx, bson.M{"pair_key": key, "active": true})
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrDuplicate
	}

	now := time.Now().UTC()
	conn := models.Connection{
		ID:            primitive.NewObjectID(),
		RequesterID:   req.RequesterID,
		RecipientID:   req.RecipientID,
		RequesterType: req.RequesterType,
		RecipientType: req.RecipientType,
		Status:        models.ConnectionPending,
		Message:       req.Message,
		PairKey:       key,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := s.c.InsertOne(ctx, conn); err != nil {
		if wafflemongo.IsDup(err) {
			// Lost the race against a concurrent request for the same pair.
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return &conn, nil
}

// UpdateStatus transitions a pending connection to accepted or rejected and
// stamps the matching timestamp. Returns mongo.ErrNoDocuments if the
// connection id does not exist. Notification of the counterpart is the route
// layer's job, not the store's.
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Connection, error) {
	now := time.Now().UTC()
	set := bson.M{"status": status, "updated_at": now}

	switch status {
	case models.ConnectionAccepted:
		set["accepted_at"] = now
	case models.ConnectionRejected:
		set["rejected_at"] = now
		set["active"] = false
	default:
		return nil, errBadStatus
	}

	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var conn models.Connection
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, after).Decode(&conn)
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// GetByID loads a connection by id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Connection, error) {
	var conn models.Connection
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&conn); err != nil {
		return nil, err
	}
	return &conn, nil
}

// Entry is a connection optionally enriched with the counterpart's public
// profile for list views.
type Entry struct {
	models.Connection
	User *models.PublicProfile `json:"user,omitempty"`
}

// Filters for ListForUser.
const (
	FilterAll      = "all"
	FilterPending  = models.ConnectionPending
	FilterAccepted = models.ConnectionAccepted
)

// ListForUser returns connections where the user is requester or recipient,
// newest first. filter narrows to pending or accepted ("all" or "" returns
// everything). When withUserInfo is set, each entry carries the
// counterpart's public profile resolved from the users collection.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID, filter string, withUserInfo bool) ([]Entry, error) {
	match := bson.M{
		"$or": bson.A{
			bson.M{"requester_id": userID},
			bson.M{"recipient_id": userID},
		},
	}
	switch filter {
	case "", FilterAll:
	case FilterPending, FilterAccepted:
		match["status"] = filter
	default:
		match["status"] = filter
	}

	cur, err := s.c.Find(ctx, match, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var conns []models.Connection
	if err := cur.All(ctx, &conns); err != nil {
		return nil, err
	}

	entries := make([]Entry, len(conns))
	for i, c := range conns {
		entries[i] = Entry{Connection: c}
	}
	if !withUserInfo || len(conns) == 0 {
		return entries, nil
	}

	ids := make([]primitive.ObjectID, 0, len(conns))
	for _, c := range conns {
		ids = append(ids, c.Counterpart(userID))
	}

	ucur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer ucur.Close(ctx)

	var counterparts []models.User
	if err := ucur.All(ctx, &counterparts); err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]models.PublicProfile, len(counterparts))
	for i := range counterparts {
		byID[counterparts[i].ID] = counterparts[i].Public()
	}
	for i := range entries {
		if p, ok := byID[entries[i].Connection.Counterpart(userID)]; ok {
			prof := p
			entries[i].User = &prof
		}
	}
	return entries, nil
}

// DeleteForUser removes every connection involving the user. Used when an
// admin deletes an account.
func (s *Store) DeleteForUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{
		"$or": bson.A{
			bson.M{"requester_id": userID},
			bson.M{"recipient_id": userID},
		},
	})
	return err
}
