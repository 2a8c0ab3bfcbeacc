// internal/app/store/jobs/store.go
package jobs

import (
	"context"
	"time"

	"github.com/alumlink/alumlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages the jobs collection.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("jobs")}
}

// EnsureIndexes creates the listing index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "active", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_jobs_listing"),
		},
		{
			Keys:    bson.D{{Key: "posted_by.id", Value: 1}},
			Options: options.Index().SetName("idx_jobs_author"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a new job posting, active by default.
func (s *Store) Create(ctx context.Context, j models.Job) (models.Job, error) {
	j.ID = primitive.NewObjectID()
	j.Active = true
	now := time.Now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, j); err != nil {
		return models.Job{}, err
	}
	return j, nil
}

// GetByID loads a job by id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Job, error) {
	var j models.Job
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&j); err != nil {
		return nil, err
	}
	return &j, nil
}

// List returns postings newest first. activeOnly excludes deactivated jobs.
func (s *Store) List(ctx context.Context, activeOnly bool) ([]models.Job, error) {
	filter := bson.M{}
	if activeOnly {
		filter["active"] = true
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Job
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update holds the mutable posting fields.
type Update struct {
	Title        string
	Company      string
	Location     string
	JobType      string
	Description  string
	Requirements string
	ApplyLink    string
	ContactEmail string
	Active       bool
}

// Apply writes the update. Returns mongo.ErrNoDocuments if the job does not
// exist.
func (s *Store) Apply(ctx context.Context, id primitive.ObjectID, upd Update) (*models.Job, error) {
	set := bson.M{
		"title":         upd.Title,
		"company":       upd.Company,
		"location":      upd.Location,
		"job_type":      upd.JobType,
		"description":   upd.Description,
		"requirements":  upd.Requirements,
		"apply_link":    upd.ApplyLink,
		"contact_email": upd.ContactEmail,
		"active":        upd.Active,
		"updated_at":    time.Now().UTC(),
	}
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var j models.Job
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, after).Decode(&j); err != nil {
		return nil, err
	}
	return &j, nil
}

// Delete removes a job posting. Returns the number of documents deleted.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Count returns the total number of postings for the admin stats view.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
