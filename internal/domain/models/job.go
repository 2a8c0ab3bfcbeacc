// internal/domain/models/job.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostedBy is a denormalized author snapshot embedded in jobs and events so
// listings do not need a join back to the users collection.
type PostedBy struct {
	ID   primitive.ObjectID `bson:"id" json:"id"`
	Name string             `bson:"name" json:"name"`
	Type string             `bson:"type" json:"type"`
}

// Job is a posted job opening.
type Job struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Company      string             `bson:"company" json:"company"`
	Location     string             `bson:"location,omitempty" json:"location,omitempty"`
	JobType      string             `bson:"job_type,omitempty" json:"job_type,omitempty"` // full-time, part-time, internship, ...
	Description  string             `bson:"description" json:"description"`
	Requirements string             `bson:"requirements,omitempty" json:"requirements,omitempty"`
	ApplyLink    string             `bson:"apply_link,omitempty" json:"apply_link,omitempty"`
	ContactEmail string             `bson:"contact_email,omitempty" json:"contact_email,omitempty"`
	PostedBy     PostedBy           `bson:"posted_by" json:"posted_by"`
	Active       bool               `bson:"active" json:"active"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
