// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	NotificationJob        = "job"
	NotificationEvent      = "event"
	NotificationConnection = "connection"
	NotificationMessage    = "message"
	NotificationSystem     = "system"
)

// Notification is a per-recipient record written as a side effect of domain
// events (new job posted, connection accepted). Only the owning recipient may
// mark it read.
type Notification struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecipientID   primitive.ObjectID `bson:"recipient_id" json:"recipient_id"`
	RecipientType string             `bson:"recipient_type" json:"recipient_type"`
	Type          string             `bson:"type" json:"type"`
	Title         string             `bson:"title" json:"title"`
	Message       string             `bson:"message" json:"message"`
	Link          string             `bson:"link,omitempty" json:"link,omitempty"`
	Read          bool               `bson:"read" json:"read"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}
