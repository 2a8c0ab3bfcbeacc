// internal/domain/models/connection.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Connection statuses.
const (
	ConnectionPending  = "pending"
	ConnectionAccepted = "accepted"
	ConnectionRejected = "rejected"
)

// Connection is the edge between two users that gates direct messaging.
//
// At most one active (pending or accepted) connection may exist per unordered
// pair of users. A rejected connection does not count as active: the pair may
// request again. PairKey holds the two user ids sorted and joined with ":",
// and Active mirrors status != rejected so a partial unique index can cover
// the common case of concurrent duplicate requests.
type Connection struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequesterID   primitive.ObjectID `bson:"requester_id" json:"requester_id"`
	RecipientID   primitive.ObjectID `bson:"recipient_id" json:"recipient_id"`
	RequesterType string             `bson:"requester_type" json:"requester_type"`
	RecipientType string             `bson:"recipient_type" json:"recipient_type"`
	Status        string             `bson:"status" json:"status"` // pending | accepted | rejected
	Message       string             `bson:"message,omitempty" json:"message,omitempty"`

	PairKey string `bson:"pair_key" json:"-"`
	Active  bool   `bson:"active" json:"-"`

	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `bson:"updated_at" json:"updated_at"`
	AcceptedAt *time.Time `bson:"accepted_at,omitempty" json:"accepted_at,omitempty"`
	RejectedAt *time.Time `bson:"rejected_at,omitempty" json:"rejected_at,omitempty"`
}

// PairKeyFor returns the canonical unordered-pair key for two user ids.
func PairKeyFor(a, b primitive.ObjectID) string {
	ah, bh := a.Hex(), b.Hex()
	if ah < bh {
		return ah + ":" + bh
	}
	return bh + ":" + ah
}

// Counterpart returns the other participant's id, or the zero ObjectID when
// userID is not a participant.
func (c *Connection) Counterpart(userID primitive.ObjectID) primitive.ObjectID {
	switch userID {
	case c.RequesterID:
		return c.RecipientID
	case c.RecipientID:
		return c.RequesterID
	}
	return primitive.NilObjectID
}
