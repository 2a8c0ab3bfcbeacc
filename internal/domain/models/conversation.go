// internal/domain/models/conversation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation is the derived per-pair summary of a message thread. It is
// never authored directly: message creation upserts it, and read operations
// clear its unread counter.
//
// PairKey is the same canonical unordered-pair key used by Connection.
type Conversation struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PairKey      string             `bson:"pair_key" json:"-"`
	Participants []primitive.ObjectID `bson:"participants" json:"participants"`

	LastMessage     string             `bson:"last_message" json:"last_message"`
	LastMessageType string             `bson:"last_message_type" json:"last_message_type"`
	LastSenderID    primitive.ObjectID `bson:"last_sender_id" json:"last_sender_id"`

	// UnreadCount counts messages not yet read by UnreadFor. UnreadFor is the
	// zero ObjectID when nothing is unread.
	UnreadCount int                `bson:"unread_count" json:"unread_count"`
	UnreadFor   primitive.ObjectID `bson:"unread_for,omitempty" json:"unread_for,omitempty"`

	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Other returns the participant that is not userID.
func (c *Conversation) Other(userID primitive.ObjectID) primitive.ObjectID {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return primitive.NilObjectID
}
