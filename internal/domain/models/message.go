// internal/domain/models/message.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message types.
const (
	MessageText              = "text"
	MessageImage             = "image"
	MessageFile              = "file"
	MessageConnectionRequest = "connection_request"
	MessageSystem            = "system"
)

// ValidMessageType reports whether t is a known message type.
func ValidMessageType(t string) bool {
	switch t {
	case MessageText, MessageImage, MessageFile, MessageConnectionRequest, MessageSystem:
		return true
	}
	return false
}

// Message is a direct message between two connected users. A message of type
// connection_request is the one exception: it is created together with the
// pending connection it references, before the pair is connected.
type Message struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	SenderID      primitive.ObjectID  `bson:"sender_id" json:"sender_id"`
	RecipientID   primitive.ObjectID  `bson:"recipient_id" json:"recipient_id"`
	SenderType    string              `bson:"sender_type" json:"sender_type"`
	RecipientType string              `bson:"recipient_type" json:"recipient_type"`
	Content       string              `bson:"content" json:"content"`
	MessageType   string              `bson:"message_type" json:"message_type"`
	IsRead        bool                `bson:"is_read" json:"is_read"`
	ReadAt        *time.Time          `bson:"read_at,omitempty" json:"read_at,omitempty"`
	ConnectionID  *primitive.ObjectID `bson:"connection_id,omitempty" json:"connection_id,omitempty"`
	CreatedAt     time.Time           `bson:"created_at" json:"created_at"`
}
