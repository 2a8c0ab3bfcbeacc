// internal/app/store/messages/store.go

// Package messages stores direct messages and maintains the derived
// conversations collection. Sending requires an accepted connection, with
// one carve-out: the message that itself constitutes a connection request.
package messages

import (
	"context"
	"errors"
	"time"

	"github.com/alumlink/alumlink/internal/app/store/connections"
	"github.com/alumlink/alumlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotConnected is returned when sender and recipient do not have an
	// accepted connection.
	ErrNotConnected = errors.New("users are not connected")
	// ErrOnlyStudents is returned when a non-student tries the
	// connection-request message path.
	ErrOnlyStudents = errors.New("only students can send connection requests")
	// ErrConnectionExists is returned by the connection-request path when an
	// active connection already exists.
	ErrConnectionExists = errors.New("a connection already exists between these users")
	// ErrBadType is returned for message types a client may not send
	// directly (connection_request and system are service-generated).
	ErrBadType = errors.New(`message type must be "text"|"image"|"file"`)
)

// Store manages the messages and conversations collections. It consults the
// connections store for the accepted-connection gate.
type Store struct {
	messages      *mongo.Collection
	conversations *mongo.Collection
	conns         *connections.Store
}

func New(db *mongo.Database, conns *connections.Store) *Store {
	return &Store{
		messages:      db.Collection("messages"),
		conversations: db.Collection("conversations"),
		conns:         conns,
	}
}

// EnsureIndexes creates the thread and conversation indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	msgIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "pair_key", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_messages_thread"),
		},
		{
			Keys:    bson.D{{Key: "recipient_id", Value: 1}, {Key: "is_read", Value: 1}},
			Options: options.Index().SetName("idx_messages_unread"),
		},
	}
	if _, err := s.messages.Indexes().CreateMany(ctx, msgIndexes); err != nil {
		return err
	}

	convIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "pair_key", Value: 1}},
			Options: options.Index().SetName("idx_conversations_pair").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "participants", Value: 1}, {Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("idx_conversations_recent"),
		},
	}
	_, err := s.conversations.Indexes().CreateMany(ctx, convIndexes)
	return err
}

// messageDoc is the stored shape: Message plus the pair key used for thread
// queries.
type messageDoc struct {
	models.Message `bson:",inline"`
	PairKey        string `bson:"pair_key"`
}

// SendRequest holds the inputs for sending a message.
type SendRequest struct {
	RecipientID   primitive.ObjectID
	RecipientType string
	Content       string
	MessageType   string
}

// Send persists a message between two connected users and updates the
// derived conversation. Fails with ErrNotConnected unless the pair has an
// accepted connection.
func (s *Store) Send(ctx context.Context, senderID primitive.ObjectID, senderType string, req SendRequest) (*models.Message, error) {
	msgType := req.MessageType
	if msgType == "" {
		msgType = models.MessageText
	}
	switch msgType {
	case models.MessageText, models.MessageImage, models.MessageFile:
	default:
		return nil, ErrBadType
	}

	conn, err := s.conns.GetBetween(ctx, senderID, req.RecipientID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotConnected
		}
		return nil, err
	}
	if conn.Status != models.ConnectionAccepted {
		return nil, ErrNotConnected
	}

	msg := models.Message{
		ID:            primitive.NewObjectID(),
		SenderID:      senderID,
		RecipientID:   req.RecipientID,
		SenderType:    senderType,
		RecipientType: req.RecipientType,
		Content:       req.Content,
		MessageType:   msgType,
		ConnectionID:  &conn.ID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.insertWithConversation(ctx, msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SendWithConnectionRequest is the bootstrap path for first contact: it
// creates a pending connection carrying the message text and a
// connection_request message referencing it. Student senders only.
//
// The two writes are sequential, not transactional; a crash between them can
// leave the connection without its message. See the design notes.
func (s *Store) SendWithConnectionRequest(ctx context.Context, senderID primitive.ObjectID, senderType string, req SendRequest) (*models.Message, *models.Connection, error) {
	if senderType != models.RoleStudent {
		return nil, nil, ErrOnlyStudents
	}

	conn, err := s.conns.Create(ctx, connections.CreateRequest{
		RequesterID:   senderID,
		RecipientID:   req.RecipientID,
		RequesterType: senderType,
		RecipientType: req.RecipientType,
		Message:       req.Content,
	})
	if err != nil {
		if err == connections.ErrDuplicate {
			return nil, nil, ErrConnectionExists
		}
		return nil, nil, err
	}

	msg := models.Message{
		ID:            primitive.NewObjectID(),
		SenderID:      senderID,
		RecipientID:   req.RecipientID,
		SenderType:    senderType,
		RecipientType: req.RecipientType,
		Content:       req.Content,
		MessageType:   models.MessageConnectionRequest,
		ConnectionID:  &conn.ID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.insertWithConversation(ctx, msg); err != nil {
		return nil, nil, err
	}
	return &msg, conn, nil
}

func (s *Store) insertWithConversation(ctx context.Context, msg models.Message) error {
	doc := messageDoc{
		Message: msg,
		PairKey: models.PairKeyFor(msg.SenderID, msg.RecipientID),
	}
	if _, err := s.messages.InsertOne(ctx, doc); err != nil {
		return err
	}
	return s.upsertConversation(ctx, msg, doc.PairKey)
}

// upsertConversation maintains the derived per-pair summary: last message
// snapshot, unread counter for the recipient. If the unread side flips (the
// previous unread messages belonged to the sender), the counter restarts at
// one instead of accumulating onto the stale value.
func (s *Store) upsertConversation(ctx context.Context, msg models.Message, pairKey string) error {
	now := time.Now().UTC()

	var existing models.Conversation
	err := s.conversations.FindOne(ctx, bson.M{"pair_key": pairKey}).Decode(&existing)
	switch {
	case err == mongo.ErrNoDocuments:
		conv := models.Conversation{
			ID:              primitive.NewObjectID(),
			PairKey:         pairKey,
			Participants:    []primitive.ObjectID{msg.SenderID, msg.RecipientID},
			LastMessage:     msg.Content,
			LastMessageType: msg.MessageType,
			LastSenderID:    msg.SenderID,
			UnreadCount:     1,
			UnreadFor:       msg.RecipientID,
			UpdatedAt:       now,
		}
		_, err := s.conversations.InsertOne(ctx, conv)
		return err
	case err != nil:
		return err
	}

	set := bson.M{
		"last_message":      msg.Content,
		"last_message_type": msg.MessageType,
		"last_sender_id":    msg.SenderID,
		"unread_for":        msg.RecipientID,
		"updated_at":        now,
	}
	update := bson.M{"$set": set}
	if existing.UnreadFor == msg.RecipientID {
		update["$inc"] = bson.M{"unread_count": 1}
	} else {
		set["unread_count"] = 1
	}

	_, err = s.conversations.UpdateOne(ctx, bson.M{"_id": existing.ID}, update)
	return err
}

// ListBetween returns all messages between two users in chronological
// ascending order. Retrieving history does not require an accepted
// connection.
func (s *Store) ListBetween(ctx context.Context, a, b primitive.ObjectID) ([]models.Message, error) {
	cur, err := s.messages.Find(ctx,
		bson.M{"pair_key": models.PairKeyFor(a, b)},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Conversations returns the user's conversations, most recent activity
// first.
func (s *Store) Conversations(ctx context.Context, userID primitive.ObjectID) ([]models.Conversation, error) {
	cur, err := s.conversations.Find(ctx,
		bson.M{"participants": userID},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Conversation
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead marks a single message read. The filter requires the reader to be
// the message's recipient, so a sender cannot mark their own outgoing
// message read on the recipient's behalf; such calls are a silent no-op.
func (s *Store) MarkRead(ctx context.Context, messageID, readerID primitive.ObjectID) error {
	now := time.Now().UTC()
	_, err := s.messages.UpdateOne(ctx,
		bson.M{"_id": messageID, "recipient_id": readerID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": now}})
	return err
}

// MarkConversationRead bulk-marks every unread message from otherID to
// readerID and clears the conversation's unread counter for the reader.
// Calling it again is a no-op: the counter stays at zero, never negative.
func (s *Store) MarkConversationRead(ctx context.Context, readerID, otherID primitive.ObjectID) error {
	now := time.Now().UTC()
	_, err := s.messages.UpdateMany(ctx,
		bson.M{"sender_id": otherID, "recipient_id": readerID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": now}})
	if err != nil {
		return err
	}

	_, err = s.conversations.UpdateOne(ctx,
		bson.M{"pair_key": models.PairKeyFor(readerID, otherID), "unread_for": readerID},
		bson.M{"$set": bson.M{"unread_count": 0, "unread_for": primitive.NilObjectID}})
	return err
}

// UnreadCount returns the number of unread messages addressed to the user.
func (s *Store) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.messages.CountDocuments(ctx, bson.M{"recipient_id": userID, "is_read": false})
}

// DeleteForUser removes all messages and conversations involving the user.
// Used when an admin deletes an account.
func (s *Store) DeleteForUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.messages.DeleteMany(ctx, bson.M{
		"$or": bson.A{
			bson.M{"sender_id": userID},
			bson.M{"recipient_id": userID},
		},
	})
	if err != nil {
		return err
	}
	_, err = s.conversations.DeleteMany(ctx, bson.M{"participants": userID})
	return err
}
