// internal/app/features/messages/handler.go
package messages

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	msgstore "github.com/alumlink/alumlink/internal/app/store/messages"
	"github.com/alumlink/alumlink/internal/app/system/apperr"
	sysauth "github.com/alumlink/alumlink/internal/app/system/auth"
	"github.com/alumlink/alumlink/internal/app/system/httpjson"
	"github.com/alumlink/alumlink/internal/app/system/timeouts"
	"github.com/alumlink/alumlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves direct messaging and the conversation list.
type Handler struct {
	Messages *msgstore.Store
	Log      *zap.Logger
}

func NewHandler(messages *msgstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Messages: messages, Log: logger}
}

type sendRequest struct {
	RecipientID   string `json:"recipient_id"`
	RecipientType string `json:"recipient_type"`
	Content       string `json:"content"`
	MessageType   string `json:"message_type"`
}

func (req *sendRequest) parse() (primitive.ObjectID, error) {
	recipientID, err := primitive.ObjectIDFromHex(req.RecipientID)
	if err != nil {
		return primitive.NilObjectID, apperr.New(apperr.Validation, "invalid recipient id")
	}
	if strings.TrimSpace(req.Content) == "" {
		return primitive.NilObjectID, apperr.New(apperr.Validation, "message content is required")
	}
	return recipientID, nil
}

// HandleSend sends a message to a connected user.
// POST /api/messages
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	claims, _ := sysauth.CurrentUser(r)

	var req sendRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	recipientID, err := req.parse()
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	msg, err := h.Messages.Send(ctx, claims.UserID(), claims.UserType, msgstore.SendRequest{
		RecipientID:   recipientID,
		RecipientType: req.RecipientType,
		Content:       req.Content,
		MessageType:   req.MessageType,
	})
	if err != nil {
		switch err {
		case msgstore.ErrNotConnected:
			httpjson.Error(w, h.Log, apperr.New(apperr.Forbidden, err.Error()))
		case msgstore.ErrBadType:
			httpjson.Error(w, h.Log, apperr.New(apperr.Validation, err.Error()))
		default:
			httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "send message", err))
		}
		return
	}

	httpjson.Created(w, map[string]any{"message": msg})
}

// HandleSendConnectionRequest is the first-contact path: a student sends a
// message that creates the pending connection alongside it.
// POST /api/messages/connection-request
func (h *Handler) HandleSendConnectionRequest(w http.ResponseWriter, r *http.Request) {
	claims, _ := sysauth.CurrentUser(r)

	var req sendRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	recipientID, err := req.parse()
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	recipientType := req.RecipientType
	if recipientType == "" {
		recipientType = models.RoleAlumni
	}
	if recipientType != models.RoleAlumni {
		httpjson.Error(w, h.Log, apperr.New(apperr.Forbidden, "connection requests can only be sent to alumni"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	msg, conn, err := h.Messages.SendWithConnectionRequest(ctx, claims.UserID(), claims.UserType, msgstore.SendRequest{
		RecipientID:   recipientID,
		RecipientType: recipientType,
		Content:       req.Content,
	})
	if err != nil {
		switch err {
		case msgstore.ErrOnlyStudents:
			httpjson.Error(w, h.Log, apperr.New(apperr.Forbidden, err.Error()))
		case msgstore.ErrConnectionExists:
			httpjson.Error(w, h.Log, apperr.New(apperr.Conflict, err.Error()))
		default:
			httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "send connection request", err))
		}
		return
	}

	httpjson.Created(w, map[string]any{"message": msg, "connection": conn})
}

// HandleListBetween returns the full thread between the caller and another
// user, oldest first.
// GET /api/messages/{userID}
func (h *Handler) HandleListBetween(w http.ResponseWriter, r *http.Request) {
	claims, _ := sysauth.CurrentUser(r)

	otherID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "invalid user id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	msgs, err := h.Messages.ListBetween(ctx, claims.UserID(), otherID)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "list messages", err))
		return
	}

	httpjson.OK(w, map[string]any{"messages": msgs, "count": len(msgs)})
}

// HandleConversations returns the caller's conversations, most recent first.
// GET /api/messages/conversations
func (h *Handler) HandleConversations(w http.ResponseWriter, r *http.Request) {
	claims, _ := sysauth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	convs, err := h.Messages.Conversations(ctx, claims.UserID())
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "list conversations", err))
		return
	}

	httpjson.OK(w, map[string]any{"conversations": convs, "count": len(convs)})
}

// HandleMarkRead marks one message read. Only the recipient's call has any
// effect.
// PUT /api/messages/{id}/read
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	claims, _ := sysauth.CurrentUser(r)

	msgID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "invalid message id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Messages.MarkRead(ctx, msgID, claims.UserID()); err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "mark message read", err))
		return
	}
	httpjson.OK(w, nil)
}

// HandleMarkConversationRead marks the whole thread from the other user as
// read and clears the unread counter. Idempotent.
// PUT /api/messages/conversations/{userID}/read
func (h *Handler) HandleMarkConversationRead(w http.ResponseWriter, r *http.Request) {
	claims, _ := sysauth.CurrentUser(r)

	otherID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "invalid user id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Messages.MarkConversationRead(ctx, claims.UserID(), otherID); err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "mark conversation read", err))
		return
	}
	httpjson.OK(w, nil)
}

// HandleUnreadCount returns the caller's total unread message count, for the
// badge in the nav bar.
// GET /api/messages/unread-count
func (h *Handler) HandleUnreadCount(w http.ResponseWriter, r *http.Request) {
	claims, _ := sysauth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Messages.UnreadCount(ctx, claims.UserID())
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "count unread", err))
		return
	}
	httpjson.OK(w, map[string]any{"unread_count": n})
}
