// internal/app/features/notifications/handler.go
package notifications

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	notifstore "github.com/alumlink/alumlink/internal/app/store/notifications"
	"github.com/alumlink/alumlink/internal/app/system/apperr"
	sysauth "github.com/alumlink/alumlink/internal/app/system/auth"
	"github.com/alumlink/alumlink/internal/app/system/httpjson"
	"github.com/alumlink/alumlink/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the caller's notification feed. Every operation is scoped to
// the signed-in recipient; there is no cross-user access.
type Handler struct {
	Notifications *notifstore.Store
	Log           *zap.Logger
}

func NewHandler(notifications *notifstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Notifications: notifications, Log: logger}
}

// HandleList returns the caller's notifications, newest first.
// GET /api/notifications
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	claims, _ := sysauth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Notifications.ListForRecipient(ctx, claims.UserID())
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "list notifications", err))
		return
	}

	unread, err := h.Notifications.CountUnread(ctx, claims.UserID())
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "count unread notifications", err))
		return
	}

	httpjson.OK(w, map[string]any{
		"notifications": list,
		"count":         len(list),
		"unread_count":  unread,
	})
}

// HandleMarkRead marks one of the caller's notifications read. A notification
// belonging to someone else looks the same as a missing one: 404.
// PUT /api/notifications/{id}/read
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	claims, _ := sysauth.CurrentUser(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "invalid notification id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Notifications.MarkRead(ctx, id, claims.UserID()); err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "notification not found"))
			return
		}
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "mark notification read", err))
		return
	}
	httpjson.OK(w, nil)
}

// HandleMarkAllRead marks every unread notification of the caller read.
// PUT /api/notifications/read-all
func (h *Handler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	claims, _ := sysauth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Notifications.MarkAllRead(ctx, claims.UserID()); err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "mark all notifications read", err))
		return
	}
	httpjson.OK(w, nil)
}
