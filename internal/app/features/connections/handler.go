// internal/app/features/connections/handler.go
package connections

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	connstore "github.com/alumlink/alumlink/internal/app/store/connections"
	"github.com/alumlink/alumlink/internal/app/system/apperr"
	sysauth "github.com/alumlink/alumlink/internal/app/system/auth"
	"github.com/alumlink/alumlink/internal/app/system/httpjson"
	"github.com/alumlink/alumlink/internal/app/system/notify"
	"github.com/alumlink/alumlink/internal/app/system/timeouts"
	"github.com/alumlink/alumlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the connection request/accept/reject workflow.
type Handler struct {
	Connections *connstore.Store
	Notifier    *notify.Notifier
	Log         *zap.Logger
}

func NewHandler(conns *connstore.Store, notifier *notify.Notifier, logger *zap.Logger) *Handler {
	return &Handler{Connections: conns, Notifier: notifier, Log: logger}
}

type createRequest struct {
	RecipientID   string `json:"recipient_id"`
	RecipientType string `json:"recipient_type"`
	Message       string `json:"message"`
}

// HandleCreate creates a pending connection request to another user.
// POST /api/connections
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	claims, _ := sysauth.CurrentUser(r)

	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	recipientID, err := primitive.ObjectIDFromHex(req.RecipientID)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "invalid recipient id"))
		return
	}
	if !models.ValidRole(req.RecipientType) {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "invalid recipient type"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	conn, err := h.Connections.Create(ctx, connstore.CreateRequest{
		RequesterID:   claims.UserID(),
		RecipientID:   recipientID,
		RequesterType: claims.UserType,
		RecipientType: req.RecipientType,
		Message:       req.Message,
	})
	if err != nil {
		switch err {
		case connstore.ErrSelfConnection:
			httpjson.Error(w, h.Log, apperr.New(apperr.Validation, err.Error()))
		case connstore.ErrDuplicate:
			httpjson.Error(w, h.Log, apperr.New(apperr.Conflict, err.Error()))
		default:
			httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "create connection", err))
		}
		return
	}

	httpjson.Created(w, map[string]any{"connection": conn})
}

// HandleList returns the caller's connections.
// GET /api/connections?filter=pending|accepted|all&with_user_info=true
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	claims, _ := sysauth.CurrentUser(r)

	filter := r.URL.Query().Get("filter")
	withUserInfo := r.URL.Query().Get("with_user_info") == "true"

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	entries, err := h.Connections.ListForUser(ctx, claims.UserID(), filter, withUserInfo)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "list connections", err))
		return
	}

	httpjson.OK(w, map[string]any{"connections": entries, "count": len(entries)})
}

// HandleStatus reports the connection status between the caller and another
// user: "none" when the pair has no history.
// GET /api/connections/status?user=<id>
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	claims, _ := sysauth.CurrentUser(r)

	otherID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("user"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "invalid or missing user parameter"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	conn, err := h.Connections.GetBetween(ctx, claims.UserID(), otherID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.OK(w, map[string]any{"status": "none"})
			return
		}
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "get connection", err))
		return
	}

	httpjson.OK(w, map[string]any{"status": conn.Status, "connection": conn})
}

type updateRequest struct {
	Status string `json:"status"`
}

// HandleUpdate accepts or rejects a pending connection request. Only the
// recipient may respond. Accepting fires the notification to the student
// requester.
// PUT /api/connections/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	claims, _ := sysauth.CurrentUser(r)

	connID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "invalid connection id"))
		return
	}

	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if req.Status != models.ConnectionAccepted && req.Status != models.ConnectionRejected {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, `status must be "accepted" or "rejected"`))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	existing, err := h.Connections.GetByID(ctx, connID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "connection not found"))
			return
		}
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "get connection", err))
		return
	}
	if existing.RecipientID != claims.UserID() {
		httpjson.Error(w, h.Log, apperr.New(apperr.Forbidden, "only the recipient can respond to a connection request"))
		return
	}
	if existing.Status != models.ConnectionPending {
		httpjson.Error(w, h.Log, apperr.New(apperr.Conflict, "connection request has already been answered"))
		return
	}

	conn, err := h.Connections.UpdateStatus(ctx, connID, req.Status)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "connection not found"))
			return
		}
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "update connection", err))
		return
	}

	// The mutation and the side effect are separate steps: a notification
	// failure is logged by the notifier and never fails the accept.
	if conn.Status == models.ConnectionAccepted && conn.RequesterType == models.RoleStudent {
		h.Notifier.ConnectionAccepted(ctx, conn.RequesterID,
			claims.FullName(), conn.ID)
	}

	httpjson.OK(w, map[string]any{"connection": conn})
}
