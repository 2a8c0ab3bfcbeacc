// internal/app/features/admin/handler.go

// Package admin implements the administration surface: the registration
// approval queue, account deletion with cascade, portal statistics, and the
// audit trail view. Every route is admin-role gated.
package admin

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/alumlink/alumlink/internal/app/store/audit"
	connstore "github.com/alumlink/alumlink/internal/app/store/connections"
	eventstore "github.com/alumlink/alumlink/internal/app/store/events"
	jobstore "github.com/alumlink/alumlink/internal/app/store/jobs"
	msgstore "github.com/alumlink/alumlink/internal/app/store/messages"
	notifstore "github.com/alumlink/alumlink/internal/app/store/notifications"
	sessionstore "github.com/alumlink/alumlink/internal/app/store/sessions"
	userstore "github.com/alumlink/alumlink/internal/app/store/users"
	"github.com/alumlink/alumlink/internal/app/system/apperr"
	sysauth "github.com/alumlink/alumlink/internal/app/system/auth"
	"github.com/alumlink/alumlink/internal/app/system/auditlog"
	"github.com/alumlink/alumlink/internal/app/system/httpjson"
	"github.com/alumlink/alumlink/internal/app/system/timeouts"
	"github.com/alumlink/alumlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the admin routes.
type Handler struct {
	Users         *userstore.Store
	Sessions      *sessionstore.Store
	Connections   *connstore.Store
	Messages      *msgstore.Store
	Notifications *notifstore.Store
	Jobs          *jobstore.Store
	Events        *eventstore.Store
	Audit         *audit.Store
	AuditLog      *auditlog.Logger
	Log           *zap.Logger
}

// HandlePending returns unapproved registrations, oldest first.
// GET /api/admin/pending
func (h *Handler) HandlePending(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Users.ListPending(ctx)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "list pending", err))
		return
	}

	out := make([]map[string]any, 0, len(list))
	for i := range list {
		u := &list[i]
		out = append(out, map[string]any{
			"id":              u.ID.Hex(),
			"email":           u.Email,
			"role":            u.Role,
			"first_name":      u.FirstName,
			"last_name":       u.LastName,
			"graduation_year": u.GraduationYear,
			"department":      u.Department,
			"company":         u.Company,
			"position":        u.Position,
			"created_at":      u.CreatedAt,
		})
	}
	httpjson.OK(w, map[string]any{"pending": out, "count": len(out)})
}

// HandleApprove approves a registration so the account can log in.
// PUT /api/admin/approve/{id}
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	claims, _ := sysauth.CurrentUser(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "invalid user id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Approve(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "user not found"))
			return
		}
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "approve user", err))
		return
	}

	h.AuditLog.UserApproved(ctx, r, claims.UserID(), u.ID)

	httpjson.OK(w, map[string]any{"user": u.Public()})
}

// HandleDeleteUser removes an account and everything hanging off it:
// sessions, connections, messages, conversations, notifications. Job and
// event postings stay, with their denormalized author snapshot.
// DELETE /api/admin/users/{id}
func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	claims, _ := sysauth.CurrentUser(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "invalid user id"))
		return
	}
	if id == claims.UserID() {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "cannot delete your own account"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	n, err := h.Users.Delete(ctx, id)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "delete user", err))
		return
	}
	if n == 0 {
		httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "user not found"))
		return
	}

	// Cascade is best-effort: the account itself is gone; leftovers are
	// orphaned records, logged for cleanup.
	for name, fn := range map[string]func(context.Context, primitive.ObjectID) error{
		"sessions":      h.Sessions.DeleteForUser,
		"connections":   h.Connections.DeleteForUser,
		"messages":      h.Messages.DeleteForUser,
		"notifications": h.Notifications.DeleteForRecipient,
	} {
		if err := fn(ctx, id); err != nil {
			h.Log.Error("cascade delete failed",
				zap.String("collection", name),
				zap.String("user_id", id.Hex()),
				zap.Error(err))
		}
	}

	h.AuditLog.UserDeleted(ctx, r, claims.UserID(), id)

	httpjson.OK(w, nil)
}

// HandleStats returns portal counts for the admin dashboard.
// GET /api/admin/stats
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	byRole, err := h.Users.CountByRole(ctx)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "count users", err))
		return
	}
	pending, err := h.Users.ListPending(ctx)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "list pending", err))
		return
	}
	jobCount, err := h.Jobs.Count(ctx)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "count jobs", err))
		return
	}
	eventCount, err := h.Events.Count(ctx)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "count events", err))
		return
	}
	activeSessions, err := h.Sessions.CountActive(ctx)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "count sessions", err))
		return
	}

	httpjson.OK(w, map[string]any{
		"stats": map[string]any{
			"students":         byRole[models.RoleStudent],
			"alumni":           byRole[models.RoleAlumni],
			"admins":           byRole[models.RoleAdmin],
			"pending_approval": len(pending),
			"jobs":             jobCount,
			"events":           eventCount,
			"active_sessions":  activeSessions,
		},
	})
}

// HandleAudit returns recent audit events, newest first.
// GET /api/admin/audit?category=&event_type=&user=&limit=
func (h *Handler) HandleAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := audit.QueryFilter{
		Category:  q.Get("category"),
		EventType: q.Get("event_type"),
	}
	if v := q.Get("user"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "invalid user parameter"))
			return
		}
		filter.UserID = &id
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "invalid limit parameter"))
			return
		}
		filter.Limit = n
	}
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "since must be RFC 3339"))
			return
		}
		filter.StartTime = &t
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	events, err := h.Audit.Query(ctx, filter)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "query audit events", err))
		return
	}
	httpjson.OK(w, map[string]any{"events": events, "count": len(events)})
}
