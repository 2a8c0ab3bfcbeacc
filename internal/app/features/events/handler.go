// internal/app/features/events/handler.go
package events

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	eventstore "github.com/alumlink/alumlink/internal/app/store/events"
	"github.com/alumlink/alumlink/internal/app/system/apperr"
	sysauth "github.com/alumlink/alumlink/internal/app/system/auth"
	"github.com/alumlink/alumlink/internal/app/system/htmlsanitize"
	"github.com/alumlink/alumlink/internal/app/system/httpjson"
	"github.com/alumlink/alumlink/internal/app/system/notify"
	"github.com/alumlink/alumlink/internal/app/system/timeouts"
	"github.com/alumlink/alumlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the events board.
type Handler struct {
	Events   *eventstore.Store
	Notifier *notify.Notifier
	Log      *zap.Logger
}

func NewHandler(events *eventstore.Store, notifier *notify.Notifier, logger *zap.Logger) *Handler {
	return &Handler{Events: events, Notifier: notifier, Log: logger}
}

type eventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
	Active      *bool     `json:"active"`
}

func (req *eventRequest) validate() error {
	if strings.TrimSpace(req.Title) == "" {
		return apperr.New(apperr.Validation, "title is required")
	}
	if req.StartsAt.IsZero() {
		return apperr.New(apperr.Validation, "starts_at is required")
	}
	return nil
}

// HandleCreate posts a new event and notifies members. Alumni and admins
// only (route-gated).
// POST /api/events
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	claims, _ := sysauth.CurrentUser(r)

	var req eventRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := req.validate(); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	event, err := h.Events.Create(ctx, models.Event{
		Title:       req.Title,
		Description: htmlsanitize.Sanitize(req.Description),
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		Organizer: models.PostedBy{
			ID:   claims.UserID(),
			Name: claims.FullName(),
			Type: claims.UserType,
		},
	})
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "create event", err))
		return
	}

	h.Notifier.NewEvent(ctx, &event)

	httpjson.Created(w, map[string]any{"event": event})
}

// HandleList returns events soonest first. Deactivated events are included
// only when all=true.
// GET /api/events?all=true
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	activeOnly := r.URL.Query().Get("all") != "true"
	list, err := h.Events.List(ctx, activeOnly)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "list events", err))
		return
	}
	httpjson.OK(w, map[string]any{"events": list, "count": len(list)})
}

// HandleGet returns one event.
// GET /api/events/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "invalid event id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	event, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "event not found"))
			return
		}
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "get event", err))
		return
	}
	httpjson.OK(w, map[string]any{"event": event})
}

// HandleUpdate edits an event. Organizer or admin only.
// PUT /api/events/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	claims, _ := sysauth.CurrentUser(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "invalid event id"))
		return
	}

	var req eventRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := req.validate(); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	existing, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "event not found"))
			return
		}
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "get event", err))
		return
	}
	if !canMutate(claims, existing.Organizer.ID) {
		httpjson.Error(w, h.Log, apperr.New(apperr.Forbidden, "only the organizer or an admin can edit this event"))
		return
	}

	active := existing.Active
	if req.Active != nil {
		active = *req.Active
	}
	event, err := h.Events.Apply(ctx, id, eventstore.Update{
		Title:       req.Title,
		Description: htmlsanitize.Sanitize(req.Description),
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		Active:      active,
	})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "event not found"))
			return
		}
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "update event", err))
		return
	}
	httpjson.OK(w, map[string]any{"event": event})
}

// HandleDelete removes an event. Organizer or admin only.
// DELETE /api/events/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	claims, _ := sysauth.CurrentUser(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "invalid event id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	existing, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "event not found"))
			return
		}
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "get event", err))
		return
	}
	if !canMutate(claims, existing.Organizer.ID) {
		httpjson.Error(w, h.Log, apperr.New(apperr.Forbidden, "only the organizer or an admin can delete this event"))
		return
	}

	if _, err := h.Events.Delete(ctx, id); err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "delete event", err))
		return
	}
	httpjson.OK(w, nil)
}

func canMutate(claims *sysauth.Claims, organizerID primitive.ObjectID) bool {
	return claims.UserType == models.RoleAdmin || claims.UserID() == organizerID
}
