// internal/app/features/notifications/routes.go
package notifications

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the notification routes; the caller applies the
// signed-in gate.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Put("/read-all", h.HandleMarkAllRead)
	r.Put("/{id}/read", h.HandleMarkRead)
}
