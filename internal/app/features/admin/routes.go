// internal/app/features/admin/routes.go
package admin

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the admin routes; the caller applies the admin role
// gate.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/pending", h.HandlePending)
	r.Put("/approve/{id}", h.HandleApprove)
	r.Delete("/users/{id}", h.HandleDeleteUser)
	r.Get("/stats", h.HandleStats)
	r.Get("/audit", h.HandleAudit)
}
