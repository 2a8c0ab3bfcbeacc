// internal/app/features/connections/routes.go
package connections

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the connection routes; the caller applies the signed-in
// gate.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.HandleCreate)
	r.Get("/", h.HandleList)
	r.Get("/status", h.HandleStatus)
	r.Put("/{id}", h.HandleUpdate)
}
