// internal/app/features/users/routes.go
package users

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the directory routes; the caller applies the signed-in
// gate.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/students", h.HandleListStudents)
	r.Get("/alumni", h.HandleListAlumni)
	r.Get("/{id}", h.HandleGetUser)
}

// MountProfileRoutes mounts the self-service profile routes.
func (h *Handler) MountProfileRoutes(r chi.Router) {
	r.Get("/", h.HandleGetProfile)
	r.Put("/", h.HandleUpdateProfile)
}
