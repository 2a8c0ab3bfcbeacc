// internal/app/features/jobs/routes.go
package jobs

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/alumlink/alumlink/internal/domain/models"
)

// MountRoutes mounts the job board routes; the caller applies the signed-in
// gate. Posting is limited to alumni and admins; edit/delete ownership is
// checked in the handlers.
func (h *Handler) MountRoutes(r chi.Router, requireRole func(...string) func(http.Handler) http.Handler) {
	r.Get("/", h.HandleList)
	r.Get("/{id}", h.HandleGet)
	r.Post("/{id}/apply", h.HandleApply)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)

	r.Group(func(r chi.Router) {
		r.Use(requireRole(models.RoleAlumni, models.RoleAdmin))
		r.Post("/", h.HandleCreate)
	})
}
