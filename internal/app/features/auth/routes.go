// internal/app/features/auth/routes.go
package auth

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the authentication routes on the given router.
// Register and login are public; logout tolerates an expired session.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)

	r.Group(func(r chi.Router) {
		r.Use(h.SessionMgr.LoadSessionUser)
		r.Post("/logout", h.HandleLogout)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.SessionMgr.RequireSignedIn)
		r.Get("/verify", h.HandleVerify)
	})
}
