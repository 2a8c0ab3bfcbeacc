// internal/app/features/messages/routes.go
package messages

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the messaging routes; the caller applies the signed-in
// gate. Static segments are registered before the {userID} wildcard.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.HandleSend)
	r.Post("/connection-request", h.HandleSendConnectionRequest)
	r.Get("/conversations", h.HandleConversations)
	r.Put("/conversations/{userID}/read", h.HandleMarkConversationRead)
	r.Get("/unread-count", h.HandleUnreadCount)
	r.Put("/{id}/read", h.HandleMarkRead)
	r.Get("/{userID}", h.HandleListBetween)
}
