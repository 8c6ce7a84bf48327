// internal/app/features/members/routes.go
package members

import (
	"github.com/acadhub/quizhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the member directory endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Get("/", h.ServeList)
		r.Post("/{id}/block", h.HandleBlock)
		r.Post("/{id}/unblock", h.HandleUnblock)
	})
	return r
}
