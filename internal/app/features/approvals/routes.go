// internal/app/features/approvals/routes.go
package approvals

import (
	"github.com/acadhub/quizhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the approval queue routes.
// Typically: r.Mount("/approvals", approvals.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Post("/{id}/approve", h.HandleApprove)
	})

	return r
}
