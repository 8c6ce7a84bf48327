// internal/app/features/audit/routes.go
package audit

import (
	"github.com/acadhub/quizhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the auditor endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Get("/scan", h.ServeScan)
		r.Post("/repair", h.HandleRepair)
	})
	return r
}
