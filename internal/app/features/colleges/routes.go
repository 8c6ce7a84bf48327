// internal/app/features/colleges/routes.go
package colleges

import (
	"github.com/acadhub/quizhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the college management endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Get("/", h.ServeList)
		r.Get("/{id}", h.ServeView)
		r.Post("/{id}/toggle_status", h.HandleToggleStatus)
		r.Delete("/{id}", h.HandleDelete)
		r.Post("/{id}/sub_departments", h.HandleAddSubDepartment)
		r.Delete("/{id}/sub_departments/{subID}", h.HandleRemoveSubDepartment)
		r.Post("/{id}/import_students", h.HandleImportStudents)
	})
	return r
}
