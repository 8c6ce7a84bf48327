// internal/app/features/authn/routes.go
package authn

import "github.com/go-chi/chi/v5"

// Routes mounts the authentication endpoints.
// Typically: r.Mount("/auth", authn.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.HandleLogin)
	r.Post("/logout", h.HandleLogout)
	return r
}
