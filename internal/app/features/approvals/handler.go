// internal/app/features/approvals/handler.go
package approvals

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/acadhub/quizhub/internal/app/lifecycle"
	userstore "github.com/acadhub/quizhub/internal/app/store/users"
	"github.com/acadhub/quizhub/internal/app/system/gates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the registration approval queue.
type Handler struct {
	users  *userstore.Store
	engine *lifecycle.Engine
	log    *zap.Logger
}

func NewHandler(users *userstore.Store, engine *lifecycle.Engine, logger *zap.Logger) *Handler {
	return &Handler{users: users, engine: engine, log: logger}
}

// ServeList handles GET /approvals: pending registrations.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	g := gates.RequireStaff(w, r)
	if !g.OK {
		return
	}

	pending, err := h.users.Find(r.Context(), bson.M{"is_approved": false})
	if err != nil {
		h.log.Error("list pending registrations", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(pending)
}

type approveRequest struct {
	Password string `json:"password,omitempty"`
}

// HandleApprove handles POST /approvals/{id}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	g := gates.RequireStaff(w, r)
	if !g.OK {
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req approveRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // body is optional
	}

	user, err := h.engine.ApproveUser(r.Context(), id, g.Role, lifecycle.ApproveExtras{Password: req.Password})
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrNotFound):
			http.Error(w, "user not found", http.StatusNotFound)
		case errors.Is(err, lifecycle.ErrAlreadyApproved):
			http.Error(w, "user is already approved", http.StatusConflict)
		case errors.Is(err, lifecycle.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		case errors.Is(err, lifecycle.ErrMissingTenantName):
			http.Error(w, "college name is required for college head approval", http.StatusUnprocessableEntity)
		case errors.Is(err, lifecycle.ErrDuplicateTenant):
			http.Error(w, "college name or id already in use", http.StatusConflict)
		default:
			h.log.Error("approve user", zap.String("id", id.Hex()), zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(user)
}
