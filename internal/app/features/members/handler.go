// internal/app/features/members/handler.go
package members

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/acadhub/quizhub/internal/app/hierarchy"
	"github.com/acadhub/quizhub/internal/app/lifecycle"
	collegestore "github.com/acadhub/quizhub/internal/app/store/colleges"
	userstore "github.com/acadhub/quizhub/internal/app/store/users"
	"github.com/acadhub/quizhub/internal/app/system/gates"
	"github.com/acadhub/quizhub/internal/app/system/roles"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the member directory and block/unblock actions.
type Handler struct {
	users    *userstore.Store
	resolver *hierarchy.Resolver
	engine   *lifecycle.Engine
	log      *zap.Logger
}

func NewHandler(users *userstore.Store, resolver *hierarchy.Resolver, engine *lifecycle.Engine, logger *zap.Logger) *Handler {
	return &Handler{users: users, resolver: resolver, engine: engine, log: logger}
}

// ServeList handles GET /members. Superadmins see every account; staff
// see the members of their own college.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	g := gates.RequireStaff(w, r)
	if !g.OK {
		return
	}
	ctx := r.Context()

	if g.Role == roles.SuperAdmin {
		list, err := h.users.Find(ctx, bson.M{})
		if err != nil {
			h.log.Error("list members", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
		return
	}

	actor, err := h.users.GetByID(ctx, g.UserID)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	m, err := h.resolver.Resolve(ctx, *actor)
	if err != nil {
		if errors.Is(err, collegestore.ErrNotFound) {
			http.Error(w, "no college affiliation", http.StatusNotFound)
			return
		}
		h.log.Error("resolve membership", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	list, err := h.resolver.ListCollegeMembers(ctx, *m.College)
	if err != nil {
		h.log.Error("list college members", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// HandleBlock handles POST /members/{id}/block.
func (h *Handler) HandleBlock(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, true)
}

// HandleUnblock handles POST /members/{id}/unblock.
func (h *Handler) HandleUnblock(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, false)
}

func (h *Handler) setBlocked(w http.ResponseWriter, r *http.Request, blocked bool) {
	g := gates.RequireStaff(w, r)
	if !g.OK {
		return
	}
	targetID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var steps lifecycle.StepLog
	if blocked {
		steps, err = h.engine.BlockUser(r.Context(), targetID, g.UserID)
	} else {
		steps, err = h.engine.UnblockUser(r.Context(), targetID, g.UserID)
	}
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrNotFound):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, lifecycle.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		default:
			h.log.Error("set blocked", zap.Bool("blocked", blocked), zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Steps lifecycle.StepLog `json:"steps"`
	}{steps})
}
