// internal/app/features/authn/handler.go
package authn

import (
	"encoding/json"
	"net/http"

	userstore "github.com/acadhub/quizhub/internal/app/store/users"
	"github.com/acadhub/quizhub/internal/app/system/auth"
	"github.com/acadhub/quizhub/internal/app/system/password"
	"go.uber.org/zap"
)

// Handler serves sign-in and sign-out.
type Handler struct {
	users    *userstore.Store
	sessions *auth.SessionManager
	hasher   password.Hasher
	log      *zap.Logger
}

func NewHandler(users *userstore.Store, sessions *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		users:    users,
		sessions: sessions,
		hasher:   password.Bcrypt{},
		log:      logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CollegeID string `json:"college_id,omitempty"`
}

// HandleLogin handles POST /auth/login.
//
// Pending and blocked accounts are rejected with the same message as a
// wrong credential so the endpoint does not leak account state.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		h.fail(w, req.Email, "unknown email")
		return
	}
	if !h.hasher.Verify(req.Password, user.PasswordHash) {
		h.fail(w, req.Email, "bad credential")
		return
	}
	if !user.IsApproved || user.IsBlocked {
		h.fail(w, req.Email, "account not active")
		return
	}

	su := &auth.SessionUser{
		ID:        user.ID.Hex(),
		Name:      user.FullName,
		Email:     user.Email,
		Role:      user.Role,
		CollegeID: user.CollegeID,
	}
	if err := h.sessions.SignIn(w, r, su); err != nil {
		h.log.Error("session save failed", zap.Error(err))
		http.Error(w, "sign-in failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(loginResponse{
		ID:        su.ID,
		Name:      su.Name,
		Email:     su.Email,
		Role:      su.Role,
		CollegeID: su.CollegeID,
	})
}

func (h *Handler) fail(w http.ResponseWriter, email, reason string) {
	h.log.Info("login rejected", zap.String("email", email), zap.String("reason", reason))
	http.Error(w, "invalid email or password", http.StatusUnauthorized)
}

// HandleLogout handles POST /auth/logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SignOut(w, r); err != nil {
		h.log.Error("session clear failed", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}
