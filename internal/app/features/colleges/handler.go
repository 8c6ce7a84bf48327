// internal/app/features/colleges/handler.go
package colleges

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/acadhub/quizhub/internal/app/hierarchy"
	"github.com/acadhub/quizhub/internal/app/lifecycle"
	collegestore "github.com/acadhub/quizhub/internal/app/store/colleges"
	"github.com/acadhub/quizhub/internal/app/system/csvutil"
	"github.com/acadhub/quizhub/internal/app/system/gates"
	"github.com/acadhub/quizhub/internal/app/system/roles"
	"github.com/acadhub/quizhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves tenant management: colleges, sub-departments, status
// toggles, deletion, and roster import.
type Handler struct {
	colleges *collegestore.Store
	resolver *hierarchy.Resolver
	engine   *lifecycle.Engine
	log      *zap.Logger
}

func NewHandler(colleges *collegestore.Store, resolver *hierarchy.Resolver, engine *lifecycle.Engine, logger *zap.Logger) *Handler {
	return &Handler{colleges: colleges, resolver: resolver, engine: engine, log: logger}
}

// ServeList handles GET /colleges. Superadmins see all colleges; a
// college head sees only their own.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	g := gates.RequireHeadOrSuperAdmin(w, r)
	if !g.OK {
		return
	}

	filter := bson.M{}
	if g.Role == roles.CollegeHead {
		filter["hod_id"] = g.UserID
	}
	list, err := h.colleges.Find(r.Context(), filter)
	if err != nil {
		h.log.Error("list colleges", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// ServeView handles GET /colleges/{id}: the college with its members.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	g := gates.RequireHeadOrSuperAdmin(w, r)
	if !g.OK {
		return
	}
	college, ok := h.loadCollege(w, r, g)
	if !ok {
		return
	}

	members, err := h.resolver.ListCollegeMembers(r.Context(), college)
	if err != nil {
		h.log.Error("list college members", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		College models.College `json:"college"`
		Members []models.User  `json:"members"`
	}{college, members})
}

// HandleToggleStatus handles POST /colleges/{id}/toggle_status.
func (h *Handler) HandleToggleStatus(w http.ResponseWriter, r *http.Request) {
	g := gates.RequireSuperAdmin(w, r)
	if !g.OK {
		return
	}
	college, ok := h.loadCollege(w, r, g)
	if !ok {
		return
	}

	steps, err := h.engine.ToggleTenantStatus(r.Context(), college.ID)
	if err != nil {
		h.writeEngineError(w, err, "toggle tenant status")
		return
	}
	h.writeSteps(w, steps)
}

// HandleDelete handles DELETE /colleges/{id}. Irreversible.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	g := gates.RequireSuperAdmin(w, r)
	if !g.OK {
		return
	}
	college, ok := h.loadCollege(w, r, g)
	if !ok {
		return
	}

	steps, err := h.engine.DeleteCollege(r.Context(), college.ID)
	if err != nil {
		h.writeEngineError(w, err, "delete college")
		return
	}
	h.writeSteps(w, steps)
}

type subDepartmentRequest struct {
	Name         string `json:"name"`
	HeadFullName string `json:"head_full_name"`
	HeadEmail    string `json:"head_email"`
	Password     string `json:"password,omitempty"`
}

// HandleAddSubDepartment handles POST /colleges/{id}/sub_departments.
func (h *Handler) HandleAddSubDepartment(w http.ResponseWriter, r *http.Request) {
	g := gates.RequireHeadOrSuperAdmin(w, r)
	if !g.OK {
		return
	}
	college, ok := h.loadCollege(w, r, g)
	if !ok {
		return
	}

	var req subDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.HeadEmail == "" {
		http.Error(w, "name and head_email are required", http.StatusUnprocessableEntity)
		return
	}

	sd, head, err := h.engine.CreateSubDepartment(r.Context(), college.ID, lifecycle.SubDepartmentSpec{
		Name:         req.Name,
		HeadFullName: req.HeadFullName,
		HeadEmail:    req.HeadEmail,
		Password:     req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrDuplicateSubUnit):
			http.Error(w, "sub-department name already in use", http.StatusConflict)
		case errors.Is(err, lifecycle.ErrAccountAffiliated):
			http.Error(w, "head email belongs to an account in another college", http.StatusConflict)
		default:
			h.writeEngineError(w, err, "create sub-department")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(struct {
		SubDepartment models.SubDepartment `json:"sub_department"`
		Head          *models.User         `json:"head"`
	}{sd, head})
}

// HandleRemoveSubDepartment handles
// DELETE /colleges/{id}/sub_departments/{subID}.
func (h *Handler) HandleRemoveSubDepartment(w http.ResponseWriter, r *http.Request) {
	g := gates.RequireHeadOrSuperAdmin(w, r)
	if !g.OK {
		return
	}
	college, ok := h.loadCollege(w, r, g)
	if !ok {
		return
	}

	subID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "subID"))
	if err != nil {
		http.Error(w, "invalid sub-department id", http.StatusBadRequest)
		return
	}

	if err := h.engine.RemoveSubDepartment(r.Context(), college.ID, subID); err != nil {
		h.writeEngineError(w, err, "remove sub-department")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleImportStudents handles POST /colleges/{id}/import_students with
// a CSV body (full name, email, optional department per row).
func (h *Handler) HandleImportStudents(w http.ResponseWriter, r *http.Request) {
	g := gates.RequireHeadOrSuperAdmin(w, r)
	if !g.OK {
		return
	}
	college, ok := h.loadCollege(w, r, g)
	if !ok {
		return
	}

	rows, htmlErr, err := csvutil.PreScanStudentsCSV(http.MaxBytesReader(w, r.Body, csvutil.MaxUploadSize))
	if err != nil {
		http.Error(w, "could not read upload", http.StatusBadRequest)
		return
	}
	if htmlErr != "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(htmlErr))
		return
	}
	if len(rows) > csvutil.MaxRows {
		http.Error(w, "too many rows", http.StatusRequestEntityTooLarge)
		return
	}

	steps, err := h.engine.ImportStudents(r.Context(), college.ID, rows)
	if err != nil {
		h.writeEngineError(w, err, "import students")
		return
	}
	h.writeSteps(w, steps)
}

// loadCollege resolves {id} and enforces college-head scoping: a head
// may only operate on the college they head.
func (h *Handler) loadCollege(w http.ResponseWriter, r *http.Request, g gates.Result) (models.College, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return models.College{}, false
	}
	college, err := h.colleges.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, collegestore.ErrNotFound) {
			http.Error(w, "college not found", http.StatusNotFound)
		} else {
			h.log.Error("load college", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return models.College{}, false
	}
	if g.Role == roles.CollegeHead && college.HodID != g.UserID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return models.College{}, false
	}
	return college, true
}

func (h *Handler) writeEngineError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, lifecycle.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		h.log.Error(op, zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeSteps(w http.ResponseWriter, steps lifecycle.StepLog) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Steps lifecycle.StepLog `json:"steps"`
	}{steps})
}
