// internal/app/features/audit/handler.go
package audit

import (
	"encoding/json"
	"errors"
	"net/http"

	driftaudit "github.com/acadhub/quizhub/internal/app/audit"
	"github.com/acadhub/quizhub/internal/app/system/gates"
	"go.uber.org/zap"
)

// Handler exposes the consistency auditor to platform admins.
type Handler struct {
	auditor *driftaudit.Auditor
	log     *zap.Logger
}

func NewHandler(auditor *driftaudit.Auditor, logger *zap.Logger) *Handler {
	return &Handler{auditor: auditor, log: logger}
}

// ServeScan handles GET /audit/scan: runs a full drift scan and returns
// every record found.
func (h *Handler) ServeScan(w http.ResponseWriter, r *http.Request) {
	g := gates.RequireSuperAdmin(w, r)
	if !g.OK {
		return
	}

	drifts := h.auditor.Scan(r.Context())
	records := []driftaudit.DriftRecord{}
	for drifts.Next(r.Context()) {
		records = append(records, drifts.Record())
	}
	if err := drifts.Err(); err != nil {
		h.log.Error("drift scan", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Drifts []driftaudit.DriftRecord `json:"drifts"`
	}{records})
}

// HandleRepair handles POST /audit/repair with a drift record body.
func (h *Handler) HandleRepair(w http.ResponseWriter, r *http.Request) {
	g := gates.RequireSuperAdmin(w, r)
	if !g.OK {
		return
	}

	var rec driftaudit.DriftRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if rec.Kind == "" {
		http.Error(w, "kind is required", http.StatusUnprocessableEntity)
		return
	}

	if err := h.auditor.Repair(r.Context(), rec); err != nil {
		if errors.Is(err, driftaudit.ErrUnrepairable) {
			http.Error(w, "drift cannot be repaired automatically", http.StatusConflict)
			return
		}
		h.log.Error("drift repair", zap.String("kind", rec.Kind), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
