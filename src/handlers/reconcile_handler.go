// backend/src/handlers/reconcile_handler.go
package handlers

import (
	"net/http"

	"github.com/username/gasfluxo/backend/src/logger"
	"github.com/username/gasfluxo/backend/src/services"
	"github.com/username/gasfluxo/backend/src/utils"
)

type ReconcileHandler struct {
	reconciliationService services.ReconciliationService
}

func NewReconcileHandler(service services.ReconciliationService) *ReconcileHandler {
	return &ReconcileHandler{reconciliationService: service}
}

// HandleRun triggers one automatic reconciliation pass for the unit. The
// response always carries counts; a pool with no matches is a normal outcome.
func (h *ReconcileHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	unitID, ok := GetUnitIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or unit not found in context", http.StatusUnauthorized)
		return
	}
	accountID := r.URL.Query().Get("accountId")

	result, err := h.reconciliationService.RunAutoReconcile(unitID, accountID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Automatic reconciliation failed", "unitID", unitID, "error", err)
		if result != nil {
			// Counts of the aborted run still go to the caller.
			utils.SendJSON(w, result, http.StatusInternalServerError)
			return
		}
		utils.SendJSONError(w, "Automatic reconciliation failed", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, result, http.StatusOK)
}

// HandleSummary serves the cached per-unit reconciliation overview.
func (h *ReconcileHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	unitID, ok := GetUnitIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or unit not found in context", http.StatusUnauthorized)
		return
	}

	summary, err := h.reconciliationService.Summary(unitID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error building reconciliation summary", "unitID", unitID, "error", err)
		utils.SendJSONError(w, "Error building reconciliation summary", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, summary, http.StatusOK)
}
