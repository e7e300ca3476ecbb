// backend/src/handlers/candidate_handler.go
package handlers

import (
	"net/http"
	"time"

	"github.com/username/gasfluxo/backend/src/config"
	"github.com/username/gasfluxo/backend/src/database"
	"github.com/username/gasfluxo/backend/src/logger"
	"github.com/username/gasfluxo/backend/src/model"
	"github.com/username/gasfluxo/backend/src/models"
	"github.com/username/gasfluxo/backend/src/utils"
)

// CandidateHandler serves the read-only candidate pools the UI offers for
// manual linkage.
type CandidateHandler struct{}

func NewCandidateHandler() *CandidateHandler {
	return &CandidateHandler{}
}

// HandleListUnlinkedOrders returns the sales orders still awaiting a bank
// transaction.
func (h *CandidateHandler) HandleListUnlinkedOrders(w http.ResponseWriter, r *http.Request) {
	unitID, ok := GetUnitIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or unit not found in context", http.StatusUnauthorized)
		return
	}

	orders, err := model.ListUnlinkedOrders(database.DB, unitID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error querying unlinked orders", "unitID", unitID, "error", err)
		utils.SendJSONError(w, "Error querying unlinked orders", http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []models.OrderCandidate{}
	}
	utils.SendJSON(w, orders, http.StatusOK)
}

// HandleListLedgerMovements returns the ledger movements inside the
// configured lookback window.
func (h *CandidateHandler) HandleListLedgerMovements(w http.ResponseWriter, r *http.Request) {
	unitID, ok := GetUnitIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or unit not found in context", http.StatusUnauthorized)
		return
	}

	now := time.Now()
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" {
		from = now.AddDate(0, 0, -config.Cfg.LedgerLookbackDays).Format("2006-01-02")
	}
	if to == "" {
		to = now.Format("2006-01-02")
	}

	movements, err := model.ListLedgerMovements(database.DB, unitID, from, to)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error querying ledger movements", "unitID", unitID, "error", err)
		utils.SendJSONError(w, "Error querying ledger movements", http.StatusInternalServerError)
		return
	}
	if movements == nil {
		movements = []models.LedgerMovementCandidate{}
	}
	utils.SendJSON(w, movements, http.StatusOK)
}
