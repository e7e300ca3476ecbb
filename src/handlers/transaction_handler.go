// backend/src/handlers/transaction_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/username/gasfluxo/backend/src/database"
	"github.com/username/gasfluxo/backend/src/logger"
	"github.com/username/gasfluxo/backend/src/model"
	"github.com/username/gasfluxo/backend/src/models"
	"github.com/username/gasfluxo/backend/src/services"
	"github.com/username/gasfluxo/backend/src/utils"
)

type TransactionHandler struct {
	manualLinkService services.ManualLinkService
}

func NewTransactionHandler(manualLinkService services.ManualLinkService) *TransactionHandler {
	return &TransactionHandler{manualLinkService: manualLinkService}
}

// HandleListTransactions returns the unit's imported transactions,
// optionally filtered by account and reconciliation state.
func (h *TransactionHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	unitID, ok := GetUnitIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or unit not found in context", http.StatusUnauthorized)
		return
	}

	accountID := r.URL.Query().Get("accountId")
	var reconciled *bool
	if raw := r.URL.Query().Get("reconciled"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			utils.SendJSONError(w, "invalid 'reconciled' filter, expected true or false", http.StatusBadRequest)
			return
		}
		reconciled = &v
	}

	txs, err := model.ListTransactions(database.DB, unitID, accountID, reconciled)
	if err != nil {
		logger.L.Error("Error querying transactions", "unitID", unitID, "error", err)
		utils.SendJSONError(w, "Error querying transactions", http.StatusInternalServerError)
		return
	}
	if txs == nil {
		txs = []models.BankTransaction{}
	}
	utils.SendJSON(w, txs, http.StatusOK)
}

// LinkRequest define a estrutura do corpo do pedido de ligação manual.
type LinkRequest struct {
	OrderID string `json:"orderId"`
}

// HandleLink ties a transaction to a sales order by human decision.
func (h *TransactionHandler) HandleLink(w http.ResponseWriter, r *http.Request) {
	txID, ok := h.transactionIDFromRequest(w, r)
	if !ok {
		return
	}

	var req LinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == "" {
		utils.SendJSONError(w, "Invalid request body, 'orderId' is required", http.StatusBadRequest)
		return
	}

	if err := h.manualLinkService.Link(txID, req.OrderID); err != nil {
		h.writeLinkError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUnlink returns a transaction to the matching pool.
func (h *TransactionHandler) HandleUnlink(w http.ResponseWriter, r *http.Request) {
	txID, ok := h.transactionIDFromRequest(w, r)
	if !ok {
		return
	}
	if err := h.manualLinkService.Unlink(txID); err != nil {
		h.writeLinkError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAccept marks a transaction reconciled with no order correlation.
func (h *TransactionHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	txID, ok := h.transactionIDFromRequest(w, r)
	if !ok {
		return
	}
	if err := h.manualLinkService.AcceptWithoutLink(txID); err != nil {
		h.writeLinkError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TransactionHandler) transactionIDFromRequest(w http.ResponseWriter, r *http.Request) (int64, bool) {
	if _, ok := GetUnitIDFromContext(r.Context()); !ok {
		utils.SendJSONError(w, "authentication required or unit not found in context", http.StatusUnauthorized)
		return 0, false
	}
	txID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "invalid transaction id", http.StatusBadRequest)
		return 0, false
	}
	return txID, true
}

func (h *TransactionHandler) writeLinkError(w http.ResponseWriter, r *http.Request, err error) {
	ctxLogger := logger.FromContext(r.Context())
	switch {
	case errors.Is(err, model.ErrTransactionNotFound):
		utils.SendJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrAlreadyReconciled), errors.Is(err, services.ErrOrderAlreadyLinked):
		utils.SendJSONError(w, err.Error(), http.StatusConflict)
	default:
		ctxLogger.Error("Manual linkage operation failed", "error", err)
		utils.SendJSONError(w, "Manual linkage operation failed", http.StatusInternalServerError)
	}
}
