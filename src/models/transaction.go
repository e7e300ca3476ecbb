package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction kinds, derived from the sign of the amount at parse time.
const (
	KindCredit = "credit"
	KindDebit  = "debit"
)

// Match target types produced by the matching engine.
const (
	TargetOrder          = "order"
	TargetLedgerMovement = "ledger_movement"
)

// StatementEntry is a single transaction draft as produced by a statement
// parser. It carries no identity or reconciliation state; those are assigned
// when the draft is persisted.
//
// AmountOK is false when the source numeric field could not be parsed. Such
// drafts (and drafts with an empty Date) are emitted by the OFX parser rather
// than dropped; the import service is responsible for filtering them out
// before persistence.
type StatementEntry struct {
	Date        string          `json:"date"` // YYYY-MM-DD, empty when the source had none
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	AmountOK    bool            `json:"-"`
	Kind        string          `json:"kind"` // "credit" or "debit"
}

// Valid reports whether the draft is complete enough to be persisted.
func (e StatementEntry) Valid() bool {
	return e.Date != "" && e.AmountOK
}

// BankTransaction is an imported statement transaction as persisted in the
// store. LinkedOrderID is set only when a match (automatic or manual) against
// a sales order has been recorded; a transaction reconciled against a ledger
// movement, or accepted manually, stays unlinked.
type BankTransaction struct {
	ID            int64           `json:"id"`
	Date          string          `json:"date"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Kind          string          `json:"kind"`
	Reconciled    bool            `json:"reconciled"`
	LinkedOrderID *string         `json:"linked_order_id,omitempty"`
	AccountID     string          `json:"account_id,omitempty"`
	UnitID        string          `json:"unit_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// OrderCandidate is the read-only projection of a sales order still awaiting
// a bank transaction.
type OrderCandidate struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"` // always positive (receivable)
	Date     string          `json:"date"`   // YYYY-MM-DD
	ClientID string          `json:"client_id"`
}

// LedgerMovementCandidate is the read-only projection of an internal ledger
// movement eligible for reconciliation.
type LedgerMovementCandidate struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Date     string          `json:"date"` // YYYY-MM-DD
	Category string          `json:"category"`
}

// MatchProposal is one linkage produced by the matching engine. The engine
// never persists anything itself; the caller applies accepted proposals.
type MatchProposal struct {
	TransactionID int64  `json:"transaction_id"`
	TargetID      string `json:"target_id"`
	TargetType    string `json:"target_type"` // TargetOrder or TargetLedgerMovement
}

// ImportResult reports the outcome of one statement import. Partial success
// is the common case, so counts are always reported instead of a bare flag.
type ImportResult struct {
	Parsed   int    `json:"parsed"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Message  string `json:"message,omitempty"`
}

// ReconcileResult reports the outcome of one automatic reconciliation run.
type ReconcileResult struct {
	Processed        int    `json:"processed"`
	MatchedOrders    int    `json:"matched_orders"`
	MatchedMovements int    `json:"matched_movements"`
	Unmatched        int    `json:"unmatched"`
	Applied          int    `json:"applied"`
	Message          string `json:"message,omitempty"`
}

// ReconcileSummary is the cached per-unit overview served to the UI.
type ReconcileSummary struct {
	UnitID      string `json:"unit_id,omitempty"`
	Total       int    `json:"total"`
	Reconciled  int    `json:"reconciled"`
	Pending     int    `json:"pending"`
	Linked      int    `json:"linked"`
	GeneratedAt string `json:"generated_at"`
}
