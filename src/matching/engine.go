// backend/src/matching/engine.go
package matching

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/gasfluxo/backend/src/logger"
	"github.com/username/gasfluxo/backend/src/models"
)

// Config carries the tolerance windows for the two matching phases.
// Percentages are fractions of the candidate's amount (0.01 == 1%); both
// bounds are inclusive.
type Config struct {
	OrderTolerancePct   float64
	OrderToleranceDays  int
	LedgerTolerancePct  float64
	LedgerToleranceDays int
}

// DefaultConfig returns the observed business tolerances: 1% / 3 days for
// sales orders, 2% / 2 days for internal ledger movements.
func DefaultConfig() Config {
	return Config{
		OrderTolerancePct:   0.01,
		OrderToleranceDays:  3,
		LedgerTolerancePct:  0.02,
		LedgerToleranceDays: 2,
	}
}

// Engine links unreconciled bank transactions to outstanding sales orders or
// internal ledger movements. The algorithm is greedy first-fit and
// deterministic for a fixed input ordering: within a run each candidate is
// claimed at most once, and each transaction produces at most one proposal.
// Inputs are never mutated; persisting accepted proposals is the caller's
// job, which keeps the engine pure and repeat runs idempotent (already
// reconciled transactions simply never reach it again).
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Match runs the two sequential phases over the supplied pools, in the order
// transactions were supplied.
//
// Phase A scans the order candidates for the first one within tolerance and
// claims it. Phase B runs only for transactions left unmatched by Phase A,
// against the ledger movements; a ledger match reconciles the transaction
// without an order link. Transactions matching nothing are left exactly as
// found — that is the steady state for items awaiting manual action, not an
// error.
func (e *Engine) Match(
	txs []models.BankTransaction,
	orders []models.OrderCandidate,
	movements []models.LedgerMovementCandidate,
) []models.MatchProposal {
	var proposals []models.MatchProposal

	claimedOrders := make(map[string]bool)
	claimedMovements := make(map[string]bool)
	matchedInPhaseA := make(map[int64]bool)

	// Phase A — sales orders
	for _, tx := range txs {
		txDate, ok := parseISODate(tx.Date)
		if !ok {
			continue
		}
		for _, order := range orders {
			if claimedOrders[order.ID] {
				continue
			}
			if !withinTolerance(tx.Amount, order.Amount, e.cfg.OrderTolerancePct) {
				continue
			}
			if !withinDays(txDate, order.Date, e.cfg.OrderToleranceDays) {
				continue
			}
			claimedOrders[order.ID] = true
			matchedInPhaseA[tx.ID] = true
			proposals = append(proposals, models.MatchProposal{
				TransactionID: tx.ID,
				TargetID:      order.ID,
				TargetType:    models.TargetOrder,
			})
			break
		}
	}

	// Phase B — internal ledger movements
	for _, tx := range txs {
		if matchedInPhaseA[tx.ID] {
			continue
		}
		txDate, ok := parseISODate(tx.Date)
		if !ok {
			continue
		}
		for _, movement := range movements {
			if claimedMovements[movement.ID] {
				continue
			}
			if !withinTolerance(tx.Amount, movement.Amount, e.cfg.LedgerTolerancePct) {
				continue
			}
			if !withinDays(txDate, movement.Date, e.cfg.LedgerToleranceDays) {
				continue
			}
			claimedMovements[movement.ID] = true
			proposals = append(proposals, models.MatchProposal{
				TransactionID: tx.ID,
				TargetID:      movement.ID,
				TargetType:    models.TargetLedgerMovement,
			})
			break
		}
	}

	logger.L.Debug("Matching run finished",
		"transactions", len(txs), "proposals", len(proposals),
		"ordersClaimed", len(claimedOrders), "movementsClaimed", len(claimedMovements))
	return proposals
}

// withinTolerance reports whether | |txAmount| - |candAmount| | is at most
// pct of the candidate's amount, boundary inclusive.
func withinTolerance(txAmount, candAmount decimal.Decimal, pct float64) bool {
	candAbs := candAmount.Abs()
	diff := txAmount.Abs().Sub(candAbs).Abs()
	limit := candAbs.Mul(decimal.NewFromFloat(pct))
	return diff.Cmp(limit) <= 0
}

// withinDays reports whether the two dates are at most maxDays apart,
// boundary inclusive. A candidate with an unparseable date matches nothing.
func withinDays(txDate time.Time, candDate string, maxDays int) bool {
	cd, ok := parseISODate(candDate)
	if !ok {
		return false
	}
	diff := txDate.Sub(cd)
	if diff < 0 {
		diff = -diff
	}
	return int(diff.Hours()/24) <= maxDays
}

func parseISODate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
