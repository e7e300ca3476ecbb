// backend/src/services/reconcile_service.go
package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/gasfluxo/backend/src/logger"
	"github.com/username/gasfluxo/backend/src/matching"
	"github.com/username/gasfluxo/backend/src/model"
	"github.com/username/gasfluxo/backend/src/models"
)

const (
	ckReconcileSummary     = "agg_reconcile_summary_unit_%s"
	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type reconciliationServiceImpl struct {
	db           *sql.DB
	engine       *matching.Engine
	lookbackDays int
	summaryCache *cache.Cache
}

// NewReconciliationService wires the matching engine to the store.
// lookbackDays bounds the ledger-movement window read for each run.
func NewReconciliationService(db *sql.DB, engine *matching.Engine, lookbackDays int, summaryCache *cache.Cache) ReconciliationService {
	return &reconciliationServiceImpl{
		db:           db,
		engine:       engine,
		lookbackDays: lookbackDays,
		summaryCache: summaryCache,
	}
}

// RunAutoReconcile reads the unreconciled pool and both candidate pools
// fresh from the store, runs the engine, and applies the proposals as one
// transactional batch. Repeating the call with no intervening data change is
// a no-op: everything matched by the previous run has left the pool.
func (s *reconciliationServiceImpl) RunAutoReconcile(unitID, accountID string) (*models.ReconcileResult, error) {
	start := time.Now()

	pool, err := model.ListUnreconciledTransactions(s.db, unitID, accountID)
	if err != nil {
		return nil, err
	}
	orders, err := model.ListUnlinkedOrders(s.db, unitID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	from := now.AddDate(0, 0, -s.lookbackDays).Format("2006-01-02")
	to := now.Format("2006-01-02")
	movements, err := model.ListLedgerMovements(s.db, unitID, from, to)
	if err != nil {
		return nil, err
	}

	proposals := s.engine.Match(pool, orders, movements)

	matchedOrders, matchedMovements := 0, 0
	for _, p := range proposals {
		if p.TargetType == models.TargetOrder {
			matchedOrders++
		} else {
			matchedMovements++
		}
	}

	applied, err := model.ApplyProposals(s.db, proposals)
	if err != nil {
		// The batch is transactional: nothing from this run was persisted.
		return &models.ReconcileResult{
			Processed:        len(pool),
			MatchedOrders:    matchedOrders,
			MatchedMovements: matchedMovements,
			Unmatched:        len(pool) - len(proposals),
			Message:          "reconciliation aborted, no linkage persisted",
		}, err
	}

	s.InvalidateSummary(unitID)

	logger.L.Info("Automatic reconciliation finished", "unitID", unitID,
		"pool", len(pool), "orders", len(orders), "movements", len(movements),
		"applied", applied, "durationMs", time.Since(start).Milliseconds())

	return &models.ReconcileResult{
		Processed:        len(pool),
		MatchedOrders:    matchedOrders,
		MatchedMovements: matchedMovements,
		Unmatched:        len(pool) - len(proposals),
		Applied:          applied,
	}, nil
}

// Summary returns the per-unit reconciliation overview, cached between
// mutations.
func (s *reconciliationServiceImpl) Summary(unitID string) (*models.ReconcileSummary, error) {
	cacheKey := fmt.Sprintf(ckReconcileSummary, unitID)
	if cached, found := s.summaryCache.Get(cacheKey); found {
		return cached.(*models.ReconcileSummary), nil
	}

	total, reconciled, linked, err := model.CountTransactions(s.db, unitID)
	if err != nil {
		return nil, err
	}

	summary := &models.ReconcileSummary{
		UnitID:      unitID,
		Total:       total,
		Reconciled:  reconciled,
		Pending:     total - reconciled,
		Linked:      linked,
		GeneratedAt: time.Now().Format(time.RFC3339),
	}
	s.summaryCache.Set(cacheKey, summary, DefaultCacheExpiration)
	return summary, nil
}

func (s *reconciliationServiceImpl) InvalidateSummary(unitID string) {
	s.summaryCache.Delete(fmt.Sprintf(ckReconcileSummary, unitID))
}
