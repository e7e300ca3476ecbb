// backend/src/services/manual_link_service.go
package services

import (
	"database/sql"
	"fmt"

	"github.com/username/gasfluxo/backend/src/logger"
	"github.com/username/gasfluxo/backend/src/model"
)

type manualLinkServiceImpl struct {
	db         *sql.DB
	reconciler ReconciliationService
}

func NewManualLinkService(db *sql.DB, reconciler ReconciliationService) ManualLinkService {
	return &manualLinkServiceImpl{db: db, reconciler: reconciler}
}

// Link records a human decision tying a transaction to a sales order. It is
// authoritative: no tolerance check is applied. The transaction must still be
// unreconciled and the order must not be claimed by another transaction.
func (s *manualLinkServiceImpl) Link(transactionID int64, orderID string) error {
	tx, err := model.GetTransactionByID(s.db, transactionID)
	if err != nil {
		return err
	}
	if tx.Reconciled {
		return fmt.Errorf("%w: transaction %d", ErrAlreadyReconciled, transactionID)
	}

	linked, err := model.IsOrderLinked(s.db, orderID)
	if err != nil {
		return err
	}
	if linked {
		return fmt.Errorf("%w: order %s", ErrOrderAlreadyLinked, orderID)
	}

	if err := model.SetLink(s.db, transactionID, orderID); err != nil {
		return fmt.Errorf("error linking transaction %d to order %s: %w", transactionID, orderID, err)
	}

	logger.L.Info("Manual link recorded", "transactionID", transactionID, "orderID", orderID)
	s.reconciler.InvalidateSummary(tx.UnitID)
	return nil
}

// Unlink clears the order link and the reconciled flag together,
// unconditionally returning the transaction to the matching pool.
func (s *manualLinkServiceImpl) Unlink(transactionID int64) error {
	tx, err := model.GetTransactionByID(s.db, transactionID)
	if err != nil {
		return err
	}

	if err := model.ClearLink(s.db, transactionID); err != nil {
		return fmt.Errorf("error unlinking transaction %d: %w", transactionID, err)
	}

	logger.L.Info("Transaction returned to matching pool", "transactionID", transactionID)
	s.reconciler.InvalidateSummary(tx.UnitID)
	return nil
}

// AcceptWithoutLink marks a transaction reconciled with no order link, for
// transactions a human confirmed need no correlation.
func (s *manualLinkServiceImpl) AcceptWithoutLink(transactionID int64) error {
	tx, err := model.GetTransactionByID(s.db, transactionID)
	if err != nil {
		return err
	}
	if tx.Reconciled {
		return fmt.Errorf("%w: transaction %d", ErrAlreadyReconciled, transactionID)
	}

	if err := model.MarkReconciled(s.db, transactionID); err != nil {
		return fmt.Errorf("error accepting transaction %d: %w", transactionID, err)
	}

	logger.L.Info("Transaction accepted without link", "transactionID", transactionID)
	s.reconciler.InvalidateSummary(tx.UnitID)
	return nil
}
