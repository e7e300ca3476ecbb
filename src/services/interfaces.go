// backend/src/services/interfaces.go
package services

import (
	"errors"
	"io"

	"github.com/username/gasfluxo/backend/src/models"
)

// Define common service errors
var (
	ErrParsingFailed      = errors.New("statement parsing failed")
	ErrNothingToImport    = errors.New("no importable transactions in statement")
	ErrAlreadyReconciled  = errors.New("transaction is already reconciled")
	ErrOrderAlreadyLinked = errors.New("order is already linked to another transaction")
)

// ImportService ingests bank statement files and persists their transactions
// as unreconciled.
type ImportService interface {
	ProcessImport(fileReader io.Reader, unitID, accountID, format, filename string, fileSize int64) (*models.ImportResult, error)
}

// ReconciliationService runs the automatic matching over the current
// unreconciled pool and serves the per-unit overview.
type ReconciliationService interface {
	RunAutoReconcile(unitID, accountID string) (*models.ReconcileResult, error)
	Summary(unitID string) (*models.ReconcileSummary, error)
	InvalidateSummary(unitID string)
}

// ManualLinkService exposes the human overrides: authoritative link (no
// tolerance check), unconditional unlink, and acceptance without a link.
type ManualLinkService interface {
	Link(transactionID int64, orderID string) error
	Unlink(transactionID int64) error
	AcceptWithoutLink(transactionID int64) error
}
