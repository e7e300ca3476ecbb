// backend/src/services/import_service.go
package services

import (
	"database/sql"
	"fmt"
	"io"

	"github.com/username/gasfluxo/backend/src/logger"
	"github.com/username/gasfluxo/backend/src/model"
	"github.com/username/gasfluxo/backend/src/models"
	"github.com/username/gasfluxo/backend/src/parsers"
	"github.com/username/gasfluxo/backend/src/security/validation"
)

type importServiceImpl struct {
	db         *sql.DB
	reconciler ReconciliationService
}

// NewImportService wires the statement import flow. The reconciliation
// service is only used to drop its cached summary after a successful import.
func NewImportService(db *sql.DB, reconciler ReconciliationService) ImportService {
	return &importServiceImpl{db: db, reconciler: reconciler}
}

// ProcessImport parses one statement file and persists its valid drafts as
// unreconciled transactions. Counts are always reported: partial success is
// the common case (OFX blocks with missing tags parse into invalid drafts
// that are filtered here, and CSV subtotal rows are dropped by the parser).
func (s *importServiceImpl) ProcessImport(fileReader io.Reader, unitID, accountID, format, filename string, fileSize int64) (*models.ImportResult, error) {
	logger.L.Info("ProcessImport START", "unitID", unitID, "accountID", accountID, "format", format, "filename", filename)

	parser, err := parsers.ForFormat(format, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	drafts, err := parser.Parse(fileReader)
	if err != nil {
		// A structural error aborts the whole import before any persistence.
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	valid := make([]models.StatementEntry, 0, len(drafts))
	for _, draft := range drafts {
		if !draft.Valid() || draft.Amount.IsZero() {
			continue
		}
		draft.Description = validation.SanitizeDescription(draft.Description)
		valid = append(valid, draft)
	}
	skipped := len(drafts) - len(valid)

	if len(valid) == 0 {
		logger.L.Info("Statement contained nothing to import", "unitID", unitID, "filename", filename, "parsed", len(drafts))
		return &models.ImportResult{
			Parsed:  len(drafts),
			Skipped: skipped,
			Message: "nothing to import",
		}, nil
	}

	dbTx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	inserted, err := model.InsertTransactions(dbTx, valid, accountID, unitID)
	if err != nil {
		return nil, err
	}
	if err := model.RecordImport(dbTx, unitID, accountID, format, filename, fileSize, inserted); err != nil {
		return nil, fmt.Errorf("error recording import history: %w", err)
	}
	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing import: %w", err)
	}

	if s.reconciler != nil {
		s.reconciler.InvalidateSummary(unitID)
	}

	logger.L.Info("ProcessImport DONE", "unitID", unitID, "filename", filename,
		"parsed", len(drafts), "imported", inserted, "skipped", skipped)
	return &models.ImportResult{
		Parsed:   len(drafts),
		Imported: inserted,
		Skipped:  skipped,
	}, nil
}
