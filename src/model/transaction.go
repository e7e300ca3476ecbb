package model

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/gasfluxo/backend/src/models"
)

// ErrTransactionNotFound is returned by lookups for an unknown transaction id.
var ErrTransactionNotFound = errors.New("bank transaction not found")

const transactionColumns = `id, date, description, amount, kind, reconciled, linked_order_id, account_id, unit_id, created_at`

func scanTransaction(scanner interface{ Scan(...any) error }) (*models.BankTransaction, error) {
	var tx models.BankTransaction
	var amountStr string
	var linkedOrderID sql.NullString
	if err := scanner.Scan(
		&tx.ID, &tx.Date, &tx.Description, &amountStr, &tx.Kind,
		&tx.Reconciled, &linkedOrderID, &tx.AccountID, &tx.UnitID, &tx.CreatedAt,
	); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount for transaction %d: %w", tx.ID, err)
	}
	tx.Amount = amount
	if linkedOrderID.Valid {
		tx.LinkedOrderID = &linkedOrderID.String
	}
	return &tx, nil
}

// InsertTransactions persists a batch of validated statement drafts as
// unreconciled transactions within the given database transaction. The drafts
// must already be filtered: no empty dates, no unparsed amounts.
func InsertTransactions(dbTx *sql.Tx, entries []models.StatementEntry, accountID, unitID string) (int, error) {
	stmt, err := dbTx.Prepare(`
		INSERT INTO bank_transactions (date, description, amount, kind, reconciled, linked_order_id, account_id, unit_id, created_at)
		VALUES (?, ?, ?, ?, 0, NULL, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	inserted := 0
	for _, entry := range entries {
		if _, err := stmt.Exec(entry.Date, entry.Description, entry.Amount.String(), entry.Kind, accountID, unitID, now); err != nil {
			return inserted, fmt.Errorf("error inserting transaction (date %s): %w", entry.Date, err)
		}
		inserted++
	}
	return inserted, nil
}

// ListUnreconciledTransactions returns the matching pool: unreconciled
// transactions with no order link, oldest first. unitID and accountID scope
// the pool when non-empty. This is always a fresh read; the matching engine
// holds no state between runs.
func ListUnreconciledTransactions(db *sql.DB, unitID, accountID string) ([]models.BankTransaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM bank_transactions
		WHERE reconciled = 0 AND linked_order_id IS NULL`
	var args []any
	if unitID != "" {
		query += ` AND unit_id = ?`
		args = append(args, unitID)
	}
	if accountID != "" {
		query += ` AND account_id = ?`
		args = append(args, accountID)
	}
	query += ` ORDER BY date ASC, id ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying unreconciled transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.BankTransaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}

// ListTransactions returns transactions for a unit, optionally filtered by
// account and reconciliation state (reconciled == nil means both).
func ListTransactions(db *sql.DB, unitID, accountID string, reconciled *bool) ([]models.BankTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM bank_transactions WHERE 1=1`
	var args []any
	if unitID != "" {
		query += ` AND unit_id = ?`
		args = append(args, unitID)
	}
	if accountID != "" {
		query += ` AND account_id = ?`
		args = append(args, accountID)
	}
	if reconciled != nil {
		query += ` AND reconciled = ?`
		args = append(args, *reconciled)
	}
	query += ` ORDER BY date DESC, id DESC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.BankTransaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}

// GetTransactionByID fetches a single transaction.
func GetTransactionByID(db *sql.DB, id int64) (*models.BankTransaction, error) {
	row := db.QueryRow(`SELECT `+transactionColumns+` FROM bank_transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	return tx, err
}

// ApplyProposals persists the engine's proposals in a single database
// transaction: commit-or-rollback on all exit paths, so a run never leaves a
// half-applied batch behind. An order proposal sets the link and reconciles;
// a ledger proposal reconciles without a link.
func ApplyProposals(db *sql.DB, proposals []models.MatchProposal) (applied int, err error) {
	if len(proposals) == 0 {
		return 0, nil
	}

	dbTx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			dbTx.Rollback()
			panic(p)
		} else if err != nil {
			dbTx.Rollback()
		}
	}()

	for _, proposal := range proposals {
		switch proposal.TargetType {
		case models.TargetOrder:
			_, err = dbTx.Exec(`
				UPDATE bank_transactions SET reconciled = 1, linked_order_id = ?
				WHERE id = ? AND reconciled = 0 AND linked_order_id IS NULL`,
				proposal.TargetID, proposal.TransactionID)
		case models.TargetLedgerMovement:
			_, err = dbTx.Exec(`
				UPDATE bank_transactions SET reconciled = 1
				WHERE id = ? AND reconciled = 0 AND linked_order_id IS NULL`,
				proposal.TransactionID)
		default:
			err = fmt.Errorf("unknown proposal target type %q", proposal.TargetType)
		}
		if err != nil {
			return 0, fmt.Errorf("error applying proposal for transaction %d: %w", proposal.TransactionID, err)
		}
		applied++
	}

	if err = dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing reconciliation batch: %w", err)
	}
	return applied, nil
}

// SetLink records a manual transaction/order linkage.
func SetLink(db *sql.DB, transactionID int64, orderID string) error {
	_, err := db.Exec(`UPDATE bank_transactions SET reconciled = 1, linked_order_id = ? WHERE id = ?`,
		orderID, transactionID)
	return err
}

// ClearLink removes any order link and returns the transaction to the
// unreconciled pool. The two fields always change together.
func ClearLink(db *sql.DB, transactionID int64) error {
	_, err := db.Exec(`UPDATE bank_transactions SET reconciled = 0, linked_order_id = NULL WHERE id = ?`,
		transactionID)
	return err
}

// MarkReconciled accepts a transaction as-is, without any order link.
func MarkReconciled(db *sql.DB, transactionID int64) error {
	_, err := db.Exec(`UPDATE bank_transactions SET reconciled = 1 WHERE id = ?`, transactionID)
	return err
}

// IsOrderLinked reports whether any transaction currently holds a link to the
// given order.
func IsOrderLinked(db *sql.DB, orderID string) (bool, error) {
	var exists bool
	err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM bank_transactions WHERE linked_order_id = ?)`, orderID).Scan(&exists)
	return exists, err
}

// CountTransactions returns total/reconciled/linked counts for a unit.
func CountTransactions(db *sql.DB, unitID string) (total, reconciled, linked int, err error) {
	query := `SELECT COUNT(*),
		COALESCE(SUM(reconciled), 0),
		COALESCE(SUM(CASE WHEN linked_order_id IS NOT NULL THEN 1 ELSE 0 END), 0)
		FROM bank_transactions`
	var args []any
	if unitID != "" {
		query += ` WHERE unit_id = ?`
		args = append(args, unitID)
	}
	err = db.QueryRow(query, args...).Scan(&total, &reconciled, &linked)
	return total, reconciled, linked, err
}

// RecordImport appends one row to the import history inside the same
// database transaction as the inserts it describes.
func RecordImport(dbTx *sql.Tx, unitID, accountID, format, filename string, fileSize int64, transactionCount int) error {
	_, err := dbTx.Exec(`
		INSERT INTO import_history (unit_id, account_id, format, filename, file_size, transaction_count)
		VALUES (?, ?, ?, ?, ?, ?)`,
		unitID, accountID, format, filename, fileSize, transactionCount)
	return err
}
