package model

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/username/gasfluxo/backend/src/models"
)

// ListUnlinkedOrders returns sales orders not yet linked to any bank
// transaction, optionally scoped to a business unit, in insertion order. The
// matching engine is first-fit, so this ordering is part of the observable
// behavior.
func ListUnlinkedOrders(db *sql.DB, unitID string) ([]models.OrderCandidate, error) {
	query := `
		SELECT o.id, o.amount, o.date, o.client_id
		FROM orders o
		WHERE NOT EXISTS (
			SELECT 1 FROM bank_transactions t WHERE t.linked_order_id = o.id
		)`
	var args []any
	if unitID != "" {
		query += ` AND o.unit_id = ?`
		args = append(args, unitID)
	}
	query += ` ORDER BY o.date ASC, o.id ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying unlinked orders: %w", err)
	}
	defer rows.Close()

	var orders []models.OrderCandidate
	for rows.Next() {
		var o models.OrderCandidate
		var amountStr string
		if err := rows.Scan(&o.ID, &amountStr, &o.Date, &o.ClientID); err != nil {
			return nil, err
		}
		if o.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("corrupt amount for order %s: %w", o.ID, err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ListLedgerMovements returns internal ledger movements within the inclusive
// [from, to] date range, optionally scoped to a business unit.
func ListLedgerMovements(db *sql.DB, unitID, from, to string) ([]models.LedgerMovementCandidate, error) {
	query := `SELECT id, amount, date, category FROM ledger_movements WHERE date >= ? AND date <= ?`
	args := []any{from, to}
	if unitID != "" {
		query += ` AND unit_id = ?`
		args = append(args, unitID)
	}
	query += ` ORDER BY date ASC, id ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying ledger movements: %w", err)
	}
	defer rows.Close()

	var movements []models.LedgerMovementCandidate
	for rows.Next() {
		var m models.LedgerMovementCandidate
		var amountStr string
		if err := rows.Scan(&m.ID, &amountStr, &m.Date, &m.Category); err != nil {
			return nil, err
		}
		if m.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("corrupt amount for ledger movement %s: %w", m.ID, err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// InsertOrder registers an order candidate. Orders normally arrive through
// the sales workflow of the surrounding suite; this writer exists for that
// boundary and for tests.
func InsertOrder(db *sql.DB, o models.OrderCandidate, unitID string) error {
	_, err := db.Exec(`INSERT INTO orders (id, client_id, amount, date, unit_id) VALUES (?, ?, ?, ?, ?)`,
		o.ID, o.ClientID, o.Amount.String(), o.Date, unitID)
	return err
}

// InsertLedgerMovement registers a ledger movement candidate.
func InsertLedgerMovement(db *sql.DB, m models.LedgerMovementCandidate, unitID string) error {
	_, err := db.Exec(`INSERT INTO ledger_movements (id, amount, date, category, unit_id) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.Amount.String(), m.Date, m.Category, unitID)
	return err
}
