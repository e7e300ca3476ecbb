package services

import (
	"database/sql"
	"os"
	"testing"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/username/gasfluxo/backend/src/logger"
	"github.com/username/gasfluxo/backend/src/matching"
	"github.com/username/gasfluxo/backend/src/model"
	"github.com/username/gasfluxo/backend/src/models"
	_ "modernc.org/sqlite"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

const testSchema = `
CREATE TABLE bank_transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    date TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    amount TEXT NOT NULL,
    kind TEXT NOT NULL CHECK (kind IN ('credit', 'debit')),
    reconciled INTEGER NOT NULL DEFAULT 0,
    linked_order_id TEXT,
    account_id TEXT NOT NULL DEFAULT '',
    unit_id TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX idx_bank_transactions_linked_order
    ON bank_transactions (linked_order_id)
    WHERE linked_order_id IS NOT NULL;
CREATE TABLE orders (
    id TEXT PRIMARY KEY,
    client_id TEXT NOT NULL DEFAULT '',
    amount TEXT NOT NULL,
    date TEXT NOT NULL,
    unit_id TEXT NOT NULL DEFAULT ''
);
CREATE TABLE ledger_movements (
    id TEXT PRIMARY KEY,
    amount TEXT NOT NULL,
    date TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    unit_id TEXT NOT NULL DEFAULT ''
);
CREATE TABLE import_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    unit_id TEXT NOT NULL DEFAULT '',
    account_id TEXT NOT NULL DEFAULT '',
    format TEXT NOT NULL,
    filename TEXT NOT NULL,
    file_size INTEGER NOT NULL DEFAULT 0,
    transaction_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestReconciler(db *sql.DB) ReconciliationService {
	engine := matching.NewEngine(matching.DefaultConfig())
	return NewReconciliationService(db, engine, 90, cache.New(cache.NoExpiration, 0))
}

func seedTransaction(t *testing.T, db *sql.DB, unitID, date, description, amount string) int64 {
	t.Helper()
	d := decimal.RequireFromString(amount)
	kind := models.KindCredit
	if d.Sign() < 0 {
		kind = models.KindDebit
	}
	dbTx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	entries := []models.StatementEntry{{Date: date, Description: description, Amount: d, AmountOK: true, Kind: kind}}
	if _, err := model.InsertTransactions(dbTx, entries, "acc-1", unitID); err != nil {
		t.Fatalf("InsertTransactions() error: %v", err)
	}
	if err := dbTx.Commit(); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}

	var id int64
	if err := db.QueryRow(`SELECT id FROM bank_transactions ORDER BY id DESC LIMIT 1`).Scan(&id); err != nil {
		t.Fatalf("failed to read inserted id: %v", err)
	}
	return id
}

func seedOrder(t *testing.T, db *sql.DB, unitID, id, amount, date string) {
	t.Helper()
	o := models.OrderCandidate{ID: id, Amount: decimal.RequireFromString(amount), Date: date, ClientID: "client-1"}
	if err := model.InsertOrder(db, o, unitID); err != nil {
		t.Fatalf("InsertOrder() error: %v", err)
	}
}

func seedMovement(t *testing.T, db *sql.DB, unitID, id, amount, date string) {
	t.Helper()
	m := models.LedgerMovementCandidate{ID: id, Amount: decimal.RequireFromString(amount), Date: date, Category: "operacional"}
	if err := model.InsertLedgerMovement(db, m, unitID); err != nil {
		t.Fatalf("InsertLedgerMovement() error: %v", err)
	}
}
