package services

import (
	"errors"
	"testing"
	"time"
)

func TestLinkMarksReconciledAndClaimsOrder(t *testing.T) {
	db := newTestDB(t)
	reconciler := newTestReconciler(db)
	svc := NewManualLinkService(db, reconciler)

	today := time.Now().Format("2006-01-02")
	txID := seedTransaction(t, db, "unit-1", today, "Pagamento Cliente", "150.00")
	seedOrder(t, db, "unit-1", "order-1", "999.00", today)

	if err := svc.Link(txID, "order-1"); err != nil {
		t.Fatalf("Link() error: %v", err)
	}

	var reconciled int
	var linkedOrderID string
	err := db.QueryRow(`SELECT reconciled, linked_order_id FROM bank_transactions WHERE id = ?`, txID).
		Scan(&reconciled, &linkedOrderID)
	if err != nil {
		t.Fatalf("failed to read transaction: %v", err)
	}
	if reconciled != 1 {
		t.Error("expected transaction to be reconciled after manual link")
	}
	if linkedOrderID != "order-1" {
		t.Errorf("linked_order_id = %q, want %q", linkedOrderID, "order-1")
	}
}

func TestLinkRejectsReconciledTransaction(t *testing.T) {
	db := newTestDB(t)
	svc := NewManualLinkService(db, newTestReconciler(db))

	today := time.Now().Format("2006-01-02")
	txID := seedTransaction(t, db, "unit-1", today, "Pagamento", "150.00")
	if err := svc.AcceptWithoutLink(txID); err != nil {
		t.Fatalf("AcceptWithoutLink() error: %v", err)
	}

	err := svc.Link(txID, "order-1")
	if !errors.Is(err, ErrAlreadyReconciled) {
		t.Errorf("Link() on reconciled transaction error = %v, want ErrAlreadyReconciled", err)
	}
}

func TestLinkRejectsClaimedOrder(t *testing.T) {
	db := newTestDB(t)
	svc := NewManualLinkService(db, newTestReconciler(db))

	today := time.Now().Format("2006-01-02")
	firstID := seedTransaction(t, db, "unit-1", today, "Pagamento A", "150.00")
	secondID := seedTransaction(t, db, "unit-1", today, "Pagamento B", "150.00")

	if err := svc.Link(firstID, "order-1"); err != nil {
		t.Fatalf("Link() error: %v", err)
	}
	err := svc.Link(secondID, "order-1")
	if !errors.Is(err, ErrOrderAlreadyLinked) {
		t.Errorf("Link() on claimed order error = %v, want ErrOrderAlreadyLinked", err)
	}
}

func TestUnlinkClearsBothFields(t *testing.T) {
	db := newTestDB(t)
	svc := NewManualLinkService(db, newTestReconciler(db))

	today := time.Now().Format("2006-01-02")
	txID := seedTransaction(t, db, "unit-1", today, "Pagamento", "150.00")
	if err := svc.Link(txID, "order-1"); err != nil {
		t.Fatalf("Link() error: %v", err)
	}
	if err := svc.Unlink(txID); err != nil {
		t.Fatalf("Unlink() error: %v", err)
	}

	var reconciled int
	var linkedOrderID *string
	err := db.QueryRow(`SELECT reconciled, linked_order_id FROM bank_transactions WHERE id = ?`, txID).
		Scan(&reconciled, &linkedOrderID)
	if err != nil {
		t.Fatalf("failed to read transaction: %v", err)
	}
	if reconciled != 0 {
		t.Error("expected transaction back to unreconciled after unlink")
	}
	if linkedOrderID != nil {
		t.Errorf("linked_order_id = %q, want NULL", *linkedOrderID)
	}
}

func TestAcceptWithoutLinkLeavesOrderFree(t *testing.T) {
	db := newTestDB(t)
	svc := NewManualLinkService(db, newTestReconciler(db))

	today := time.Now().Format("2006-01-02")
	txID := seedTransaction(t, db, "unit-1", today, "Taxa Bancaria", "-75.50")

	if err := svc.AcceptWithoutLink(txID); err != nil {
		t.Fatalf("AcceptWithoutLink() error: %v", err)
	}

	var reconciled int
	var linkedOrderID *string
	err := db.QueryRow(`SELECT reconciled, linked_order_id FROM bank_transactions WHERE id = ?`, txID).
		Scan(&reconciled, &linkedOrderID)
	if err != nil {
		t.Fatalf("failed to read transaction: %v", err)
	}
	if reconciled != 1 {
		t.Error("expected transaction to be reconciled after accept")
	}
	if linkedOrderID != nil {
		t.Errorf("linked_order_id = %q, want NULL", *linkedOrderID)
	}

	if err := svc.AcceptWithoutLink(txID); !errors.Is(err, ErrAlreadyReconciled) {
		t.Errorf("second AcceptWithoutLink() error = %v, want ErrAlreadyReconciled", err)
	}
}
