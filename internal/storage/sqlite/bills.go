package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Matheesha-Abiman/EasyInvoice/internal/models"
	"github.com/Matheesha-Abiman/EasyInvoice/internal/storage"
)

// Amounts are stored as decimal strings so that values survive the round-trip
// exactly. REAL columns would silently reintroduce float rounding.

// CreateBill persists a new bill document, assigning its ID and CreatedAt.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO bills (id, owner_id, customer_name, customer_phone, total_amount, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		bill.ID, bill.OwnerID, bill.CustomerName, bill.CustomerPhone, bill.TotalAmount.String(), bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}
	return nil
}

// GetBill retrieves a bill by ID.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	bill := &models.Bill{}
	var total string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, owner_id, customer_name, customer_phone, total_amount, created_at FROM bills WHERE id = ?",
		billID,
	).Scan(&bill.ID, &bill.OwnerID, &bill.CustomerName, &bill.CustomerPhone, &total, &bill.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	bill.TotalAmount, err = decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored total: %w", err)
	}
	return bill, nil
}

// UpdateBill overwrites the mutable fields of an existing bill.
func (s *SQLiteStore) UpdateBill(ctx context.Context, bill *models.Bill) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE bills SET customer_name = ?, customer_phone = ?, total_amount = ? WHERE id = ?",
		bill.CustomerName, bill.CustomerPhone, bill.TotalAmount.String(), bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteBill removes the bill document only. Items are not cascaded.
func (s *SQLiteStore) DeleteBill(ctx context.Context, billID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", billID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListBillsByOwner returns every bill owned by the given user.
func (s *SQLiteStore) ListBillsByOwner(ctx context.Context, ownerID string) ([]models.Bill, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, owner_id, customer_name, customer_phone, total_amount, created_at FROM bills WHERE owner_id = ?",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []models.Bill
	for rows.Next() {
		var bill models.Bill
		var total string
		if err := rows.Scan(&bill.ID, &bill.OwnerID, &bill.CustomerName, &bill.CustomerPhone, &total, &bill.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bill.TotalAmount, err = decimal.NewFromString(total)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stored total: %w", err)
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	return bills, nil
}
