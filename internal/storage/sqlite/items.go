package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Matheesha-Abiman/EasyInvoice/internal/models"
	"github.com/Matheesha-Abiman/EasyInvoice/internal/storage"
)

// CreateItem persists a new item document under its bill, assigning its ID.
func (s *SQLiteStore) CreateItem(ctx context.Context, item *models.Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO items (id, bill_id, item_name, quantity, price, item_total) VALUES (?, ?, ?, ?, ?, ?)",
		item.ID, item.BillID, item.ItemName, item.Quantity.String(), item.Price.String(), item.ItemTotal.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

// ListItems returns the items of a bill in insertion order (rowid).
func (s *SQLiteStore) ListItems(ctx context.Context, billID string) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, bill_id, item_name, quantity, price, item_total FROM items WHERE bill_id = ? ORDER BY rowid",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var item models.Item
		var qty, price, total string
		if err := rows.Scan(&item.ID, &item.BillID, &item.ItemName, &qty, &price, &total); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		if item.Quantity, err = decimal.NewFromString(qty); err != nil {
			return nil, fmt.Errorf("failed to parse stored quantity: %w", err)
		}
		if item.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("failed to parse stored price: %w", err)
		}
		if item.ItemTotal, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("failed to parse stored item total: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

// DeleteItem removes one item document.
func (s *SQLiteStore) DeleteItem(ctx context.Context, billID, itemID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM items WHERE id = ? AND bill_id = ?",
		itemID, billID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
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
