// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/Matheesha-Abiman/EasyInvoice/internal/models"
)

// ErrNotFound is returned when a referenced document does not exist.
var ErrNotFound = errors.New("document not found")

// Store defines the document-store boundary for bills and their item
// sub-documents. This abstraction allows swapping storage backends (SQLite,
// PostgreSQL, a hosted document database, an in-memory fake for tests)
// without changing the layers above it.
//
// Every operation is a single-document write or read: the store exposes no
// cross-document transaction, so multi-document flows (bill plus its items)
// are orchestrated — and left non-atomic — by the caller.
type Store interface {
	// CreateBill persists a new bill document. The ID and CreatedAt fields
	// are assigned by the store and populated on the passed bill.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill retrieves a bill by ID. Returns ErrNotFound if it does not exist.
	GetBill(ctx context.Context, billID string) (*models.Bill, error)

	// UpdateBill overwrites the mutable fields of an existing bill
	// (customer name, customer phone, total). Returns ErrNotFound if the
	// bill does not exist.
	UpdateBill(ctx context.Context, bill *models.Bill) error

	// DeleteBill removes the bill document only. Item documents under the
	// bill are not cascaded; callers delete them explicitly.
	DeleteBill(ctx context.Context, billID string) error

	// ListBillsByOwner returns every bill whose OwnerID matches. No ordering
	// is guaranteed.
	ListBillsByOwner(ctx context.Context, ownerID string) ([]models.Bill, error)

	// CreateItem persists a new item document under its bill. The ID field
	// is assigned by the store and populated on the passed item.
	CreateItem(ctx context.Context, item *models.Item) error

	// ListItems returns the items of a bill in insertion order.
	ListItems(ctx context.Context, billID string) ([]models.Item, error)

	// DeleteItem removes one item document. Returns ErrNotFound if it does
	// not exist.
	DeleteItem(ctx context.Context, billID, itemID string) error

	// Close releases any resources held by the store.
	Close() error
}

// UserStore defines the persistence operations the authenticator needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns nil, nil when no account has the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns nil, nil when the user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
