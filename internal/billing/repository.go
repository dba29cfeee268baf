// Package billing implements the bill repository: ownership-filtered CRUD
// over the document store plus live snapshot subscriptions for bill lists
// and single bills.
package billing

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Matheesha-Abiman/EasyInvoice/internal/models"
	"github.com/Matheesha-Abiman/EasyInvoice/internal/storage"
)

// ItemInput is one finalized line item ready to persist. Totals are computed
// by the invoice builder before they reach the repository.
type ItemInput struct {
	ItemName  string
	Quantity  decimal.Decimal
	Price     decimal.Decimal
	ItemTotal decimal.Decimal
}

// BillInput is a finalized draft ready to persist.
type BillInput struct {
	CustomerName  string
	CustomerPhone string
	Total         decimal.Decimal
	Items         []ItemInput
}

// Repository mediates all bill and item access. Every operation takes the
// calling user's ID and refuses to touch bills owned by anyone else.
type Repository struct {
	store storage.Store

	mu       sync.Mutex
	listSubs map[string]map[*ListSubscription]struct{}
	billSubs map[string]map[*BillSubscription]struct{}
}

// NewRepository creates a Repository over the given store.
func NewRepository(store storage.Store) *Repository {
	return &Repository{
		store:    store,
		listSubs: make(map[string]map[*ListSubscription]struct{}),
		billSubs: make(map[string]map[*BillSubscription]struct{}),
	}
}

// CreateBill writes the bill document first, then each item in order.
//
// The store has no cross-document transaction, so if an item write fails
// after the bill document succeeded, the bill persists with fewer items than
// intended and no rollback occurs. The error is surfaced either way.
func (r *Repository) CreateBill(ctx context.Context, ownerID string, in BillInput) (string, error) {
	bill := &models.Bill{
		OwnerID:       ownerID,
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		TotalAmount:   in.Total,
	}
	if err := r.store.CreateBill(ctx, bill); err != nil {
		slog.Error("create bill failed", "owner_id", ownerID, "error", err)
		return "", &PersistenceError{Op: "create bill", Err: err}
	}

	for _, it := range in.Items {
		item := &models.Item{
			BillID:    bill.ID,
			ItemName:  it.ItemName,
			Quantity:  it.Quantity,
			Price:     it.Price,
			ItemTotal: it.ItemTotal,
		}
		if err := r.store.CreateItem(ctx, item); err != nil {
			slog.Error("create item failed, bill left partially written",
				"bill_id", bill.ID, "item_name", it.ItemName, "error", err)
			r.publish(ctx, ownerID, bill.ID)
			return "", &PersistenceError{Op: "create item", Err: err}
		}
	}

	slog.Info("bill created", "bill_id", bill.ID, "owner_id", ownerID,
		"items", len(in.Items), "total", in.Total.StringFixed(2))
	r.publish(ctx, ownerID, bill.ID)
	return bill.ID, nil
}

// GetBill retrieves one bill owned by the given user.
func (r *Repository) GetBill(ctx context.Context, ownerID, billID string) (*models.Bill, error) {
	return r.getOwned(ctx, ownerID, billID)
}

// ListItems is a one-shot fetch of a bill's items in insertion order. Because
// it is not part of the bill's own update stream, the result may lag or lead
// a concurrently delivered bill snapshot.
func (r *Repository) ListItems(ctx context.Context, ownerID, billID string) ([]models.Item, error) {
	if _, err := r.getOwned(ctx, ownerID, billID); err != nil {
		return nil, err
	}
	items, err := r.store.ListItems(ctx, billID)
	if err != nil {
		slog.Error("list items failed", "bill_id", billID, "error", err)
		return nil, &PersistenceError{Op: "list items", Err: err}
	}
	return items, nil
}

// UpdateBill overwrites a bill: customer fields and the entire item set are
// replaced and the total is taken from the new input. The old items are
// removed before the new set is written; as with CreateBill there is no
// cross-document transaction backing this.
func (r *Repository) UpdateBill(ctx context.Context, ownerID, billID string, in BillInput) error {
	existing, err := r.getOwned(ctx, ownerID, billID)
	if err != nil {
		return err
	}

	existing.CustomerName = in.CustomerName
	existing.CustomerPhone = in.CustomerPhone
	existing.TotalAmount = in.Total
	if err := r.store.UpdateBill(ctx, existing); err != nil {
		slog.Error("update bill failed", "bill_id", billID, "error", err)
		return &PersistenceError{Op: "update bill", Err: err}
	}

	old, err := r.store.ListItems(ctx, billID)
	if err != nil {
		return &PersistenceError{Op: "list items", Err: err}
	}
	for _, it := range old {
		if err := r.store.DeleteItem(ctx, billID, it.ID); err != nil {
			slog.Error("delete item failed during update", "bill_id", billID, "item_id", it.ID, "error", err)
			r.publish(ctx, ownerID, billID)
			return &PersistenceError{Op: "delete item", Err: err}
		}
	}
	for _, it := range in.Items {
		item := &models.Item{
			BillID:    billID,
			ItemName:  it.ItemName,
			Quantity:  it.Quantity,
			Price:     it.Price,
			ItemTotal: it.ItemTotal,
		}
		if err := r.store.CreateItem(ctx, item); err != nil {
			slog.Error("create item failed during update", "bill_id", billID, "error", err)
			r.publish(ctx, ownerID, billID)
			return &PersistenceError{Op: "create item", Err: err}
		}
	}

	slog.Info("bill updated", "bill_id", billID, "owner_id", ownerID, "items", len(in.Items))
	r.publish(ctx, ownerID, billID)
	return nil
}

// DeleteBill fetches the bill's items, issues all item deletes concurrently,
// and deletes the bill document only after every item delete succeeded. If
// any item delete fails the bill document is left intact, with a mixture of
// deleted and remaining items; there is no compensation.
func (r *Repository) DeleteBill(ctx context.Context, ownerID, billID string) error {
	if _, err := r.getOwned(ctx, ownerID, billID); err != nil {
		return err
	}

	items, err := r.store.ListItems(ctx, billID)
	if err != nil {
		return &PersistenceError{Op: "list items", Err: err}
	}

	errs := make([]error, len(items))
	var wg sync.WaitGroup
	for i, it := range items {
		wg.Add(1)
		go func(i int, itemID string) {
			defer wg.Done()
			errs[i] = r.store.DeleteItem(ctx, billID, itemID)
		}(i, it.ID)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		slog.Error("item deletes failed, bill document left intact", "bill_id", billID, "error", err)
		r.publish(ctx, ownerID, billID)
		return &PersistenceError{Op: "delete items", Err: err}
	}

	if err := r.store.DeleteBill(ctx, billID); err != nil {
		slog.Error("delete bill failed", "bill_id", billID, "error", err)
		return &PersistenceError{Op: "delete bill", Err: err}
	}

	slog.Info("bill deleted", "bill_id", billID, "owner_id", ownerID, "items", len(items))
	r.publish(ctx, ownerID, billID)
	return nil
}

// getOwned fetches a bill and verifies ownership. Missing bills and bills
// owned by someone else both come back as ErrNotFound.
func (r *Repository) getOwned(ctx context.Context, ownerID, billID string) (*models.Bill, error) {
	bill, err := r.store.GetBill(ctx, billID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		slog.Error("get bill failed", "bill_id", billID, "error", err)
		return nil, &PersistenceError{Op: "get bill", Err: err}
	}
	if bill.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return bill, nil
}
