package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Matheesha-Abiman/EasyInvoice/internal/models"
	"github.com/Matheesha-Abiman/EasyInvoice/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBills(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateBill assigns ID and CreatedAt", func(t *testing.T) {
		bill := &models.Bill{
			OwnerID:       "owner-1",
			CustomerName:  "Jane",
			CustomerPhone: "555-0100",
			TotalAmount:   decimal.RequireFromString("7.50"),
		}
		if err := store.CreateBill(ctx, bill); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
		if bill.ID == "" {
			t.Error("Expected bill ID to be generated")
		}
		if bill.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("GetBill round-trips the exact total", func(t *testing.T) {
		bill := &models.Bill{
			OwnerID:       "owner-1",
			CustomerName:  "Jane",
			CustomerPhone: "555-0100",
			TotalAmount:   decimal.RequireFromString("0.30"),
		}
		if err := store.CreateBill(ctx, bill); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}

		got, err := store.GetBill(ctx, bill.ID)
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}
		if got.CustomerName != "Jane" || got.CustomerPhone != "555-0100" {
			t.Errorf("customer fields mismatch: %+v", got)
		}
		if !got.TotalAmount.Equal(bill.TotalAmount) {
			t.Errorf("TotalAmount = %s, want %s exactly", got.TotalAmount, bill.TotalAmount)
		}
	})

	t.Run("GetBill returns ErrNotFound for missing bill", func(t *testing.T) {
		_, err := store.GetBill(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetBill = %v, want ErrNotFound", err)
		}
	})

	t.Run("UpdateBill overwrites mutable fields", func(t *testing.T) {
		bill := &models.Bill{
			OwnerID:       "owner-1",
			CustomerName:  "Jane",
			CustomerPhone: "555-0100",
			TotalAmount:   decimal.RequireFromString("7.50"),
		}
		if err := store.CreateBill(ctx, bill); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}

		bill.CustomerName = "Janet"
		bill.TotalAmount = decimal.RequireFromString("9.00")
		if err := store.UpdateBill(ctx, bill); err != nil {
			t.Fatalf("UpdateBill failed: %v", err)
		}

		got, err := store.GetBill(ctx, bill.ID)
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}
		if got.CustomerName != "Janet" || !got.TotalAmount.Equal(bill.TotalAmount) {
			t.Errorf("update not applied: %+v", got)
		}
	})

	t.Run("UpdateBill returns ErrNotFound for missing bill", func(t *testing.T) {
		err := store.UpdateBill(ctx, &models.Bill{ID: "nonexistent-id"})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("UpdateBill = %v, want ErrNotFound", err)
		}
	})

	t.Run("ListBillsByOwner filters by owner", func(t *testing.T) {
		mine := &models.Bill{OwnerID: "owner-list", CustomerName: "A", CustomerPhone: "1"}
		theirs := &models.Bill{OwnerID: "someone-else", CustomerName: "B", CustomerPhone: "2"}
		if err := store.CreateBill(ctx, mine); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
		if err := store.CreateBill(ctx, theirs); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}

		bills, err := store.ListBillsByOwner(ctx, "owner-list")
		if err != nil {
			t.Fatalf("ListBillsByOwner failed: %v", err)
		}
		if len(bills) != 1 || bills[0].ID != mine.ID {
			t.Errorf("ListBillsByOwner = %+v, want only the owner's bill", bills)
		}
	})

	t.Run("DeleteBill removes the document only", func(t *testing.T) {
		bill := &models.Bill{OwnerID: "owner-del", CustomerName: "C", CustomerPhone: "3"}
		if err := store.CreateBill(ctx, bill); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
		item := &models.Item{
			BillID:   bill.ID,
			ItemName: "Widget",
			Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(2), ItemTotal: decimal.NewFromInt(2),
		}
		if err := store.CreateItem(ctx, item); err != nil {
			t.Fatalf("CreateItem failed: %v", err)
		}

		if err := store.DeleteBill(ctx, bill.ID); err != nil {
			t.Fatalf("DeleteBill failed: %v", err)
		}
		if _, err := store.GetBill(ctx, bill.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetBill after delete = %v, want ErrNotFound", err)
		}

		// Sub-documents are not cascaded; the item survives.
		items, err := store.ListItems(ctx, bill.ID)
		if err != nil {
			t.Fatalf("ListItems failed: %v", err)
		}
		if len(items) != 1 {
			t.Errorf("items after bill delete = %d, want 1 (no cascade)", len(items))
		}
	})
}

func TestItems(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	bill := &models.Bill{OwnerID: "owner-1", CustomerName: "Jane", CustomerPhone: "555-0100"}
	if err := store.CreateBill(ctx, bill); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}

	t.Run("ListItems preserves insertion order and exact values", func(t *testing.T) {
		names := []string{"Widget", "Gadget", "Gizmo"}
		for _, name := range names {
			item := &models.Item{
				BillID:    bill.ID,
				ItemName:  name,
				Quantity:  decimal.RequireFromString("3"),
				Price:     decimal.RequireFromString("2.50"),
				ItemTotal: decimal.RequireFromString("7.50"),
			}
			if err := store.CreateItem(ctx, item); err != nil {
				t.Fatalf("CreateItem failed: %v", err)
			}
		}

		items, err := store.ListItems(ctx, bill.ID)
		if err != nil {
			t.Fatalf("ListItems failed: %v", err)
		}
		if len(items) != len(names) {
			t.Fatalf("len(items) = %d, want %d", len(items), len(names))
		}
		for i, item := range items {
			if item.ItemName != names[i] {
				t.Errorf("items[%d].ItemName = %q, want %q", i, item.ItemName, names[i])
			}
			if !item.ItemTotal.Equal(decimal.RequireFromString("7.50")) {
				t.Errorf("items[%d].ItemTotal = %s, want 7.50 exactly", i, item.ItemTotal)
			}
		}
	})

	t.Run("DeleteItem removes one document", func(t *testing.T) {
		items, err := store.ListItems(ctx, bill.ID)
		if err != nil {
			t.Fatalf("ListItems failed: %v", err)
		}
		before := len(items)

		if err := store.DeleteItem(ctx, bill.ID, items[0].ID); err != nil {
			t.Fatalf("DeleteItem failed: %v", err)
		}

		items, err = store.ListItems(ctx, bill.ID)
		if err != nil {
			t.Fatalf("ListItems failed: %v", err)
		}
		if len(items) != before-1 {
			t.Errorf("len(items) = %d, want %d", len(items), before-1)
		}
	})

	t.Run("DeleteItem returns ErrNotFound for missing item", func(t *testing.T) {
		err := store.DeleteItem(ctx, bill.ID, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("DeleteItem = %v, want ErrNotFound", err)
		}
	})
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("a@b.com", "hashed")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	t.Run("GetUserByEmail", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "a@b.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got == nil || got.ID != user.ID {
			t.Errorf("GetUserByEmail = %+v, want user %s", got, user.ID)
		}
	})

	t.Run("GetUserByEmail returns nil for unknown email", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "nobody@b.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got != nil {
			t.Errorf("GetUserByEmail = %+v, want nil", got)
		}
	})

	t.Run("GetUserByID", func(t *testing.T) {
		got, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if got == nil || got.Email != "a@b.com" {
			t.Errorf("GetUserByID = %+v, want user with email a@b.com", got)
		}
	})

	t.Run("duplicate email rejected by schema", func(t *testing.T) {
		dup := models.NewUser("a@b.com", "other-hash")
		if err := store.CreateUser(ctx, dup); err == nil {
			t.Error("CreateUser accepted a duplicate email")
		}
	})
}
