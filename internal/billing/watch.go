package billing

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/Matheesha-Abiman/EasyInvoice/internal/models"
	"github.com/Matheesha-Abiman/EasyInvoice/internal/storage"
)

// Live subscriptions re-deliver the full current result set on every change,
// not a diff. Deliveries use a capacity-one channel with stale-drop
// semantics: a slow consumer sees the newest snapshot, never an older one
// after a newer one, and never blocks a writer. All deliveries for one
// repository are serialized under r.mu, which keeps them causally ordered.

// ListSubscription is a standing watch over one owner's bill list.
type ListSubscription struct {
	// C delivers the full, CreatedAt-descending bill list on every change.
	C <-chan []models.Bill

	ch      chan []models.Bill
	repo    *Repository
	ownerID string
	closed  bool
}

// Close tears down the subscription and stops further deliveries. Every
// subscription must be closed when its consumer goes away.
func (s *ListSubscription) Close() {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	delete(s.repo.listSubs[s.ownerID], s)
	if len(s.repo.listSubs[s.ownerID]) == 0 {
		delete(s.repo.listSubs, s.ownerID)
	}
	close(s.ch)
}

// deliver replaces any undrained snapshot with the newer one. Caller holds r.mu.
func (s *ListSubscription) deliver(bills []models.Bill) {
	if s.closed {
		return
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- bills
}

// BillUpdate is one delivery from WatchBill. When Gone is true the bill does
// not exist (or was deleted while watched); no further updates follow and
// the consumer should navigate away.
type BillUpdate struct {
	Bill *models.Bill
	Gone bool
}

// BillSubscription is a standing watch over a single bill document.
type BillSubscription struct {
	C <-chan BillUpdate

	ch      chan BillUpdate
	repo    *Repository
	billID  string
	ownerID string
	closed  bool
}

// Close tears down the subscription and stops further deliveries.
func (s *BillSubscription) Close() {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()
	s.closeLocked()
}

func (s *BillSubscription) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	delete(s.repo.billSubs[s.billID], s)
	if len(s.repo.billSubs[s.billID]) == 0 {
		delete(s.repo.billSubs, s.billID)
	}
	close(s.ch)
}

// deliver replaces any undrained update with the newer one. Caller holds r.mu.
func (s *BillSubscription) deliver(u BillUpdate) {
	if s.closed {
		return
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- u
	if u.Gone {
		s.closeLocked()
	}
}

// StreamBillsForOwner opens a standing subscription over the user's bills.
// The current list is delivered immediately, then the full set is
// re-delivered on every create, update, or delete touching this owner.
// Results are sorted by CreatedAt descending at delivery time; the
// underlying query guarantees no order.
//
// The initial fetch and the registration share one critical section with
// publish, so a concurrent write either lands in the initial snapshot or
// triggers a redelivery. It can never fall between the two.
func (r *Repository) StreamBillsForOwner(ctx context.Context, ownerID string) (*ListSubscription, error) {
	sub := &ListSubscription{
		ch:      make(chan []models.Bill, 1),
		repo:    r,
		ownerID: ownerID,
	}
	sub.C = sub.ch

	r.mu.Lock()
	defer r.mu.Unlock()

	bills, err := r.fetchSorted(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if r.listSubs[ownerID] == nil {
		r.listSubs[ownerID] = make(map[*ListSubscription]struct{})
	}
	r.listSubs[ownerID][sub] = struct{}{}
	sub.deliver(bills)

	return sub, nil
}

// WatchBill opens a standing subscription on one bill. The current document
// is delivered immediately; a missing, foreign, or subsequently deleted bill
// is delivered as a terminal Gone update. A backend failure on the initial
// read is returned as an error instead: the bill may well still exist, so
// the consumer gets a retry prompt, not a navigate-away signal.
func (r *Repository) WatchBill(ctx context.Context, ownerID, billID string) (*BillSubscription, error) {
	sub := &BillSubscription{
		ch:      make(chan BillUpdate, 1),
		repo:    r,
		billID:  billID,
		ownerID: ownerID,
	}
	sub.C = sub.ch

	r.mu.Lock()
	defer r.mu.Unlock()

	bill, err := r.getOwned(ctx, ownerID, billID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if r.billSubs[billID] == nil {
		r.billSubs[billID] = make(map[*BillSubscription]struct{})
	}
	r.billSubs[billID][sub] = struct{}{}

	if err != nil {
		sub.deliver(BillUpdate{Gone: true})
		return sub, nil
	}
	sub.deliver(BillUpdate{Bill: bill})
	return sub, nil
}

// publish re-delivers current state to every subscription affected by a
// write: the owner's list watchers and the bill's own watchers.
func (r *Repository) publish(ctx context.Context, ownerID, billID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if subs := r.listSubs[ownerID]; len(subs) > 0 {
		bills, err := r.fetchSorted(ctx, ownerID)
		if err != nil {
			slog.Error("snapshot refresh failed", "owner_id", ownerID, "error", err)
		} else {
			for sub := range subs {
				sub.deliver(bills)
			}
		}
	}

	if subs := r.billSubs[billID]; len(subs) > 0 {
		bill, err := r.store.GetBill(ctx, billID)
		var update BillUpdate
		switch {
		case errors.Is(err, storage.ErrNotFound):
			update = BillUpdate{Gone: true}
		case err != nil:
			slog.Error("bill refresh failed", "bill_id", billID, "error", err)
			return
		default:
			update = BillUpdate{Bill: bill}
		}
		for sub := range subs {
			if update.Bill != nil && update.Bill.OwnerID != sub.ownerID {
				sub.deliver(BillUpdate{Gone: true})
				continue
			}
			sub.deliver(update)
		}
	}
}

// fetchSorted loads an owner's bills sorted newest-first. CreatedAt has
// one-second granularity, so ties break on ID to keep redeliveries stable.
func (r *Repository) fetchSorted(ctx context.Context, ownerID string) ([]models.Bill, error) {
	bills, err := r.store.ListBillsByOwner(ctx, ownerID)
	if err != nil {
		slog.Error("list bills failed", "owner_id", ownerID, "error", err)
		return nil, &PersistenceError{Op: "list bills", Err: err}
	}
	sortBills(bills)
	return bills, nil
}

func sortBills(bills []models.Bill) {
	sort.Slice(bills, func(i, j int) bool {
		if bills[i].CreatedAt != bills[j].CreatedAt {
			return bills[i].CreatedAt > bills[j].CreatedAt
		}
		return bills[i].ID > bills[j].ID
	})
}
