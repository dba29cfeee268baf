// Package invoice implements client-side accumulation of a draft bill before
// persistence: string-typed form rows, a running grand total, and the
// ordered validation that gates commit.
package invoice

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Matheesha-Abiman/EasyInvoice/internal/billing"
)

// ErrLastRow is returned when removing the only remaining row; a draft always
// has at least one item row.
var ErrLastRow = errors.New("bill must have at least one item")

// ErrRowIndex is returned for an out-of-range row index.
var ErrRowIndex = errors.New("no such item row")

// ValidationError describes the first defect found in a draft. Row is the
// 1-based position of the offending item, or 0 for customer-level fields.
// Validation never reaches the backend; these surface inline.
type ValidationError struct {
	Field  string
	Row    int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("item #%d: %s", e.Row, e.Reason)
	}
	return e.Reason
}

// Row is one line item as entered. Quantity and Price stay free-text so
// partial numeric entry ("2.", "") never breaks editing; they are parsed only
// for the running total and at commit.
type Row struct {
	ItemName string
	Quantity string
	Price    string
}

// Draft is an in-progress, unpersisted bill. It exists only between screen
// entry and a successful commit or abandonment.
type Draft struct {
	CustomerName  string
	CustomerPhone string

	rows []Row
}

// NewDraft creates a draft with one blank item row.
func NewDraft() *Draft {
	return &Draft{rows: []Row{{}}}
}

// FromForm builds a draft from a fully entered form. An empty row list
// leaves the single blank row in place, so validation still reports item #1.
func FromForm(customerName, customerPhone string, rows []Row) *Draft {
	d := NewDraft()
	d.CustomerName = customerName
	d.CustomerPhone = customerPhone
	if len(rows) > 0 {
		d.rows = append([]Row(nil), rows...)
	}
	return d
}

// Rows returns a copy of the current item rows.
func (d *Draft) Rows() []Row {
	out := make([]Row, len(d.rows))
	copy(out, d.rows)
	return out
}

// AddRow appends a blank item row.
func (d *Draft) AddRow() {
	d.rows = append(d.rows, Row{})
}

// UpdateRow replaces the row at index i (0-based).
func (d *Draft) UpdateRow(i int, row Row) error {
	if i < 0 || i >= len(d.rows) {
		return ErrRowIndex
	}
	d.rows[i] = row
	return nil
}

// RemoveRow deletes the row at index i. The last remaining row cannot be
// removed.
func (d *Draft) RemoveRow(i int) error {
	if i < 0 || i >= len(d.rows) {
		return ErrRowIndex
	}
	if len(d.rows) == 1 {
		return ErrLastRow
	}
	d.rows = append(d.rows[:i], d.rows[i+1:]...)
	return nil
}

// GrandTotal recomputes the running total: the sum over rows of
// quantity * price, with unparsable values counted as zero. Rejection of bad
// values happens at Finalize, not here.
func (d *Draft) GrandTotal() decimal.Decimal {
	total := decimal.Zero
	for _, row := range d.rows {
		qty := lenientParse(row.Quantity)
		price := lenientParse(row.Price)
		total = total.Add(qty.Mul(price))
	}
	return total
}

// FormatTotal renders the running total with two-decimal fixed formatting.
func (d *Draft) FormatTotal() string {
	return d.GrandTotal().StringFixed(2)
}

// Validate checks the draft in commit order, short-circuiting on the first
// failure: customer name, customer phone, then each row in order (name,
// positive quantity, positive price). Returns nil when the draft is
// committable.
func (d *Draft) Validate() error {
	if strings.TrimSpace(d.CustomerName) == "" {
		return &ValidationError{Field: "customer_name", Reason: "please enter customer name"}
	}
	if strings.TrimSpace(d.CustomerPhone) == "" {
		return &ValidationError{Field: "customer_phone", Reason: "please enter customer phone"}
	}
	for i, row := range d.rows {
		if strings.TrimSpace(row.ItemName) == "" {
			return &ValidationError{Field: "item_name", Row: i + 1, Reason: "please enter item name"}
		}
		qty, err := decimal.NewFromString(strings.TrimSpace(row.Quantity))
		if err != nil || !qty.IsPositive() {
			return &ValidationError{Field: "quantity", Row: i + 1, Reason: "please enter a valid quantity"}
		}
		price, err := decimal.NewFromString(strings.TrimSpace(row.Price))
		if err != nil || !price.IsPositive() {
			return &ValidationError{Field: "price", Row: i + 1, Reason: "please enter a valid price"}
		}
	}
	return nil
}

// Finalize validates the draft and converts it into a persistable input:
// strings trimmed, quantities and prices parsed, each item total computed as
// quantity * price, and the bill total as their sum. Unvalidated strings
// never travel past this boundary.
func (d *Draft) Finalize() (billing.BillInput, error) {
	if err := d.Validate(); err != nil {
		return billing.BillInput{}, err
	}

	in := billing.BillInput{
		CustomerName:  strings.TrimSpace(d.CustomerName),
		CustomerPhone: strings.TrimSpace(d.CustomerPhone),
		Items:         make([]billing.ItemInput, len(d.rows)),
	}

	total := decimal.Zero
	for i, row := range d.rows {
		qty, _ := decimal.NewFromString(strings.TrimSpace(row.Quantity))
		price, _ := decimal.NewFromString(strings.TrimSpace(row.Price))
		itemTotal := qty.Mul(price)
		in.Items[i] = billing.ItemInput{
			ItemName:  strings.TrimSpace(row.ItemName),
			Quantity:  qty,
			Price:     price,
			ItemTotal: itemTotal,
		}
		total = total.Add(itemTotal)
	}
	in.Total = total
	return in, nil
}

// lenientParse mirrors form behavior for display totals: anything that does
// not parse is worth zero.
func lenientParse(s string) decimal.Decimal {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return v
}
