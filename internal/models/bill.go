package models

import "github.com/shopspring/decimal"

// Bill represents one invoice: a customer, a total, and a set of line items
// stored as child documents.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	// Assigned by the store on creation.
	ID string

	// OwnerID is the ID of the user who created the bill. Immutable; every
	// read and write is filtered by this field.
	OwnerID string

	// CustomerName is the billed customer's display name.
	CustomerName string

	// CustomerPhone is the billed customer's phone number.
	CustomerPhone string

	// TotalAmount is the grand total of the bill. Equals the sum of the
	// items' ItemTotal at creation time; it is not recomputed on read.
	TotalAmount decimal.Decimal

	// CreatedAt is the Unix timestamp assigned by the store on creation.
	CreatedAt int64
}

// Item represents a single line entry on a bill. Items belong to exactly one
// bill and are deleted only alongside it.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// BillID is the parent bill's ID.
	BillID string

	// ItemName is the line description (e.g., "Widget").
	ItemName string

	// Quantity is the number of units. Always positive.
	Quantity decimal.Decimal

	// Price is the per-unit price. Always positive.
	Price decimal.Decimal

	// ItemTotal is Quantity * Price, computed once when the item is written.
	ItemTotal decimal.Decimal
}
