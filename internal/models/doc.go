// Package models defines the core domain models for EasyInvoice.
//
// # Models
//
//   - Bill: one invoice, owned by exactly one user
//   - Item: a single priced line entry belonging to a bill
//   - User: a registered account (credentials live here, sessions do not)
//
// # Design Principles
//
//  1. **Ownership is data**: every bill carries its OwnerID and every read
//     path filters on it. No bill is ever visible across accounts.
//  2. **Money is decimal**: amounts and quantities use decimal.Decimal so
//     that ItemTotal == Quantity * Price holds exactly, not approximately.
//  3. **Totals are written once**: ItemTotal and TotalAmount are computed at
//     commit time and stored; reads never re-derive them.
//  4. **Avoid circular references**: relationships use ID strings, not
//     pointers.
package models
