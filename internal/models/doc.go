// Package models defines the core domain models for receiptsplit.
//
// # Models
//
//   - Receipt: the purchase being split, with line items and aggregate charges
//   - ReceiptItem: one line item; may be assigned to several people
//   - Person: someone taking part in the split
//   - PersonSplit: calculated share of the receipt for one person (derived)
//
// PersonSplit and AssignedItem are pure functions of a Receipt and a Person set.
// They are recomputed on every change and carry no identity of their own.
//
// # Conventions
//
//  1. Money is float64 at full precision; rounding to cents happens in package rounding.
//  2. Relationships use ID strings, never pointers (ReceiptItem.AssignedTo holds Person IDs).
//  3. JSON keys are camelCase to match the receipt parser's output.
package models
