// Package models defines the persisted records of splitledger.
//
// Records are plain values keyed by UUID strings. Relationships use IDs
// rather than pointers (an expense names its group and payer by ID), so the
// storage layer can load them independently and the ledger package can be
// fed straight from a snapshot.
//
// Amounts are money.Cents everywhere; they are stored as INTEGER cents.
package models
