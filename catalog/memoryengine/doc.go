// Package memoryengine provides an in-process implementation of catalog.Store.
//
// Units of work are serialized by a single mutex. Each unit of work operates on a staged copy
// of the committed state which replaces the committed state only when the unit of work succeeds,
// so a failing unit of work leaves no trace.
//
// The engine enforces the same constraints as the PostgreSQL schema: unique ISBN, email, and
// identification document, loans referencing existing books and users, at most one ACTIVE loan
// per user and book, and cascading deletes of loans.
package memoryengine
