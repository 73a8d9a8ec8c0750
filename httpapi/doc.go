// Package httpapi exposes the loan ledger as a JSON REST API on echo.
//
// Resources live under /api/books, /api/users, and /api/loans. Errors are rendered as
// {"error": "...", "field": "..."} with 404 for missing entities, 409 for business rule
// conflicts, 400 for invalid input, and an opaque 500 for everything else.
package httpapi
