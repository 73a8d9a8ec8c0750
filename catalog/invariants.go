package catalog

import (
	"github.com/google/uuid"
)

// CounterKind tells which entity a CounterDrift refers to.
type CounterKind string

const (
	CounterKindBookAvailable CounterKind = "book_available_quantity"
	CounterKindUserActive    CounterKind = "user_active_loans"
)

// CounterDrift describes a cached counter that disagrees with the set of ACTIVE loans.
type CounterDrift struct {
	Kind     CounterKind `json:"kind"`
	EntityID uuid.UUID   `json:"entityId"`
	Recorded int         `json:"recorded"`
	Expected int         `json:"expected"`
}

// ExpectedCounters derives both counters from the loan set.
// The maps contain an entry for every book and user passed in, including zero counts.
func ExpectedCounters(books []Book, users []User, loans []Loan) (available map[uuid.UUID]int, active map[uuid.UUID]int) {
	available = make(map[uuid.UUID]int, len(books))
	active = make(map[uuid.UUID]int, len(users))

	lent := make(map[uuid.UUID]int, len(books))
	for _, loan := range loans {
		if !loan.IsActive() {
			continue
		}

		lent[loan.BookID]++
		active[loan.UserID]++
	}

	for _, book := range books {
		available[book.ID] = book.TotalQuantity - lent[book.ID]
	}

	for _, user := range users {
		if _, ok := active[user.ID]; !ok {
			active[user.ID] = 0
		}
	}

	return available, active
}

// DetectCounterDrift compares the recorded counters with the ones derived from the loan set.
// Books come first, then users, each in the order given.
func DetectCounterDrift(books []Book, users []User, loans []Loan) []CounterDrift {
	available, active := ExpectedCounters(books, users, loans)

	var drifts []CounterDrift

	for _, book := range books {
		if expected := available[book.ID]; expected != book.AvailableQuantity {
			drifts = append(drifts, CounterDrift{
				Kind:     CounterKindBookAvailable,
				EntityID: book.ID,
				Recorded: book.AvailableQuantity,
				Expected: expected,
			})
		}
	}

	for _, user := range users {
		if expected := active[user.ID]; expected != user.ActiveLoans {
			drifts = append(drifts, CounterDrift{
				Kind:     CounterKindUserActive,
				EntityID: user.ID,
				Recorded: user.ActiveLoans,
				Expected: expected,
			})
		}
	}

	return drifts
}
