package ledger

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/library-loans-go/catalog"
)

// RepairReport lists the counters that disagreed with the set of ACTIVE loans.
type RepairReport struct {
	Drifts []catalog.CounterDrift `json:"drifts"`

	// Repaired is the number of counters rewritten. Always 0 for CheckInvariants.
	Repaired int `json:"repaired"`

	// Unresolved counts books with more ACTIVE loans than copies. Their availability is set to 0,
	// which still disagrees with the loan set.
	Unresolved int `json:"unresolved"`
}

// CheckInvariants compares all counters with the loan set without changing anything.
func (l *Ledger) CheckInvariants(ctx context.Context) (RepairReport, error) {
	var report RepairReport

	err := l.observe(ctx, OperationCheckInvariants, true, func(ctx context.Context) error {
		report = RepairReport{}

		return l.store.WithinTx(ctx, func(ctx context.Context, tx catalog.Tx) error {
			drifts, err := detectDrift(ctx, tx)
			if err != nil {
				return err
			}

			report.Drifts = drifts

			return nil
		})
	})

	return report, err
}

// RepairCounters recomputes both counters from the loan set and rewrites the ones that drifted.
// Each drifted row is locked and re-derived before it is written, so loans created or returned
// concurrently are taken into account.
func (l *Ledger) RepairCounters(ctx context.Context) (RepairReport, error) {
	var report RepairReport

	err := l.observe(ctx, OperationRepairCounters, true, func(ctx context.Context) error {
		report = RepairReport{}

		return l.store.WithinTx(ctx, func(ctx context.Context, tx catalog.Tx) error {
			drifts, err := detectDrift(ctx, tx)
			if err != nil {
				return err
			}

			report.Drifts = drifts

			for _, drift := range drifts {
				repaired, unresolved, err := l.repair(ctx, tx, drift)
				if err != nil {
					return err
				}

				if repaired {
					report.Repaired++
				}

				if unresolved {
					report.Unresolved++
				}
			}

			return nil
		})
	})

	if err == nil {
		l.recordValue(ctx, CountersRepairedMetric, float64(report.Repaired), nil)
	}

	return report, err
}

func detectDrift(ctx context.Context, tx catalog.Tx) ([]catalog.CounterDrift, error) {
	books, err := tx.ListBooks(ctx)
	if err != nil {
		return nil, err
	}

	users, err := tx.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	loans, err := tx.ListLoans(ctx)
	if err != nil {
		return nil, err
	}

	return catalog.DetectCounterDrift(books, users, loans), nil
}

func (l *Ledger) repair(ctx context.Context, tx catalog.Tx, drift catalog.CounterDrift) (repaired, unresolved bool, err error) {
	switch drift.Kind {
	case catalog.CounterKindBookAvailable:
		return l.repairBook(ctx, tx, drift)
	case catalog.CounterKindUserActive:
		repaired, err = l.repairUser(ctx, tx, drift)
		return repaired, false, err
	default:
		return false, false, nil
	}
}

func (l *Ledger) repairBook(ctx context.Context, tx catalog.Tx, drift catalog.CounterDrift) (repaired, unresolved bool, err error) {
	book, err := tx.LockBook(ctx, drift.EntityID)
	if errors.Is(err, catalog.ErrNotFound) {
		return false, false, nil
	}

	if err != nil {
		return false, false, err
	}

	activeLoans, err := tx.ListActiveLoansByBook(ctx, book.ID)
	if err != nil {
		return false, false, err
	}

	expected := book.TotalQuantity - len(activeLoans)
	if expected < 0 {
		expected = 0
		unresolved = true
	}

	if expected == book.AvailableQuantity {
		return false, unresolved, nil
	}

	l.logWarn(ctx, LogMsgCounterRepaired,
		LogAttrCounter, string(drift.Kind),
		LogAttrEntityID, book.ID.String(),
		LogAttrRecorded, book.AvailableQuantity,
		LogAttrExpected, expected)

	book.AvailableQuantity = expected

	if err = tx.UpdateBook(ctx, book); err != nil {
		return false, false, err
	}

	return true, unresolved, nil
}

func (l *Ledger) repairUser(ctx context.Context, tx catalog.Tx, drift catalog.CounterDrift) (bool, error) {
	user, err := tx.LockUser(ctx, drift.EntityID)
	if errors.Is(err, catalog.ErrNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	activeLoans, err := tx.ListActiveLoansByUser(ctx, user.ID)
	if err != nil {
		return false, err
	}

	expected := len(activeLoans)
	if expected == user.ActiveLoans {
		return false, nil
	}

	l.logWarn(ctx, LogMsgCounterRepaired,
		LogAttrCounter, string(drift.Kind),
		LogAttrEntityID, user.ID.String(),
		LogAttrRecorded, user.ActiveLoans,
		LogAttrExpected, expected)

	user.ActiveLoans = expected

	if err = tx.UpdateUser(ctx, user); err != nil {
		return false, err
	}

	return true, nil
}
