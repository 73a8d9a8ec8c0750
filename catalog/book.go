package catalog

import (
	"strings"

	"github.com/google/uuid"
)

// Book is a title in the catalog with a fixed number of physical copies.
type Book struct {
	ID                uuid.UUID
	Title             string
	Author            string
	ISBN              string
	TotalQuantity     int
	AvailableQuantity int
}

// NewBook validates the input and returns a Book with all copies available.
func NewBook(title, author, isbn string, totalQuantity int) (Book, error) {
	if err := validateBook(title, author, isbn, totalQuantity); err != nil {
		return Book{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Book{}, err
	}

	return Book{
		ID:                id,
		Title:             strings.TrimSpace(title),
		Author:            strings.TrimSpace(author),
		ISBN:              strings.TrimSpace(isbn),
		TotalQuantity:     totalQuantity,
		AvailableQuantity: totalQuantity,
	}, nil
}

// HasAvailableCopy reports whether at least one copy can be lent.
func (b Book) HasAvailableCopy() bool {
	return b.AvailableQuantity > 0
}

// LentCopies is the number of copies currently out on loan according to the counters.
func (b Book) LentCopies() int {
	return b.TotalQuantity - b.AvailableQuantity
}

// DecrementAvailable takes one copy out of the available stock.
func (b *Book) DecrementAvailable() error {
	if !b.HasAvailableCopy() {
		return ErrInventoryExhausted
	}

	b.AvailableQuantity--

	return nil
}

// RestoreAvailable puts one copy back into the available stock, never exceeding TotalQuantity.
// It reports whether the increment had to be clamped.
func (b *Book) RestoreAvailable() (clamped bool) {
	if b.AvailableQuantity >= b.TotalQuantity {
		b.AvailableQuantity = b.TotalQuantity
		return true
	}

	b.AvailableQuantity++

	return false
}

// Revise replaces the descriptive fields and the total quantity. AvailableQuantity is derived again
// from the number of copies currently lent, which must not exceed the new total.
func (b *Book) Revise(title, author, isbn string, totalQuantity, lentCopies int) error {
	if err := validateBook(title, author, isbn, totalQuantity); err != nil {
		return err
	}

	if totalQuantity < lentCopies {
		return NewFieldError("totalQuantity", ErrTotalBelowLentCopies)
	}

	b.Title = strings.TrimSpace(title)
	b.Author = strings.TrimSpace(author)
	b.ISBN = strings.TrimSpace(isbn)
	b.TotalQuantity = totalQuantity
	b.AvailableQuantity = totalQuantity - lentCopies

	return nil
}

func validateBook(title, author, isbn string, totalQuantity int) error {
	switch {
	case strings.TrimSpace(title) == "":
		return NewFieldError("title", ErrInvalidBook)
	case strings.TrimSpace(author) == "":
		return NewFieldError("author", ErrInvalidBook)
	case strings.TrimSpace(isbn) == "":
		return NewFieldError("isbn", ErrInvalidBook)
	case totalQuantity < 1:
		return NewFieldError("totalQuantity", ErrInvalidBook)
	}

	return nil
}
