package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/catalog"
	"github.com/AntonStoeckl/library-loans-go/ledger"
)

// BookDTO is the JSON shape of a book in responses.
type BookDTO struct {
	ID                uuid.UUID `json:"id"`
	Title             string    `json:"title"`
	Author            string    `json:"author"`
	ISBN              string    `json:"isbn"`
	TotalQuantity     int       `json:"totalQuantity"`
	AvailableQuantity int       `json:"availableQuantity"`
}

// BookRequest is the body of POST /books and PUT /books/:id.
type BookRequest struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	ISBN          string `json:"isbn"`
	TotalQuantity int    `json:"totalQuantity"`
}

// UserDTO is the JSON shape of a user in responses.
type UserDTO struct {
	ID                     uuid.UUID `json:"id"`
	Name                   string    `json:"name"`
	IdentificationDocument string    `json:"identificationDocument"`
	Email                  string    `json:"email"`
	ActiveLoans            int       `json:"activeLoans"`
}

// UserRequest is the body of POST /users and PUT /users/:id.
type UserRequest struct {
	Name                   string `json:"name"`
	IdentificationDocument string `json:"identificationDocument"`
	Email                  string `json:"email"`
}

// LoanDTO carries the borrower's name and the book title next to the identifiers.
// Both are empty when the referenced entity could not be read.
type LoanDTO struct {
	ID         uuid.UUID          `json:"id"`
	LoanDate   time.Time          `json:"loanDate"`
	ReturnDate *time.Time         `json:"returnDate"`
	Status     catalog.LoanStatus `json:"status"`
	UserID     uuid.UUID          `json:"userId"`
	BookID     uuid.UUID          `json:"bookId"`
	UserName   string             `json:"userName"`
	BookTitle  string             `json:"bookTitle"`
}

// LoanRequest is the body of POST /loans.
type LoanRequest struct {
	UserID string `json:"userId"`
	BookID string `json:"bookId"`
}

func toBookDTO(b catalog.Book) BookDTO {
	return BookDTO{
		ID:                b.ID,
		Title:             b.Title,
		Author:            b.Author,
		ISBN:              b.ISBN,
		TotalQuantity:     b.TotalQuantity,
		AvailableQuantity: b.AvailableQuantity,
	}
}

func toUserDTO(u catalog.User) UserDTO {
	return UserDTO{
		ID:                     u.ID,
		Name:                   u.Name,
		IdentificationDocument: u.IdentificationDocument,
		Email:                  u.Email,
		ActiveLoans:            u.ActiveLoans,
	}
}

func toLoanDTO(l catalog.Loan, userName, bookTitle string) LoanDTO {
	return LoanDTO{
		ID:         l.ID,
		LoanDate:   l.LoanDate,
		ReturnDate: l.ReturnDate,
		Status:     l.Status,
		UserID:     l.UserID,
		BookID:     l.BookID,
		UserName:   userName,
		BookTitle:  bookTitle,
	}
}

func (r BookRequest) toInput() ledger.BookInput {
	return ledger.BookInput{Title: r.Title, Author: r.Author, ISBN: r.ISBN, TotalQuantity: r.TotalQuantity}
}

func (r UserRequest) toInput() ledger.UserInput {
	return ledger.UserInput{Name: r.Name, IdentificationDocument: r.IdentificationDocument, Email: r.Email}
}
