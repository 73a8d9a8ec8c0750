package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/AntonStoeckl/library-loans-go/catalog"
)

func (s *Server) listAllLoans(c echo.Context) error {
	ctx := c.Request().Context()

	loans, err := s.ledger.ListAllLoans(ctx)
	if err != nil {
		return err
	}

	users, err := s.ledger.ListUsers(ctx)
	if err != nil {
		return err
	}

	userNames := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		userNames[u.ID] = u.Name
	}

	bookTitles, err := s.bookTitles(ctx)
	if err != nil {
		return err
	}

	dtos := make([]LoanDTO, 0, len(loans))
	for _, l := range loans {
		dtos = append(dtos, toLoanDTO(l, userNames[l.UserID], bookTitles[l.BookID]))
	}

	return c.JSON(http.StatusOK, dtos)
}

func (s *Server) listActiveLoansByUser(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}

	loans, err := s.ledger.ListActiveLoansByUser(ctx, userID)
	if err != nil {
		return err
	}

	dtos := make([]LoanDTO, 0, len(loans))
	if len(loans) == 0 {
		return c.JSON(http.StatusOK, dtos)
	}

	user, err := s.ledger.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	bookTitles, err := s.bookTitles(ctx)
	if err != nil {
		return err
	}

	for _, l := range loans {
		dtos = append(dtos, toLoanDTO(l, user.Name, bookTitles[l.BookID]))
	}

	return c.JSON(http.StatusOK, dtos)
}

func (s *Server) createLoan(c echo.Context) error {
	ctx := c.Request().Context()

	var req LoanRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return catalog.NewFieldError("userId", ErrMalformedID)
	}

	bookID, err := uuid.Parse(req.BookID)
	if err != nil {
		return catalog.NewFieldError("bookId", ErrMalformedID)
	}

	loan, err := s.ledger.CreateLoan(ctx, userID, bookID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, s.enrich(ctx, loan))
}

func (s *Server) returnLoan(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	loan, err := s.ledger.ReturnLoan(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, s.enrich(ctx, loan))
}

// enrich adds the borrower's name and the book title. Lookup failures leave them empty.
func (s *Server) enrich(ctx context.Context, loan catalog.Loan) LoanDTO {
	var userName, bookTitle string

	if user, err := s.ledger.GetUser(ctx, loan.UserID); err == nil {
		userName = user.Name
	}

	if book, err := s.ledger.GetBook(ctx, loan.BookID); err == nil {
		bookTitle = book.Title
	}

	return toLoanDTO(loan, userName, bookTitle)
}

func (s *Server) bookTitles(ctx context.Context) (map[uuid.UUID]string, error) {
	books, err := s.ledger.ListBooks(ctx)
	if err != nil {
		return nil, err
	}

	titles := make(map[uuid.UUID]string, len(books))
	for _, b := range books {
		titles[b.ID] = b.Title
	}

	return titles, nil
}
