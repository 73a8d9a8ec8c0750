package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) listBooks(c echo.Context) error {
	books, err := s.ledger.ListBooks(c.Request().Context())
	if err != nil {
		return err
	}

	dtos := make([]BookDTO, 0, len(books))
	for _, b := range books {
		dtos = append(dtos, toBookDTO(b))
	}

	return c.JSON(http.StatusOK, dtos)
}

func (s *Server) getBook(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	book, err := s.ledger.GetBook(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toBookDTO(book))
}

func (s *Server) registerBook(c echo.Context) error {
	var req BookRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	book, err := s.ledger.RegisterBook(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toBookDTO(book))
}

func (s *Server) reviseBook(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req BookRequest
	if err = bind(c, &req); err != nil {
		return err
	}

	book, err := s.ledger.ReviseBook(c.Request().Context(), id, req.toInput())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toBookDTO(book))
}

func (s *Server) deleteBook(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err = s.ledger.DeleteBook(c.Request().Context(), id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
