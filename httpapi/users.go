package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) listUsers(c echo.Context) error {
	users, err := s.ledger.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}

	dtos := make([]UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, toUserDTO(u))
	}

	return c.JSON(http.StatusOK, dtos)
}

func (s *Server) getUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	user, err := s.ledger.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toUserDTO(user))
}

func (s *Server) registerUser(c echo.Context) error {
	var req UserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := s.ledger.RegisterUser(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toUserDTO(user))
}

func (s *Server) reviseUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req UserRequest
	if err = bind(c, &req); err != nil {
		return err
	}

	user, err := s.ledger.ReviseUser(c.Request().Context(), id, req.toInput())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toUserDTO(user))
}

func (s *Server) deleteUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err = s.ledger.DeleteUser(c.Request().Context(), id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
