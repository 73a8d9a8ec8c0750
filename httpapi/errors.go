package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AntonStoeckl/library-loans-go/catalog"
)

var (
	// ErrMalformedID is returned for path or body identifiers that are not UUIDs.
	ErrMalformedID = fmt.Errorf("malformed id: %w", catalog.ErrInvalidInput)

	// ErrMalformedBody is returned when the request body is not the expected JSON document.
	ErrMalformedBody = fmt.Errorf("malformed request body: %w", catalog.ErrInvalidInput)
)

const (
	logMsgRequestFailed = "http request failed"
	logAttrMethod       = "method"
	logAttrPath         = "path"
	logAttrError        = "error"

	msgInternalError = "internal server error"
)

// publicErrors are matched in order. The first match is the message shown to clients,
// so driver details wrapped behind a sentinel are never exposed.
var publicErrors = []error{
	catalog.ErrBookNotFound, catalog.ErrUserNotFound, catalog.ErrLoanNotFound,
	catalog.ErrInventoryExhausted, catalog.ErrLoanLimitExceeded, catalog.ErrDuplicateActiveLoan,
	catalog.ErrAlreadyReturned, catalog.ErrDuplicateISBN, catalog.ErrDuplicateEmail,
	catalog.ErrDuplicateDocument, catalog.ErrTotalBelowLentCopies,
	catalog.ErrInvalidBook, catalog.ErrInvalidUser, ErrMalformedID, ErrMalformedBody,
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func statusAndBody(err error) (int, ErrorResponse) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, ErrorResponse{Error: http.StatusText(httpErr.Code)}
	}

	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, catalog.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, catalog.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, catalog.ErrInvalidInput):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		return status, ErrorResponse{Error: msgInternalError}
	}

	body := ErrorResponse{Error: err.Error(), Field: catalog.FieldOf(err)}

	for _, known := range publicErrors {
		if errors.Is(err, known) {
			body.Error = known.Error()
			break
		}
	}

	return status, body
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := statusAndBody(err)

	if status >= http.StatusInternalServerError && s.logger != nil {
		s.logger.Error(logMsgRequestFailed,
			logAttrMethod, c.Request().Method, logAttrPath, c.Path(), logAttrError, err.Error())
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}

	if err != nil && s.logger != nil {
		s.logger.Warn(logMsgRequestFailed, logAttrPath, c.Path(), logAttrError, err.Error())
	}
}
