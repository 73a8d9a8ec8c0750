package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/AntonStoeckl/library-loans-go/catalog"
	"github.com/AntonStoeckl/library-loans-go/ledger"
)

// Ledger is the set of ledger operations served over HTTP.
type Ledger interface {
	RegisterBook(ctx context.Context, input ledger.BookInput) (catalog.Book, error)
	ReviseBook(ctx context.Context, id uuid.UUID, input ledger.BookInput) (catalog.Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error
	GetBook(ctx context.Context, id uuid.UUID) (catalog.Book, error)
	ListBooks(ctx context.Context) ([]catalog.Book, error)

	RegisterUser(ctx context.Context, input ledger.UserInput) (catalog.User, error)
	ReviseUser(ctx context.Context, id uuid.UUID, input ledger.UserInput) (catalog.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	GetUser(ctx context.Context, id uuid.UUID) (catalog.User, error)
	ListUsers(ctx context.Context) ([]catalog.User, error)

	CreateLoan(ctx context.Context, userID, bookID uuid.UUID) (catalog.Loan, error)
	ReturnLoan(ctx context.Context, loanID uuid.UUID) (catalog.Loan, error)
	ListAllLoans(ctx context.Context) ([]catalog.Loan, error)
	ListActiveLoansByUser(ctx context.Context, userID uuid.UUID) ([]catalog.Loan, error)
}

var (
	// ErrNilLedger is returned when New is called without a ledger.
	ErrNilLedger = errors.New("ledger must not be nil")

	// ErrNilLogger is returned when WithLogger is called with nil.
	ErrNilLogger = errors.New("logger must not be nil")
)

// Option defines a functional option for configuring a Server.
type Option func(*Server) error

// WithLogger sets the logger used for request failures.
func WithLogger(logger catalog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			return ErrNilLogger
		}

		s.logger = logger

		return nil
	}
}

// WithCORSOrigins sets the allowed CORS origins. Without any, local development origins are allowed.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) error {
		s.corsOrigins = origins
		return nil
	}
}

// Server serves the REST API.
type Server struct {
	echo        *echo.Echo
	ledger      Ledger
	logger      catalog.Logger
	corsOrigins []string
}

// New creates a Server with all routes registered.
func New(l Ledger, options ...Option) (*Server, error) {
	if l == nil {
		return nil, ErrNilLedger
	}

	s := &Server{ledger: l}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}
	e.HTTPErrorHandler = s.handleError

	e.Use(echo.WrapMiddleware(newCORS(s.corsOrigins).Handler))
	e.Use(securityHeaders)

	books := e.Group("/api/books")
	books.GET("", s.listBooks)
	books.GET("/:id", s.getBook)
	books.POST("", s.registerBook)
	books.PUT("/:id", s.reviseBook)
	books.DELETE("/:id", s.deleteBook)

	users := e.Group("/api/users")
	users.GET("", s.listUsers)
	users.GET("/:id", s.getUser)
	users.POST("", s.registerUser)
	users.PUT("/:id", s.reviseUser)
	users.DELETE("/:id", s.deleteUser)

	loans := e.Group("/api/loans")
	loans.GET("", s.listAllLoans)
	loans.GET("/user/:userId/active", s.listActiveLoansByUser)
	loans.POST("", s.createLoan)
	loans.PUT("/:id/return", s.returnLoan)

	s.echo = e

	return s, nil
}

// Handler returns the http.Handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called. It returns http.ErrServerClosed after a shutdown.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops accepting requests and waits for in-flight requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, catalog.NewFieldError(name, ErrMalformedID)
	}

	return id, nil
}

func bind(c echo.Context, target any) error {
	if err := c.Bind(target); err != nil {
		return ErrMalformedBody
	}

	return nil
}
