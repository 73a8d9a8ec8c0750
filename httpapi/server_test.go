package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/catalog/memoryengine"
	"github.com/AntonStoeckl/library-loans-go/httpapi"
	"github.com/AntonStoeckl/library-loans-go/ledger"
)

type apiFixture struct {
	t       *testing.T
	handler http.Handler
}

func newAPI(t *testing.T, options ...httpapi.Option) apiFixture {
	t.Helper()

	store, err := memoryengine.NewStore()
	require.NoError(t, err)

	l, err := ledger.New(store)
	require.NoError(t, err)

	server, err := httpapi.New(l, options...)
	require.NoError(t, err)

	return apiFixture{t: t, handler: server.Handler()}
}

func (f apiFixture) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	f.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(f.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())

	return v
}

func (f apiFixture) givenBook(isbn string, total int) httpapi.BookDTO {
	f.t.Helper()

	rec := f.do(http.MethodPost, "/api/books", httpapi.BookRequest{Title: "Title " + isbn, Author: "Author", ISBN: isbn, TotalQuantity: total})
	require.Equal(f.t, http.StatusCreated, rec.Code, rec.Body.String())

	return decode[httpapi.BookDTO](f.t, rec)
}

func (f apiFixture) givenUser(email string) httpapi.UserDTO {
	f.t.Helper()

	rec := f.do(http.MethodPost, "/api/users", httpapi.UserRequest{Name: "Name " + email, IdentificationDocument: "doc-" + email, Email: email})
	require.Equal(f.t, http.StatusCreated, rec.Code, rec.Body.String())

	return decode[httpapi.UserDTO](f.t, rec)
}

func (f apiFixture) givenLoan(userID, bookID uuid.UUID) httpapi.LoanDTO {
	f.t.Helper()

	rec := f.do(http.MethodPost, "/api/loans", map[string]string{"userId": userID.String(), "bookId": bookID.String()})
	require.Equal(f.t, http.StatusCreated, rec.Code, rec.Body.String())

	return decode[httpapi.LoanDTO](f.t, rec)
}

func Test_New_ShouldFail_WithNilDependencies(t *testing.T) {
	_, err := httpapi.New(nil)
	assert.ErrorIs(t, err, httpapi.ErrNilLedger)

	store, err := memoryengine.NewStore()
	require.NoError(t, err)
	l, err := ledger.New(store)
	require.NoError(t, err)

	_, err = httpapi.New(l, httpapi.WithLogger(nil))
	assert.ErrorIs(t, err, httpapi.ErrNilLogger)
}

func Test_Books_CRUD(t *testing.T) {
	// arrange
	api := newAPI(t)
	book := api.givenBook("978-1", 2)

	// act
	getRec := api.do(http.MethodGet, "/api/books/"+book.ID.String(), nil)
	reviseRec := api.do(http.MethodPut, "/api/books/"+book.ID.String(),
		httpapi.BookRequest{Title: "New", Author: "Author", ISBN: "978-1", TotalQuantity: 5})
	listRec := api.do(http.MethodGet, "/api/books", nil)
	deleteRec := api.do(http.MethodDelete, "/api/books/"+book.ID.String(), nil)
	missingRec := api.do(http.MethodGet, "/api/books/"+book.ID.String(), nil)

	// assert
	assert.Equal(t, http.StatusOK, getRec.Code)
	assert.Equal(t, book, decode[httpapi.BookDTO](t, getRec))

	require.Equal(t, http.StatusOK, reviseRec.Code)
	revised := decode[httpapi.BookDTO](t, reviseRec)
	assert.Equal(t, "New", revised.Title)
	assert.Equal(t, 5, revised.AvailableQuantity)

	assert.Len(t, decode[[]httpapi.BookDTO](t, listRec), 1)
	assert.Equal(t, http.StatusNoContent, deleteRec.Code)
	assert.Equal(t, http.StatusNotFound, missingRec.Code)
}

func Test_Users_CRUD(t *testing.T) {
	// arrange
	api := newAPI(t)
	user := api.givenUser("ada@example.com")

	// act
	reviseRec := api.do(http.MethodPut, "/api/users/"+user.ID.String(),
		httpapi.UserRequest{Name: "Ada L.", IdentificationDocument: "doc-1", Email: "ADA@example.com"})
	listRec := api.do(http.MethodGet, "/api/users", nil)
	deleteRec := api.do(http.MethodDelete, "/api/users/"+user.ID.String(), nil)
	deleteAgainRec := api.do(http.MethodDelete, "/api/users/"+user.ID.String(), nil)

	// assert
	require.Equal(t, http.StatusOK, reviseRec.Code, reviseRec.Body.String())
	revised := decode[httpapi.UserDTO](t, reviseRec)
	assert.Equal(t, "Ada L.", revised.Name)
	assert.Equal(t, "ada@example.com", revised.Email)
	assert.Len(t, decode[[]httpapi.UserDTO](t, listRec), 1)
	assert.Equal(t, http.StatusNoContent, deleteRec.Code)
	assert.Equal(t, http.StatusNotFound, deleteAgainRec.Code)
}

func Test_Loans_Lifecycle(t *testing.T) {
	// arrange
	api := newAPI(t)
	book := api.givenBook("978-2", 1)
	user := api.givenUser("grace@example.com")

	// act
	loan := api.givenLoan(user.ID, book.ID)
	activeRec := api.do(http.MethodGet, "/api/loans/user/"+user.ID.String()+"/active", nil)
	returnRec := api.do(http.MethodPut, "/api/loans/"+loan.ID.String()+"/return", nil)
	returnAgainRec := api.do(http.MethodPut, "/api/loans/"+loan.ID.String()+"/return", nil)
	allRec := api.do(http.MethodGet, "/api/loans", nil)

	// assert
	assert.Equal(t, "ACTIVE", string(loan.Status))
	assert.Equal(t, user.Name, loan.UserName)
	assert.Equal(t, book.Title, loan.BookTitle)
	assert.Nil(t, loan.ReturnDate)

	active := decode[[]httpapi.LoanDTO](t, activeRec)
	require.Len(t, active, 1)
	assert.Equal(t, loan.ID, active[0].ID)

	require.Equal(t, http.StatusOK, returnRec.Code)
	returned := decode[httpapi.LoanDTO](t, returnRec)
	assert.Equal(t, "RETURNED", string(returned.Status))
	assert.NotNil(t, returned.ReturnDate)

	assert.Equal(t, http.StatusConflict, returnAgainRec.Code)
	assert.Equal(t, httpapi.ErrorResponse{Error: "loan was already returned: conflict"}, decode[httpapi.ErrorResponse](t, returnAgainRec))

	all := decode[[]httpapi.LoanDTO](t, allRec)
	require.Len(t, all, 1)
	assert.Equal(t, user.Name, all[0].UserName)
	assert.Equal(t, book.Title, all[0].BookTitle)
}

func Test_ActiveLoans_UnknownUserIsEmpty(t *testing.T) {
	api := newAPI(t)

	rec := api.do(http.MethodGet, "/api/loans/user/"+uuid.NewString()+"/active", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func Test_ErrorMapping(t *testing.T) {
	api := newAPI(t)
	book := api.givenBook("978-3", 1)
	user := api.givenUser("linus@example.com")
	other := api.givenUser("ken@example.com")
	api.givenLoan(user.ID, book.ID)

	testCases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		field  string
	}{
		{
			name: "unknown user", method: http.MethodPost, path: "/api/loans",
			body:   map[string]string{"userId": uuid.NewString(), "bookId": book.ID.String()},
			status: http.StatusNotFound,
		},
		{
			name: "inventory exhausted", method: http.MethodPost, path: "/api/loans",
			body:   map[string]string{"userId": other.ID.String(), "bookId": book.ID.String()},
			status: http.StatusConflict,
		},
		{
			name: "duplicate active loan", method: http.MethodPost, path: "/api/loans",
			body:   map[string]string{"userId": user.ID.String(), "bookId": book.ID.String()},
			status: http.StatusConflict,
		},
		{
			name: "duplicate isbn", method: http.MethodPost, path: "/api/books",
			body:   httpapi.BookRequest{Title: "T", Author: "A", ISBN: "978-3", TotalQuantity: 1},
			status: http.StatusConflict, field: "isbn",
		},
		{
			name: "duplicate email", method: http.MethodPost, path: "/api/users",
			body:   httpapi.UserRequest{Name: "N", IdentificationDocument: "fresh", Email: "KEN@example.com"},
			status: http.StatusConflict, field: "email",
		},
		{
			name: "total quantity below one", method: http.MethodPut, path: "/api/books/" + book.ID.String(),
			body:   httpapi.BookRequest{Title: "T", Author: "A", ISBN: "978-3", TotalQuantity: 0},
			status: http.StatusBadRequest, field: "totalQuantity",
		},
		{
			name: "missing title", method: http.MethodPost, path: "/api/books",
			body:   httpapi.BookRequest{Author: "A", ISBN: "978-4", TotalQuantity: 1},
			status: http.StatusBadRequest, field: "title",
		},
		{
			name: "malformed path id", method: http.MethodGet, path: "/api/users/42",
			status: http.StatusBadRequest, field: "id",
		},
		{
			name: "malformed body id", method: http.MethodPost, path: "/api/loans",
			body:   map[string]string{"userId": "x", "bookId": book.ID.String()},
			status: http.StatusBadRequest, field: "userId",
		},
		{
			name: "malformed json", method: http.MethodPost, path: "/api/books",
			body:   `{"title":`,
			status: http.StatusBadRequest,
		},
		{
			name: "unknown route", method: http.MethodGet, path: "/api/nothing",
			status: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			rec := api.do(tc.method, tc.path, tc.body)

			// assert
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			body := decode[httpapi.ErrorResponse](t, rec)
			assert.NotEmpty(t, body.Error)
			assert.Equal(t, tc.field, body.Field)
		})
	}
}

func Test_SecurityHeaders(t *testing.T) {
	api := newAPI(t)

	rec := api.do(http.MethodGet, "/api/books", nil)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "default-src 'none'", rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "no-store, no-cache, must-revalidate", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Header().Get("Strict-Transport-Security"), "max-age=31536000")
}

func Test_CORS(t *testing.T) {
	t.Run("localhost allowed without configured origins", func(t *testing.T) {
		api := newAPI(t)

		rec := api.do(http.MethodGet, "/api/books", nil, "Origin", "http://localhost:5173")

		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("configured origins are normalized", func(t *testing.T) {
		api := newAPI(t, httpapi.WithCORSOrigins([]string{"https://Library.example/"}))

		allowedRec := api.do(http.MethodGet, "/api/books", nil, "Origin", "https://library.example")
		deniedRec := api.do(http.MethodGet, "/api/books", nil, "Origin", "http://localhost:5173")

		assert.Equal(t, "https://library.example", allowedRec.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, deniedRec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		api := newAPI(t)

		rec := api.do(http.MethodOptions, "/api/loans", nil,
			"Origin", "http://127.0.0.1:3000",
			"Access-Control-Request-Method", http.MethodPost,
			"Access-Control-Request-Headers", "Content-Type",
		)

		assert.Less(t, rec.Code, 300)
		assert.Equal(t, "http://127.0.0.1:3000", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
		assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
	})
}
