// Package seed registers a sample catalog of users and books through the ledger.
package seed

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/library-loans-go/catalog"
	"github.com/AntonStoeckl/library-loans-go/ledger"
)

// Registrar is the part of the ledger used for seeding.
type Registrar interface {
	RegisterUser(ctx context.Context, input ledger.UserInput) (catalog.User, error)
	RegisterBook(ctx context.Context, input ledger.BookInput) (catalog.Book, error)
}

// Report counts what a seed run did. Entries already present (same email, document, or ISBN) are skipped.
type Report struct {
	UsersCreated int `json:"usersCreated"`
	UsersSkipped int `json:"usersSkipped"`
	BooksCreated int `json:"booksCreated"`
	BooksSkipped int `json:"booksSkipped"`
}

var Users = []ledger.UserInput{
	{Name: "María García López", IdentificationDocument: "12345678A", Email: "maria.garcia@biblioteca.mx"},
	{Name: "Carlos Rodríguez Pérez", IdentificationDocument: "23456789B", Email: "carlos.rodriguez@biblioteca.mx"},
	{Name: "Ana Martínez Torres", IdentificationDocument: "34567890C", Email: "ana.martinez@biblioteca.mx"},
	{Name: "Luis Hernández Díaz", IdentificationDocument: "45678901D", Email: "luis.hernandez@biblioteca.mx"},
	{Name: "Sofía González Ruiz", IdentificationDocument: "56789012E", Email: "sofia.gonzalez@biblioteca.mx"},
	{Name: "Diego López Sánchez", IdentificationDocument: "67890123F", Email: "diego.lopez@biblioteca.mx"},
	{Name: "Valentina Castro Jiménez", IdentificationDocument: "78901234G", Email: "valentina.castro@biblioteca.mx"},
	{Name: "Andrés Morales Vargas", IdentificationDocument: "89012345H", Email: "andres.morales@biblioteca.mx"},
}

var Books = []ledger.BookInput{
	{Title: "El Quijote", Author: "Miguel de Cervantes", ISBN: "978-84-206-0000-1", TotalQuantity: 5},
	{Title: "Cien años de soledad", Author: "Gabriel García Márquez", ISBN: "978-84-397-0495-1", TotalQuantity: 4},
	{Title: "1984", Author: "George Orwell", ISBN: "978-0-452-28423-4", TotalQuantity: 3},
	{Title: "El Principito", Author: "Antoine de Saint-Exupéry", ISBN: "978-84-9838-388-3", TotalQuantity: 6},
	{Title: "Fundación", Author: "Isaac Asimov", ISBN: "978-84-450-7640-3", TotalQuantity: 3},
	{Title: "El Señor de los Anillos", Author: "J.R.R. Tolkien", ISBN: "978-84-450-7770-7", TotalQuantity: 4},
	{Title: "Fahrenheit 451", Author: "Ray Bradbury", ISBN: "978-84-450-7642-7", TotalQuantity: 2},
	{Title: "Clean Code", Author: "Robert C. Martin", ISBN: "978-0-13-235088-4", TotalQuantity: 3},
	{Title: "Design Patterns", Author: "Gang of Four", ISBN: "978-0-20-163361-5", TotalQuantity: 2},
	{Title: "The Pragmatic Programmer", Author: "David Thomas & Andrew Hunt", ISBN: "978-0-13-595705-9", TotalQuantity: 3},
	{Title: "Crimen y Castigo", Author: "Fiódor Dostoyevski", ISBN: "978-84-376-0299-2", TotalQuantity: 3},
	{Title: "Sapiens: De animales a dioses", Author: "Yuval Noah Harari", ISBN: "978-84-9992-255-0", TotalQuantity: 4},
}

// Run registers Users and Books. It can be repeated safely.
func Run(ctx context.Context, r Registrar) (Report, error) {
	var report Report

	for _, input := range Users {
		_, err := r.RegisterUser(ctx, input)

		switch {
		case err == nil:
			report.UsersCreated++
		case errors.Is(err, catalog.ErrDuplicateEmail), errors.Is(err, catalog.ErrDuplicateDocument):
			report.UsersSkipped++
		default:
			return report, err
		}
	}

	for _, input := range Books {
		_, err := r.RegisterBook(ctx, input)

		switch {
		case err == nil:
			report.BooksCreated++
		case errors.Is(err, catalog.ErrDuplicateISBN):
			report.BooksSkipped++
		default:
			return report, err
		}
	}

	return report, nil
}
