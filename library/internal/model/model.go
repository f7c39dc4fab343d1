package model

import (
	"strings"
	"time"

	"github.com/Astemirdum/biblioteca-service/library/internal/errs"
)

type Kind string

const (
	KindBorrow Kind = "BORROW"
	KindReturn Kind = "RETURN"
)

// ParseKind accepts the canonical names and the legacy Pedir/Regresar spelling.
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(KindBorrow), "PEDIR":
		return KindBorrow, nil
	case string(KindReturn), "REGRESAR":
		return KindReturn, nil
	default:
		return "", errs.ErrInvalidRequestKind
	}
}

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

type ListBooks struct {
	Paging `json:",inline"`
	Items  []Book `json:"items"`
}

type Book struct {
	ID          string    `json:"bookId" db:"id"`
	Title       string    `json:"title" db:"title"`
	Author      string    `json:"author" db:"author"`
	Genre       string    `json:"genre" db:"genre"`
	Year        string    `json:"year" db:"year"`
	TotalCopies int       `json:"totalCopies" db:"total_copies"`
	Image       string    `json:"image,omitempty" db:"image"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

type CreateBookRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Author      string `json:"author" validate:"max=255"`
	Genre       string `json:"genre" validate:"required,max=128"`
	Year        string `json:"year" validate:"max=16"`
	TotalCopies int    `json:"totalCopies" validate:"gte=0"`
	Image       string `json:"image" validate:"omitempty,max=2048"`
}

type Balance struct {
	ID              string `json:"balanceId" db:"id"`
	BookID          string `json:"bookId" db:"book_id"`
	AvailableCopies int    `json:"availableCopies" db:"available_copies"`
	Capacity        int    `json:"capacity" db:"capacity"`
	Title           string `json:"title" db:"title"`
	Author          string `json:"author" db:"author"`
}

// BookBalance is a book together with its balance row.
type BookBalance struct {
	Book            Book
	BalanceID       string
	AvailableCopies int
	Capacity        int
}

// BookRef points at a book either by id or by its title and genre.
type BookRef struct {
	ID    string
	Title string
	Genre string
}

func (r BookRef) ByID() bool {
	return strings.TrimSpace(r.ID) != ""
}

func (r BookRef) Empty() bool {
	return !r.ByID() && (strings.TrimSpace(r.Title) == "" || strings.TrimSpace(r.Genre) == "")
}

type LoanRequest struct {
	Kind        string `json:"kind" validate:"required"`
	UserRef     string `json:"userRef"`
	BookID      string `json:"bookId"`
	Title       string `json:"book"`
	Genre       string `json:"genre"`
	Observation string `json:"observation" validate:"max=1000"`
}

func (r LoanRequest) BookRef() BookRef {
	return BookRef{
		ID:    strings.TrimSpace(r.BookID),
		Title: strings.TrimSpace(r.Title),
		Genre: strings.TrimSpace(r.Genre),
	}
}

// LoanRecord is an immutable audit entry. Username, Title and Genre are
// snapshots taken at write time; UserID and BookID are the stable keys.
type LoanRecord struct {
	ID          string    `json:"requestId" db:"id"`
	Kind        Kind      `json:"kind" db:"kind"`
	CreatedAt   time.Time `json:"date" db:"created_at"`
	UserID      string    `json:"userId" db:"user_id"`
	Username    string    `json:"userName" db:"username"`
	BookID      string    `json:"bookId" db:"book_id"`
	Title       string    `json:"book" db:"title"`
	Genre       string    `json:"genre" db:"genre"`
	Observation string    `json:"observation,omitempty" db:"observation"`
}

type RequestCounts struct {
	Borrowed int `db:"borrowed"`
	Returned int `db:"returned"`
}

func (c RequestCounts) Outstanding() int {
	return c.Borrowed - c.Returned
}

type RequestedBook struct {
	BookID string `json:"bookId"`
	Title  string `json:"title"`
}

type OutstandingBook struct {
	BookID      string `json:"bookId"`
	Title       string `json:"title"`
	Genre       string `json:"genre"`
	Outstanding int    `json:"outstanding"`
}

type UserLoans struct {
	User        User              `json:"user"`
	Borrowed    []RequestedBook   `json:"borrowed"`
	Returned    []RequestedBook   `json:"returned"`
	Outstanding []OutstandingBook `json:"outstanding"`
}

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleReader Role = "READER"
)

type User struct {
	ID           string    `json:"userId" db:"id"`
	Username     string    `json:"userName" db:"username"`
	Name         string    `json:"name" db:"name"`
	LastName     string    `json:"lastName" db:"last_name"`
	Email        string    `json:"email,omitempty" db:"email"`
	DNI          string    `json:"dni,omitempty" db:"dni"`
	Role         Role      `json:"role" db:"role"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

type CreateUserRequest struct {
	Username string `json:"userName" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"required,max=128"`
	LastName string `json:"lastName" validate:"max=128"`
	Email    string `json:"email" validate:"omitempty,email"`
	DNI      string `json:"dni" validate:"max=32"`
	Role     Role   `json:"role" validate:"omitempty,oneof=ADMIN READER"`
}
