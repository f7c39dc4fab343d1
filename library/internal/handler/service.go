package handler

import (
	"context"

	"github.com/Astemirdum/biblioteca-service/library/internal/model"
	"github.com/Astemirdum/biblioteca-service/library/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type LibraryService interface {
	SubmitRequest(ctx context.Context, req model.LoanRequest) (model.LoanRecord, error)
	ListRequestsByUser(ctx context.Context, userRef, kind string) ([]model.RequestedBook, error)
	ListOutstandingForReturn(ctx context.Context, userRef string) ([]model.OutstandingBook, error)
	UserLoans(ctx context.Context, userRef string) (model.UserLoans, error)

	CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	GetBook(ctx context.Context, bookID string) (model.Book, error)
	ListBooks(ctx context.Context, showAll bool, page, size int) (model.ListBooks, error)
	GetBalance(ctx context.Context, bookID string) (model.Balance, error)
	ListBalances(ctx context.Context) ([]model.Balance, error)

	CreateUser(ctx context.Context, req model.CreateUserRequest) (model.User, error)
	GetUser(ctx context.Context, userRef string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}

var _ LibraryService = (*service.Service)(nil)
