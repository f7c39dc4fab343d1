package service

import (
	"context"
	"strings"

	"github.com/Astemirdum/biblioteca-service/library/internal/model"
)

func (s *Service) CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	return s.repo.CreateBook(ctx, model.Book{
		Title:       strings.TrimSpace(req.Title),
		Author:      strings.TrimSpace(req.Author),
		Genre:       strings.TrimSpace(req.Genre),
		Year:        strings.TrimSpace(req.Year),
		TotalCopies: req.TotalCopies,
		Image:       strings.TrimSpace(req.Image),
	})
}

func (s *Service) GetBook(ctx context.Context, bookID string) (model.Book, error) {
	return s.repo.GetBook(ctx, bookID)
}

func (s *Service) ListBooks(ctx context.Context, showAll bool, page, size int) (model.ListBooks, error) {
	return s.repo.ListBooks(ctx, showAll, page, size)
}

func (s *Service) GetBalance(ctx context.Context, bookID string) (model.Balance, error) {
	return s.repo.GetBalance(ctx, bookID)
}

func (s *Service) ListBalances(ctx context.Context) ([]model.Balance, error) {
	return s.repo.ListBalances(ctx)
}
