package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/biblioteca-service/library/internal/model"
)

func (s *Service) ListRequestsByUser(ctx context.Context, userRef, kind string) ([]model.RequestedBook, error) {
	k, err := model.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.GetUser(ctx, userRef)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.ListLoanRecords(ctx, user.ID, k)
	if err != nil {
		return nil, err
	}
	return projectRequestedBooks(records), nil
}

// ListOutstandingForReturn replays the user's whole audit trail on every
// call. The balance counters are never consulted here.
func (s *Service) ListOutstandingForReturn(ctx context.Context, userRef string) ([]model.OutstandingBook, error) {
	user, err := s.repo.GetUser(ctx, userRef)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.ListLoanRecords(ctx, user.ID, "")
	if err != nil {
		return nil, err
	}
	return projectOutstanding(records), nil
}

func (s *Service) UserLoans(ctx context.Context, userRef string) (model.UserLoans, error) {
	user, err := s.repo.GetUser(ctx, userRef)
	if err != nil {
		return model.UserLoans{}, err
	}

	var borrowed, returned, all []model.LoanRecord
	gg, gctx := errgroup.WithContext(ctx)
	gg.Go(func() (err error) {
		borrowed, err = s.repo.ListLoanRecords(gctx, user.ID, model.KindBorrow)
		return err
	})
	gg.Go(func() (err error) {
		returned, err = s.repo.ListLoanRecords(gctx, user.ID, model.KindReturn)
		return err
	})
	gg.Go(func() (err error) {
		all, err = s.repo.ListLoanRecords(gctx, user.ID, "")
		return err
	})
	if err = gg.Wait(); err != nil {
		return model.UserLoans{}, err
	}

	return model.UserLoans{
		User:        user,
		Borrowed:    projectRequestedBooks(borrowed),
		Returned:    projectRequestedBooks(returned),
		Outstanding: projectOutstanding(all),
	}, nil
}
