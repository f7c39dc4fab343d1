package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Astemirdum/biblioteca-service/library/internal/errs"
	"github.com/Astemirdum/biblioteca-service/library/internal/model"
	"github.com/Astemirdum/biblioteca-service/library/internal/repository"
)

// SubmitRequest validates a borrow or return and applies it. The balance
// change, the catalog quantity change and the audit record are written in
// one transaction; a rejected request leaves no trace.
func (s *Service) SubmitRequest(ctx context.Context, req model.LoanRequest) (model.LoanRecord, error) {
	kind, err := model.ParseKind(req.Kind)
	if err != nil {
		return model.LoanRecord{}, err
	}
	ref := req.BookRef()
	if ref.Empty() {
		return model.LoanRecord{}, errs.ErrBookNotFound
	}

	var record model.LoanRecord
	err = s.repo.InTx(ctx, func(tx repository.LendingTx) error {
		user, err := tx.ResolveUser(ctx, req.UserRef)
		if err != nil {
			return err
		}
		book, err := tx.LockBook(ctx, ref)
		if err != nil {
			return err
		}
		counts, err := tx.CountRequests(ctx, user.ID, book.Book.ID)
		if err != nil {
			return err
		}
		if err = decide(kind, newLendingState(book, counts)); err != nil {
			return err
		}
		if err = tx.AdjustCopies(ctx, book.Book.ID, copiesDelta(kind)); err != nil {
			return err
		}
		record, err = tx.AppendRecord(ctx, model.LoanRecord{
			Kind:        kind,
			CreatedAt:   s.now().UTC(),
			UserID:      user.ID,
			Username:    user.Username,
			BookID:      book.Book.ID,
			Title:       book.Book.Title,
			Genre:       book.Book.Genre,
			Observation: strings.TrimSpace(req.Observation),
		})
		return err
	})
	if err != nil {
		fields := []zap.Field{zap.String("kind", string(kind)), zap.String("user", req.UserRef), zap.Error(err)}
		if errs.IsConflict(err) || errs.IsNotFound(err) {
			s.log.Debug("loan request rejected", fields...)
		} else {
			s.log.Error("SubmitRequest", fields...)
		}
		return model.LoanRecord{}, err
	}

	if err := s.publisher.PublishLoanRecorded(ctx, record); err != nil {
		s.log.Warn("PublishLoanRecorded", zap.String("requestId", record.ID), zap.Error(err))
	}
	return record, nil
}
