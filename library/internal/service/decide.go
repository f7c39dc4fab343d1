package service

import (
	"github.com/Astemirdum/biblioteca-service/library/internal/errs"
	"github.com/Astemirdum/biblioteca-service/library/internal/model"
)

// lendingState is what a loan request is decided on: the locked balance row
// of the book and the requesting user's borrow/return history for it.
type lendingState struct {
	available int
	total     int
	capacity  int
	counts    model.RequestCounts
}

func newLendingState(book model.BookBalance, counts model.RequestCounts) lendingState {
	return lendingState{
		available: book.AvailableCopies,
		total:     book.Book.TotalCopies,
		capacity:  book.Capacity,
		counts:    counts,
	}
}

// decide returns nil when the request may be applied, or the business rule
// it breaks. It has no side effects.
//
//	BORROW: available > 0 and total > 0, else ErrInsufficientBalance
//	RETURN: borrowed > 0, else ErrNothingToReturn
//	        borrowed > returned, else ErrOverReturn
//	        available+1 <= capacity, else ErrCapacityExceeded
func decide(kind model.Kind, s lendingState) error {
	switch kind {
	case model.KindBorrow:
		if s.available <= 0 || s.total <= 0 {
			return errs.ErrInsufficientBalance
		}
		return nil
	case model.KindReturn:
		if s.counts.Borrowed == 0 {
			return errs.ErrNothingToReturn
		}
		if s.counts.Outstanding() <= 0 {
			return errs.ErrOverReturn
		}
		if s.available+1 > s.capacity {
			return errs.ErrCapacityExceeded
		}
		return nil
	default:
		return errs.ErrInvalidRequestKind
	}
}

func copiesDelta(kind model.Kind) int {
	if kind == model.KindBorrow {
		return -1
	}
	return 1
}
