package service

import (
	"github.com/samber/lo"

	"github.com/Astemirdum/biblioteca-service/library/internal/model"
)

// projectRequestedBooks groups records by book, keeping the order in which
// each book first appears and the most recent title snapshot.
func projectRequestedBooks(records []model.LoanRecord) []model.RequestedBook {
	latest := lo.Associate(records, func(r model.LoanRecord) (string, model.LoanRecord) {
		return r.BookID, r
	})
	order := lo.Uniq(lo.Map(records, func(r model.LoanRecord, _ int) string {
		return r.BookID
	}))
	return lo.Map(order, func(bookID string, _ int) model.RequestedBook {
		return model.RequestedBook{BookID: bookID, Title: latest[bookID].Title}
	})
}

// projectOutstanding folds a user's audit trail into the books the user still
// holds: borrowCount - returnCount > 0 per book.
func projectOutstanding(records []model.LoanRecord) []model.OutstandingBook {
	outstanding := make(map[string]int)
	latest := make(map[string]model.LoanRecord)
	order := make([]string, 0)

	for _, r := range records {
		if _, seen := latest[r.BookID]; !seen {
			order = append(order, r.BookID)
		}
		latest[r.BookID] = r

		switch r.Kind {
		case model.KindBorrow:
			outstanding[r.BookID]++
		case model.KindReturn:
			outstanding[r.BookID]--
		}
	}

	return lo.FilterMap(order, func(bookID string, _ int) (model.OutstandingBook, bool) {
		n := outstanding[bookID]
		if n <= 0 {
			return model.OutstandingBook{}, false
		}
		rec := latest[bookID]
		return model.OutstandingBook{
			BookID:      bookID,
			Title:       rec.Title,
			Genre:       rec.Genre,
			Outstanding: n,
		}, true
	})
}
