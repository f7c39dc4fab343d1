package service_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Astemirdum/biblioteca-service/library/internal/errs"
	"github.com/Astemirdum/biblioteca-service/library/internal/model"
	"github.com/Astemirdum/biblioteca-service/library/internal/repository"
)

// memRepo keeps the catalog in memory. InTx works on a copy of the state
// under one lock and swaps it in on success, so a failed unit leaves
// nothing behind and concurrent units are serialized.
type memRepo struct {
	mu    sync.Mutex
	state memState

	commitErr error
	appendErr error
}

type memState struct {
	users    map[string]model.User
	books    map[string]model.Book
	balances map[string]model.Balance
	records  []model.LoanRecord
}

func (s memState) clone() memState {
	return memState{
		users:    lo.Assign(s.users),
		books:    lo.Assign(s.books),
		balances: lo.Assign(s.balances),
		records:  append([]model.LoanRecord(nil), s.records...),
	}
}

var _ repository.Repository = (*memRepo)(nil)

func newMemRepo() *memRepo {
	return &memRepo{state: memState{
		users:    map[string]model.User{},
		books:    map[string]model.Book{},
		balances: map[string]model.Balance{},
	}}
}

func (r *memRepo) addUser(username string) model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := model.User{ID: uuid.NewString(), Username: username, Name: username, Role: model.RoleReader}
	r.state.users[u.ID] = u
	return u
}

func (r *memRepo) setAvailable(bookID string, available int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.state.balances[bookID]
	b.AvailableCopies = available
	r.state.balances[bookID] = b
}

func (r *memRepo) balance(bookID string) (model.Balance, model.Book) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.balances[bookID], r.state.books[bookID]
}

func (r *memRepo) records() []model.LoanRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.LoanRecord(nil), r.state.records...)
}

func (r *memRepo) CreateBook(_ context.Context, book model.Book) (model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	book.ID = uuid.NewString()
	book.CreatedAt = time.Now().UTC()
	r.state.books[book.ID] = book
	r.state.balances[book.ID] = model.Balance{
		ID:              uuid.NewString(),
		BookID:          book.ID,
		AvailableCopies: book.TotalCopies,
		Capacity:        book.TotalCopies,
		Title:           book.Title,
		Author:          book.Author,
	}
	return book, nil
}

func (r *memRepo) GetBook(_ context.Context, bookID string) (model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.state.books[bookID]
	if !ok {
		return model.Book{}, errs.ErrBookNotFound
	}
	return b, nil
}

func (r *memRepo) ListBooks(_ context.Context, showAll bool, page, size int) (model.ListBooks, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := lo.Filter(lo.Values(r.state.books), func(b model.Book, _ int) bool {
		return showAll || r.state.balances[b.ID].AvailableCopies > 0
	})
	sort.Slice(items, func(i, j int) bool { return items[i].Title < items[j].Title })
	return model.ListBooks{
		Paging: model.Paging{Page: page, PageSize: size, TotalElements: len(items)},
		Items:  items,
	}, nil
}

func (r *memRepo) GetBalance(_ context.Context, bookID string) (model.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.state.balances[bookID]
	if !ok {
		return model.Balance{}, errs.ErrBookNotFound
	}
	return b, nil
}

func (r *memRepo) ListBalances(context.Context) ([]model.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo.Values(r.state.balances), nil
}

func (r *memRepo) CreateUser(_ context.Context, user model.User) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := lo.Find(lo.Values(r.state.users), func(u model.User) bool { return u.Username == user.Username }); taken {
		return model.User{}, errs.ErrAlreadyExists
	}
	user.ID = uuid.NewString()
	r.state.users[user.ID] = user
	return user, nil
}

func (r *memRepo) GetUser(_ context.Context, userRef string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return resolveUser(r.state, userRef)
}

func (r *memRepo) ListUsers(context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo.Values(r.state.users), nil
}

func (r *memRepo) ListLoanRecords(_ context.Context, userID string, kind model.Kind) ([]model.LoanRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo.Filter(r.state.records, func(rec model.LoanRecord, _ int) bool {
		return rec.UserID == userID && (kind == "" || rec.Kind == kind)
	}), nil
}

func (r *memRepo) InTx(_ context.Context, fn func(tx repository.LendingTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	work := r.state.clone()
	if err := fn(&memTx{state: &work, appendErr: r.appendErr}); err != nil {
		return err
	}
	if r.commitErr != nil {
		return fmt.Errorf("commit tx: %w: %w", errs.ErrStorageFailure, r.commitErr)
	}
	r.state = work
	return nil
}

type memTx struct {
	state     *memState
	appendErr error
}

func resolveUser(s memState, userRef string) (model.User, error) {
	userRef = strings.TrimSpace(userRef)
	if u, ok := s.users[userRef]; ok {
		return u, nil
	}
	u, ok := lo.Find(lo.Values(s.users), func(u model.User) bool { return userRef != "" && u.Username == userRef })
	if !ok {
		return model.User{}, errs.ErrUserNotFound
	}
	return u, nil
}

func (tx *memTx) ResolveUser(_ context.Context, userRef string) (model.User, error) {
	return resolveUser(*tx.state, userRef)
}

func (tx *memTx) LockBook(_ context.Context, ref model.BookRef) (model.BookBalance, error) {
	matches := lo.Filter(lo.Values(tx.state.books), func(b model.Book, _ int) bool {
		if ref.ByID() {
			return b.ID == ref.ID
		}
		return strings.EqualFold(strings.TrimSpace(b.Title), strings.TrimSpace(ref.Title)) &&
			strings.EqualFold(strings.TrimSpace(b.Genre), strings.TrimSpace(ref.Genre))
	})
	if len(matches) != 1 {
		return model.BookBalance{}, errs.ErrBookNotFound
	}
	bal := tx.state.balances[matches[0].ID]
	return model.BookBalance{
		Book:            matches[0],
		BalanceID:       bal.ID,
		AvailableCopies: bal.AvailableCopies,
		Capacity:        bal.Capacity,
	}, nil
}

func (tx *memTx) CountRequests(_ context.Context, userID, bookID string) (model.RequestCounts, error) {
	var c model.RequestCounts
	for _, rec := range tx.state.records {
		if rec.UserID != userID || rec.BookID != bookID {
			continue
		}
		if rec.Kind == model.KindBorrow {
			c.Borrowed++
		} else {
			c.Returned++
		}
	}
	return c, nil
}

func (tx *memTx) AdjustCopies(_ context.Context, bookID string, delta int) error {
	bal, ok := tx.state.balances[bookID]
	if !ok {
		return errs.ErrBookNotFound
	}
	book := tx.state.books[bookID]
	bal.AvailableCopies += delta
	book.TotalCopies += delta
	switch {
	case bal.AvailableCopies < 0 || book.TotalCopies < 0:
		return errs.ErrInsufficientBalance
	case bal.AvailableCopies > bal.Capacity:
		return errs.ErrCapacityExceeded
	}
	tx.state.balances[bookID] = bal
	tx.state.books[bookID] = book
	return nil
}

func (tx *memTx) AppendRecord(_ context.Context, rec model.LoanRecord) (model.LoanRecord, error) {
	if tx.appendErr != nil {
		return model.LoanRecord{}, tx.appendErr
	}
	rec.ID = uuid.NewString()
	tx.state.records = append(tx.state.records, rec)
	return rec, nil
}
