package repository

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/biblioteca-service/library/internal/errs"
	"github.com/Astemirdum/biblioteca-service/library/internal/model"
)

var loanRecordColumns = []string{
	"id",
	"kind",
	"created_at",
	"coalesce(user_id::text, '') as user_id",
	"username",
	"book_id",
	"title",
	"genre",
	"coalesce(observation, '') as observation",
}

var lockColumns = append(append([]string{}, bookColumns...), "bb.id", "bb.available_copies", "bb.capacity")

type lendingTx struct {
	q   querier
	log *zap.Logger
}

func (t *lendingTx) ResolveUser(ctx context.Context, userRef string) (model.User, error) {
	return getUser(ctx, t.q, userRef)
}

// LockBook resolves the book and takes a row lock on it and its balance.
// The lock is held until the surrounding transaction ends, so every request
// for the same book is serialized behind it.
func (t *lendingTx) LockBook(ctx context.Context, ref model.BookRef) (model.BookBalance, error) {
	if ref.Empty() {
		return model.BookBalance{}, errs.ErrBookNotFound
	}
	q := qb.Select(lockColumns...).
		From(booksTableName + " b").
		Join(fmt.Sprintf("%s bb on bb.book_id = b.id", bookBalancesTableName))
	if ref.ByID() {
		if _, err := uuid.Parse(ref.ID); err != nil {
			return model.BookBalance{}, errs.ErrBookNotFound
		}
		q = q.Where(sq.Eq{"b.id": ref.ID})
	} else {
		q = q.Where(sq.Expr("lower(trim(b.title)) = lower(trim(?))", ref.Title)).
			Where(sq.Expr("lower(trim(b.genre)) = lower(trim(?))", ref.Genre))
	}
	query, args, err := q.Limit(2).Suffix("for update").ToSql()
	if err != nil {
		return model.BookBalance{}, err
	}

	rows, err := t.q.Query(ctx, query, args...)
	if err != nil {
		return model.BookBalance{}, errors.Wrap(err, "lock book")
	}
	defer rows.Close()

	var found []model.BookBalance
	for rows.Next() {
		var bb model.BookBalance
		if err := rows.Scan(
			&bb.Book.ID, &bb.Book.Title, &bb.Book.Author, &bb.Book.Genre, &bb.Book.Year,
			&bb.Book.TotalCopies, &bb.Book.Image, &bb.Book.CreatedAt,
			&bb.BalanceID, &bb.AvailableCopies, &bb.Capacity,
		); err != nil {
			return model.BookBalance{}, errors.Wrap(err, "scan book")
		}
		found = append(found, bb)
	}
	if err := rows.Err(); err != nil {
		return model.BookBalance{}, errors.Wrap(err, "lock book rows")
	}

	switch len(found) {
	case 0:
		return model.BookBalance{}, errs.ErrBookNotFound
	case 1:
		return found[0], nil
	default:
		t.log.Warn("ambiguous book reference", zap.String("title", ref.Title), zap.String("genre", ref.Genre))
		return model.BookBalance{}, fmt.Errorf("ambiguous title and genre: %w", errs.ErrBookNotFound)
	}
}

func (t *lendingTx) CountRequests(ctx context.Context, userID, bookID string) (model.RequestCounts, error) {
	q := fmt.Sprintf(`
select coalesce(count(*) filter (where kind = 'BORROW'), 0) as borrowed,
       coalesce(count(*) filter (where kind = 'RETURN'), 0) as returned
from %s
where user_id = @user_id and book_id = @book_id`, loanRequestsTableName)
	args := pgx.NamedArgs{
		"user_id": userID,
		"book_id": bookID,
	}

	var counts model.RequestCounts
	if err := t.q.QueryRow(ctx, q, args).Scan(&counts.Borrowed, &counts.Returned); err != nil {
		return model.RequestCounts{}, errors.Wrap(err, "count requests")
	}
	return counts, nil
}

// AdjustCopies moves both the balance and the catalog quantity by delta.
func (t *lendingTx) AdjustCopies(ctx context.Context, bookID string, delta int) error {
	args := pgx.NamedArgs{
		"book_id": bookID,
		"delta":   delta,
	}
	statements := []string{
		fmt.Sprintf(`update %s set available_copies = available_copies + @delta where book_id = @book_id`, bookBalancesTableName),
		fmt.Sprintf(`update %s set total_copies = total_copies + @delta where id = @book_id`, booksTableName),
	}
	for _, q := range statements {
		tag, err := t.q.Exec(ctx, q, args)
		if err != nil {
			if isCheckViolation(err) {
				if delta < 0 {
					return errs.ErrInsufficientBalance
				}
				return errs.ErrCapacityExceeded
			}
			return errors.Wrap(err, "adjust copies")
		}
		if tag.RowsAffected() != 1 {
			return errs.ErrBookNotFound
		}
	}
	return nil
}

func (t *lendingTx) AppendRecord(ctx context.Context, rec model.LoanRecord) (model.LoanRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	query, args, err := qb.Insert(loanRequestsTableName).
		Columns("id", "kind", "created_at", "user_id", "username", "book_id", "title", "genre", "observation").
		Values(rec.ID, rec.Kind, rec.CreatedAt, nullable(rec.UserID), rec.Username, rec.BookID, rec.Title, rec.Genre, nullable(rec.Observation)).
		Suffix("returning " + strings.Join(loanRecordColumns, ", ")).
		ToSql()
	if err != nil {
		return model.LoanRecord{}, err
	}

	rows, err := t.q.Query(ctx, query, args...)
	if err != nil {
		return model.LoanRecord{}, errors.Wrap(err, "insert loan request")
	}
	defer rows.Close()

	stored, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.LoanRecord])
	if err != nil {
		return model.LoanRecord{}, errors.Wrap(err, "insert loan request")
	}
	return stored, nil
}

// ListLoanRecords returns the user's audit trail in write order. An empty
// kind returns both kinds.
func (r *repository) ListLoanRecords(ctx context.Context, userID string, kind model.Kind) ([]model.LoanRecord, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, errs.ErrUserNotFound
	}
	q := qb.Select(loanRecordColumns...).
		From(loanRequestsTableName).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("seq")
	if kind != "" {
		q = q.Where(sq.Eq{"kind": kind})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.LoanRecord])
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}
	return records, nil
}
