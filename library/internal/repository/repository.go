package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/biblioteca-service/library/internal/errs"
	"github.com/Astemirdum/biblioteca-service/library/internal/model"
)

type Repository interface {
	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	GetBook(ctx context.Context, bookID string) (model.Book, error)
	ListBooks(ctx context.Context, showAll bool, page, size int) (model.ListBooks, error)
	GetBalance(ctx context.Context, bookID string) (model.Balance, error)
	ListBalances(ctx context.Context) ([]model.Balance, error)

	CreateUser(ctx context.Context, user model.User) (model.User, error)
	GetUser(ctx context.Context, userRef string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)

	ListLoanRecords(ctx context.Context, userID string, kind model.Kind) ([]model.LoanRecord, error)
	// InTx runs fn inside one database transaction. Any error returned by fn
	// rolls the whole unit back.
	InTx(ctx context.Context, fn func(tx LendingTx) error) error
}

// LendingTx is the set of reads and writes a loan request performs while
// holding the lock on the book's balance row.
type LendingTx interface {
	ResolveUser(ctx context.Context, userRef string) (model.User, error)
	LockBook(ctx context.Context, ref model.BookRef) (model.BookBalance, error)
	CountRequests(ctx context.Context, userID, bookID string) (model.RequestCounts, error)
	AdjustCopies(ctx context.Context, bookID string, delta int) error
	AppendRecord(ctx context.Context, rec model.LoanRecord) (model.LoanRecord, error)
}

type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ querier = (*pgxpool.Pool)(nil)
	_ querier = (pgx.Tx)(nil)
)

type repository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewRepository(db *pgxpool.Pool, log *zap.Logger) (*repository, error) {
	if db == nil {
		return nil, errors.New("nil db pool")
	}
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	usersTableName        = `users`
	booksTableName        = `books`
	bookBalancesTableName = `book_balances`
	loanRequestsTableName = `loan_requests`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *repository) InTx(ctx context.Context, fn func(tx LendingTx) error) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		return fn(&lendingTx{q: tx, log: r.log})
	})
}

func (r *repository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w: %w", errs.ErrStorageFailure, err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			r.log.Warn("tx.Rollback", zap.Error(rbErr))
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w: %w", errs.ErrStorageFailure, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation
}
