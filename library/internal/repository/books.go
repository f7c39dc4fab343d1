package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/biblioteca-service/library/internal/errs"
	"github.com/Astemirdum/biblioteca-service/library/internal/model"
)

var bookColumns = []string{
	"b.id",
	"b.title",
	"b.author",
	"b.genre",
	"coalesce(b.year, '') as year",
	"b.total_copies",
	"coalesce(b.image, '') as image",
	"b.created_at",
}

var balanceColumns = []string{
	"bb.id",
	"bb.book_id",
	"bb.available_copies",
	"bb.capacity",
	"b.title",
	"b.author",
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// CreateBook stores the book and opens its balance with every copy available.
func (r *repository) CreateBook(ctx context.Context, book model.Book) (model.Book, error) {
	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		query, args, err := qb.Insert(booksTableName).
			Columns("id", "title", "author", "genre", "year", "total_copies", "image").
			Values(book.ID, book.Title, book.Author, book.Genre, nullable(book.Year), book.TotalCopies, nullable(book.Image)).
			Suffix("returning created_at").
			ToSql()
		if err != nil {
			return err
		}
		if err = tx.QueryRow(ctx, query, args...).Scan(&book.CreatedAt); err != nil {
			if isUniqueViolation(err) {
				return errs.ErrAlreadyExists
			}
			return errors.Wrap(err, "insert book")
		}

		query, args, err = qb.Insert(bookBalancesTableName).
			Columns("id", "book_id", "available_copies", "capacity").
			Values(uuid.NewString(), book.ID, book.TotalCopies, book.TotalCopies).
			ToSql()
		if err != nil {
			return err
		}
		if _, err = tx.Exec(ctx, query, args...); err != nil {
			return errors.Wrap(err, "insert balance")
		}
		return nil
	})
	if err != nil {
		r.log.Error("CreateBook", zap.String("title", book.Title), zap.Error(err))
		return model.Book{}, err
	}
	return book, nil
}

func (r *repository) GetBook(ctx context.Context, bookID string) (model.Book, error) {
	if _, err := uuid.Parse(bookID); err != nil {
		return model.Book{}, errs.ErrBookNotFound
	}
	query, args, err := qb.Select(bookColumns...).
		From(booksTableName + " b").
		Where(sq.Eq{"b.id": bookID}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Book{}, err
	}
	defer rows.Close()

	book, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Book{}, errs.ErrBookNotFound
		}
		return model.Book{}, err
	}
	return book, nil
}

func (r *repository) ListBooks(ctx context.Context, showAll bool, page, size int) (model.ListBooks, error) {
	q := qb.Select(bookColumns...).
		From(booksTableName + " b").
		Join(fmt.Sprintf("%s bb on bb.book_id = b.id", bookBalancesTableName)).
		OrderBy("b.title", "b.id")

	if !showAll {
		q = q.Where(sq.Gt{"bb.available_copies": 0})
	}
	if page != 0 && size != 0 {
		q = q.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return model.ListBooks{}, err
	}
	r.log.Debug("ListBooks", zap.String("query", query), zap.Any("args", args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.ListBooks{}, err
	}
	defer rows.Close()

	books, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		return model.ListBooks{}, fmt.Errorf("pgx.CollectRows: %w", err)
	}

	return model.ListBooks{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: len(books),
		},
		Items: books,
	}, nil
}

func (r *repository) GetBalance(ctx context.Context, bookID string) (model.Balance, error) {
	if _, err := uuid.Parse(bookID); err != nil {
		return model.Balance{}, errs.ErrBookNotFound
	}
	query, args, err := qb.Select(balanceColumns...).
		From(bookBalancesTableName + " bb").
		Join(fmt.Sprintf("%s b on b.id = bb.book_id", booksTableName)).
		Where(sq.Eq{"bb.book_id": bookID}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Balance{}, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Balance{}, err
	}
	defer rows.Close()

	balance, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Balance])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Balance{}, errs.ErrBookNotFound
		}
		return model.Balance{}, err
	}
	return balance, nil
}

func (r *repository) ListBalances(ctx context.Context) ([]model.Balance, error) {
	query, args, err := qb.Select(balanceColumns...).
		From(bookBalancesTableName + " bb").
		Join(fmt.Sprintf("%s b on b.id = bb.book_id", booksTableName)).
		OrderBy("b.title", "bb.book_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balances, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Balance])
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}
	return balances, nil
}
