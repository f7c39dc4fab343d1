package repository

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/Astemirdum/biblioteca-service/library/internal/errs"
	"github.com/Astemirdum/biblioteca-service/library/internal/model"
)

var userColumns = []string{
	"id",
	"username",
	"name",
	"last_name",
	"coalesce(email, '') as email",
	"coalesce(dni, '') as dni",
	"role",
	"password_hash",
	"created_at",
}

func (r *repository) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	query, args, err := qb.Insert(usersTableName).
		Columns("id", "username", "name", "last_name", "email", "dni", "role", "password_hash").
		Values(user.ID, user.Username, user.Name, user.LastName, nullable(user.Email), nullable(user.DNI), user.Role, user.PasswordHash).
		Suffix("returning created_at").
		ToSql()
	if err != nil {
		return model.User{}, err
	}
	if err = r.db.QueryRow(ctx, query, args...).Scan(&user.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return model.User{}, errs.ErrAlreadyExists
		}
		return model.User{}, errors.Wrap(err, "insert user")
	}
	return user, nil
}

func (r *repository) GetUser(ctx context.Context, userRef string) (model.User, error) {
	return getUser(ctx, r.db, userRef)
}

func (r *repository) ListUsers(ctx context.Context) ([]model.User, error) {
	query, args, err := qb.Select(userColumns...).
		From(usersTableName).
		OrderBy("username").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.User])
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}
	return users, nil
}

// getUser resolves a user by id when userRef is a uuid, by username otherwise.
func getUser(ctx context.Context, q querier, userRef string) (model.User, error) {
	userRef = strings.TrimSpace(userRef)
	if userRef == "" {
		return model.User{}, errs.ErrUserNotFound
	}
	where := sq.Eq{"username": userRef}
	if _, err := uuid.Parse(userRef); err == nil {
		where = sq.Eq{"id": userRef}
	}

	query, args, err := qb.Select(userColumns...).
		From(usersTableName).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return model.User{}, err
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return model.User{}, err
	}
	defer rows.Close()

	user, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, errs.ErrUserNotFound
		}
		return model.User{}, err
	}
	return user, nil
}
