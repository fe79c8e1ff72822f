package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/user-directory/internal/domain"
)

// UserStore defines persistence access for directory users.
// Mutations return the number of affected records.
type UserStore interface {
	SelectAll(ctx context.Context) ([]domain.User, error)
	SelectByID(ctx context.Context, id uuid.UUID) (domain.User, bool, error)
	Insert(ctx context.Context, id uuid.UUID, user domain.User) (int, error)
	Update(ctx context.Context, user domain.User) (int, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (int, error)
}

type postgresUserStore struct {
	pool *pgxpool.Pool
}

// NewPostgresUserStore returns a Postgres-backed implementation.
func NewPostgresUserStore(pool *pgxpool.Pool) UserStore {
	return &postgresUserStore{pool: pool}
}

func (r *postgresUserStore) SelectAll(ctx context.Context) ([]domain.User, error) {
	const query = `
        SELECT id, first_name, last_name, gender, age, email
        FROM users ORDER BY seq`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, domain.NewStorageError("select all", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var user domain.User
		if err := scanUser(rows, &user); err != nil {
			return nil, domain.NewStorageError("select all", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("select all", err)
	}
	return users, nil
}

func (r *postgresUserStore) SelectByID(ctx context.Context, id uuid.UUID) (domain.User, bool, error) {
	const query = `
        SELECT id, first_name, last_name, gender, age, email
        FROM users WHERE id=$1`

	var user domain.User
	if err := scanUser(r.pool.QueryRow(ctx, query, id), &user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, domain.NewStorageError("select by id", err)
	}
	return user, true, nil
}

func (r *postgresUserStore) Insert(ctx context.Context, id uuid.UUID, user domain.User) (int, error) {
	const query = `
        INSERT INTO users (id, first_name, last_name, gender, age, email)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (id) DO NOTHING`

	cmd, err := r.pool.Exec(ctx, query,
		id,
		user.FirstName,
		user.LastName,
		string(user.Gender),
		user.Age,
		user.Email,
	)
	if err != nil {
		return 0, domain.NewStorageError("insert", err)
	}
	return int(cmd.RowsAffected()), nil
}

func (r *postgresUserStore) Update(ctx context.Context, user domain.User) (int, error) {
	const query = `
        UPDATE users SET first_name=$1, last_name=$2, gender=$3, age=$4, email=$5
        WHERE id=$6`

	cmd, err := r.pool.Exec(ctx, query,
		user.FirstName,
		user.LastName,
		string(user.Gender),
		user.Age,
		user.Email,
		user.ID,
	)
	if err != nil {
		return 0, domain.NewStorageError("update", err)
	}
	return int(cmd.RowsAffected()), nil
}

func (r *postgresUserStore) DeleteByID(ctx context.Context, id uuid.UUID) (int, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return 0, domain.NewStorageError("delete", err)
	}
	return int(cmd.RowsAffected()), nil
}

func scanUser(row pgx.Row, user *domain.User) error {
	var gender string
	if err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&gender,
		&user.Age,
		&user.Email,
	); err != nil {
		return err
	}
	user.Gender = domain.Gender(gender)
	return nil
}
