package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByPseudo(ctx context.Context, pseudo string) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

// Create inserts the user. The unique index on pseudo turns a concurrent
// duplicate into domain.ErrDuplicatePseudo.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (pseudo, password_hash, is_admin)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		user.Pseudo,
		user.PasswordHash,
		user.IsAdmin,
	).Scan(&user.ID, &user.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrDuplicatePseudo
	}
	return err
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `UPDATE users SET password_hash=$1, is_admin=$2 WHERE id=$3`

	cmd, err := r.pool.Exec(ctx, query, user.PasswordHash, user.IsAdmin, user.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `SELECT id, pseudo, password_hash, is_admin, created_at FROM users WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

// GetByPseudo matches the pseudo case-sensitively.
func (r *userRepository) GetByPseudo(ctx context.Context, pseudo string) (*domain.User, error) {
	const query = `SELECT id, pseudo, password_hash, is_admin, created_at FROM users WHERE pseudo=$1`
	return r.fetchSingle(ctx, query, pseudo)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Pseudo,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.CreatedAt,
	); err != nil {
		return nil, mapNoRows(err, domain.ErrUserNotFound)
	}
	return &user, nil
}
