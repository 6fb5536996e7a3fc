package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-profile/internal/domain/model"
	"github.com/0xsj/overwatch-profile/internal/port/outbound/repository"
)

// uniqueViolation is the postgres error code raised by the
// lower(username) unique index when a concurrent writer wins.
const uniqueViolation = "23505"

const (
	createUserSQL = `
		INSERT INTO users (id, username, display_name, emails, invite_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	findUserByIDSQL = `
		SELECT id, username, display_name, emails, invite_token, created_at, updated_at
		FROM users
		WHERE id = $1`

	findUserByUsernameSQL = `
		SELECT id, username, display_name, emails, invite_token, created_at, updated_at
		FROM users
		WHERE lower(username) = lower($1)`

	setUsernameSQL = `
		UPDATE users
		SET username = $2, updated_at = now()
		WHERE id = $1`
)

// userRepository implements repository.UserRepository.
type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	row := toUserRow(user)
	_, err := r.pool.Exec(ctx, createUserSQL,
		row.ID,
		row.Username,
		row.DisplayName,
		row.Emails,
		row.InviteToken,
		row.CreatedAt,
		row.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrUsernameTaken
	}
	return err
}

func (r *userRepository) FindByID(ctx context.Context, id types.ID) (*model.User, error) {
	return r.findOne(ctx, findUserByIDSQL, id.String())
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, findUserByUsernameSQL, username)
}

func (r *userRepository) SetUsername(ctx context.Context, id types.ID, username string) error {
	tag, err := r.pool.Exec(ctx, setUsernameSQL, id.String(), username)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrUsernameTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) findOne(ctx context.Context, sql string, arg any) (*model.User, error) {
	var row userRow
	err := r.pool.QueryRow(ctx, sql, arg).Scan(
		&row.ID,
		&row.Username,
		&row.DisplayName,
		&row.Emails,
		&row.InviteToken,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return toUserModel(row)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
