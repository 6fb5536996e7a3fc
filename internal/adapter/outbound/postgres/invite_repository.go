package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/0xsj/overwatch-profile/internal/domain/model"
	"github.com/0xsj/overwatch-profile/internal/port/outbound/repository"
)

const findInviteByTokenSQL = `
	SELECT token, room_id
	FROM invites
	WHERE token = $1`

// inviteRepository implements repository.InviteRepository.
type inviteRepository struct {
	pool *pgxpool.Pool
}

// NewInviteRepository creates a new InviteRepository.
func NewInviteRepository(pool *pgxpool.Pool) repository.InviteRepository {
	return &inviteRepository{pool: pool}
}

func (r *inviteRepository) FindByToken(ctx context.Context, token string) (*model.Invite, error) {
	var row inviteRow
	err := r.pool.QueryRow(ctx, findInviteByTokenSQL, token).Scan(&row.Token, &row.RoomID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return toInviteModel(row), nil
}
