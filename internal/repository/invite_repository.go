package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"lunch-order/internal/domain"
)

type InviteRepository interface {
	Create(ctx context.Context, invite *domain.Invite) error
	GetPendingByTokenHash(ctx context.Context, tokenHash string) (*domain.Invite, error)
	MarkAccepted(ctx context.Context, id uuid.UUID) error
}

type inviteRepository struct {
	db *sqlx.DB
}

func NewInviteRepository(db *sqlx.DB) InviteRepository {
	return &inviteRepository{db: db}
}

func (r *inviteRepository) Create(ctx context.Context, invite *domain.Invite) error {
	query := `
		INSERT INTO invites (invite_id, email, role, token_hash, invited_by, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		invite.ID, invite.Email, invite.Role, invite.TokenHash, invite.InvitedBy, invite.ExpiresAt,
	).Scan(&invite.CreatedAt)
}

func (r *inviteRepository) GetPendingByTokenHash(ctx context.Context, tokenHash string) (*domain.Invite, error) {
	var invite domain.Invite
	query := `SELECT * FROM invites WHERE token_hash = $1 AND accepted_at IS NULL AND expires_at > NOW()`

	err := r.db.GetContext(ctx, &invite, query, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *inviteRepository) MarkAccepted(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE invites SET accepted_at = NOW() WHERE invite_id = $1 AND accepted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
