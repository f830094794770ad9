package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/raibo/raiboard/internal/board"
	"github.com/raibo/raiboard/internal/collab"
)

const inviteColumns = `id, board_id, inviter_name, invitee_email, role, status, created_at, expires_at`

func scanInvite(row boardRow) (*collab.Invite, error) {
	var inv collab.Invite
	err := row.Scan(
		&inv.ID,
		&inv.BoardID,
		&inv.InviterName,
		&inv.InviteeEmail,
		&inv.Role,
		&inv.Status,
		&inv.CreatedAt,
		&inv.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *Store) CreateInvite(ctx context.Context, inv *collab.Invite) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO board_invites (id, board_id, inviter_name, invitee_email, role, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, inv.ID, inv.BoardID, inv.InviterName, inv.InviteeEmail, inv.Role, inv.Status, inv.CreatedAt, inv.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create invite: %w", err)
	}
	return nil
}

func (s *Store) GetInvite(ctx context.Context, id uuid.UUID) (*collab.Invite, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+inviteColumns+` FROM board_invites WHERE id = $1`, id)
	inv, err := scanInvite(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, board.ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return inv, nil
}

func (s *Store) ListInvites(ctx context.Context, boardID uuid.UUID) ([]collab.Invite, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+inviteColumns+`
		FROM board_invites
		WHERE board_id = $1
		ORDER BY created_at DESC
	`, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	var invites []collab.Invite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		invites = append(invites, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invites: %w", err)
	}
	return invites, nil
}

// UpdateInvite locks the invite row, then the board row when the board
// still exists, and applies mutate to both under the same transaction.
// Lock order is always invite first, board second.
func (s *Store) UpdateInvite(ctx context.Context, id uuid.UUID, mutate func(inv *collab.Invite, b *board.Board) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	row := tx.QueryRow(ctx, `SELECT `+inviteColumns+` FROM board_invites WHERE id = $1 FOR UPDATE`, id)
	inv, err := scanInvite(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return board.ErrInviteNotFound
		}
		return fmt.Errorf("failed to lock invite: %w", err)
	}

	b, err := lockBoard(ctx, tx, inv.BoardID)
	if err != nil && !errors.Is(err, board.ErrBoardNotFound) {
		return err
	}

	if err := mutate(inv, b); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE board_invites
		SET role = $2, status = $3, expires_at = $4
		WHERE id = $1
	`, inv.ID, inv.Role, inv.Status, inv.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to save invite: %w", err)
	}

	if b != nil {
		if err := saveBoard(ctx, tx, b); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
