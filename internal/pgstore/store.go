// Package pgstore is the postgres implementation of the board Store.
// One boards row carries the whole aggregate (settings, elements,
// roster as jsonb), so a row lock is the single-writer-per-board
// guarantee: every update selects the row FOR UPDATE, mutates the
// decoded aggregate, and writes it back in the same transaction.
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/raibo/raiboard/internal/board"
	"github.com/raibo/raiboard/internal/collab"
)

// Store persists board aggregates and the invite log in postgres.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store on the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const boardColumns = `id, owner_id, name, description, is_public, settings, elements, collaborators, created_at, updated_at`

type boardRow interface {
	Scan(dest ...any) error
}

func scanBoard(row boardRow) (*board.Board, error) {
	var b board.Board
	var settings, elements, collaborators []byte

	err := row.Scan(
		&b.ID,
		&b.OwnerID,
		&b.Name,
		&b.Description,
		&b.IsPublic,
		&settings,
		&elements,
		&collaborators,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(settings, &b.Settings); err != nil {
		return nil, fmt.Errorf("corrupted board settings: %w", err)
	}
	if err := json.Unmarshal(elements, &b.Elements); err != nil {
		return nil, fmt.Errorf("corrupted board elements: %w", err)
	}
	if err := json.Unmarshal(collaborators, &b.Collaborators); err != nil {
		return nil, fmt.Errorf("corrupted board roster: %w", err)
	}
	return &b, nil
}

func encodeBoard(b *board.Board) (settings, elements, collaborators []byte, err error) {
	if settings, err = json.Marshal(b.Settings); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	if b.Elements == nil {
		b.Elements = board.Elements{}
	}
	if elements, err = json.Marshal(b.Elements); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode elements: %w", err)
	}
	if b.Collaborators == nil {
		b.Collaborators = collab.Roster{}
	}
	if collaborators, err = json.Marshal(b.Collaborators); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode roster: %w", err)
	}
	return settings, elements, collaborators, nil
}

func (s *Store) CreateBoard(ctx context.Context, b *board.Board) error {
	settings, elements, collaborators, err := encodeBoard(b)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO boards (id, owner_id, name, description, is_public, settings, elements, collaborators, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, b.ID, b.OwnerID, b.Name, b.Description, b.IsPublic, settings, elements, collaborators, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create board: %w", err)
	}
	return nil
}

func (s *Store) GetBoard(ctx context.Context, id uuid.UUID) (*board.Board, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+boardColumns+` FROM boards WHERE id = $1`, id)
	b, err := scanBoard(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, board.ErrBoardNotFound
		}
		return nil, fmt.Errorf("failed to get board: %w", err)
	}
	return b, nil
}

func (s *Store) ListBoards(ctx context.Context, userID uuid.UUID) ([]*board.Board, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+boardColumns+`
		FROM boards
		WHERE owner_id = $1
		   OR collaborators @> jsonb_build_array(jsonb_build_object('user_id', to_jsonb($1::uuid)))
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	defer rows.Close()

	var boards []*board.Board
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan board: %w", err)
		}
		boards = append(boards, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating boards: %w", err)
	}
	return boards, nil
}

func (s *Store) UpdateBoard(ctx context.Context, id uuid.UUID, mutate func(b *board.Board) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	b, err := lockBoard(ctx, tx, id)
	if err != nil {
		return err
	}

	if err := mutate(b); err != nil {
		return err
	}

	if err := saveBoard(ctx, tx, b); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func lockBoard(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*board.Board, error) {
	row := tx.QueryRow(ctx, `SELECT `+boardColumns+` FROM boards WHERE id = $1 FOR UPDATE`, id)
	b, err := scanBoard(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, board.ErrBoardNotFound
		}
		return nil, fmt.Errorf("failed to lock board: %w", err)
	}
	return b, nil
}

func saveBoard(ctx context.Context, tx pgx.Tx, b *board.Board) error {
	settings, elements, collaborators, err := encodeBoard(b)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE boards
		SET name = $2, description = $3, is_public = $4, settings = $5,
		    elements = $6, collaborators = $7, updated_at = $8
		WHERE id = $1
	`, b.ID, b.Name, b.Description, b.IsPublic, settings, elements, collaborators, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save board: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return board.ErrBoardNotFound
	}
	return nil
}

func (s *Store) DeleteBoard(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM boards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return board.ErrBoardNotFound
	}
	return nil
}

var _ board.Store = (*Store)(nil)
