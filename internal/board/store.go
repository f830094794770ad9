package board

import (
	"context"

	"github.com/google/uuid"
	"github.com/raibo/raiboard/internal/collab"
)

// Store is the persistence port for board aggregates and the invite
// log. Implementations must make each method atomic per board and
// serialize UpdateBoard calls against the same board: the mutate
// callback always observes the latest committed state, so a second
// concurrent mutation re-validates against the first one's result
// rather than a stale snapshot.
type Store interface {
	// CreateBoard persists a new board.
	CreateBoard(ctx context.Context, b *Board) error

	// GetBoard loads one board, or ErrBoardNotFound.
	GetBoard(ctx context.Context, id uuid.UUID) (*Board, error)

	// ListBoards returns the boards a user owns or collaborates on.
	ListBoards(ctx context.Context, userID uuid.UUID) ([]*Board, error)

	// UpdateBoard runs mutate against the current board state and
	// persists the result in one atomic step. A non-nil error from
	// mutate aborts the update and is returned unchanged.
	UpdateBoard(ctx context.Context, id uuid.UUID, mutate func(b *Board) error) error

	// DeleteBoard removes a board with its elements and roster.
	// Invites referencing the board survive as historical records.
	DeleteBoard(ctx context.Context, id uuid.UUID) error

	// CreateInvite appends an invite to the log.
	CreateInvite(ctx context.Context, inv *collab.Invite) error

	// GetInvite loads one invite, or ErrInviteNotFound.
	GetInvite(ctx context.Context, id uuid.UUID) (*collab.Invite, error)

	// ListInvites returns all invites for a board, newest first.
	ListInvites(ctx context.Context, boardID uuid.UUID) ([]collab.Invite, error)

	// UpdateInvite runs mutate against the invite and its board in a
	// single atomic step, so an invite transition and the roster
	// change it implies commit together or not at all. The board
	// argument is nil when the invite's board no longer exists.
	UpdateInvite(ctx context.Context, id uuid.UUID, mutate func(inv *collab.Invite, b *Board) error) error
}
