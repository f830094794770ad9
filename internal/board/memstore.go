package board

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/raibo/raiboard/internal/collab"
)

// MemStore is an in-memory Store. A single mutex serializes every
// mutation, which trivially satisfies the single-writer-per-board
// contract. Used by tests and as a dev-mode backend.
type MemStore struct {
	mu      sync.Mutex
	boards  map[uuid.UUID]*Board
	invites map[uuid.UUID]*collab.Invite
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		boards:  make(map[uuid.UUID]*Board),
		invites: make(map[uuid.UUID]*collab.Invite),
	}
}

func (s *MemStore) CreateBoard(ctx context.Context, b *Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards[b.ID] = b.Clone()
	return nil
}

func (s *MemStore) GetBoard(ctx context.Context, id uuid.UUID) (*Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.boards[id]
	if !ok {
		return nil, ErrBoardNotFound
	}
	return b.Clone(), nil
}

func (s *MemStore) ListBoards(ctx context.Context, userID uuid.UUID) ([]*Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Board
	for _, b := range s.boards {
		if b.OwnerID == userID || b.Collaborators.Find(userID) != nil {
			out = append(out, b.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemStore) UpdateBoard(ctx context.Context, id uuid.UUID, mutate func(b *Board) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.boards[id]
	if !ok {
		return ErrBoardNotFound
	}
	next := current.Clone()
	if err := mutate(next); err != nil {
		return err
	}
	s.boards[id] = next
	return nil
}

func (s *MemStore) DeleteBoard(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.boards[id]; !ok {
		return ErrBoardNotFound
	}
	delete(s.boards, id)
	return nil
}

func (s *MemStore) CreateInvite(ctx context.Context, inv *collab.Invite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *inv
	s.invites[inv.ID] = &cp
	return nil
}

func (s *MemStore) GetInvite(ctx context.Context, id uuid.UUID) (*collab.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invites[id]
	if !ok {
		return nil, ErrInviteNotFound
	}
	cp := *inv
	return &cp, nil
}

func (s *MemStore) ListInvites(ctx context.Context, boardID uuid.UUID) ([]collab.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []collab.Invite
	for _, inv := range s.invites {
		if inv.BoardID == boardID {
			out = append(out, *inv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemStore) UpdateInvite(ctx context.Context, id uuid.UUID, mutate func(inv *collab.Invite, b *Board) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.invites[id]
	if !ok {
		return ErrInviteNotFound
	}
	nextInv := *current

	var nextBoard *Board
	if b, ok := s.boards[nextInv.BoardID]; ok {
		nextBoard = b.Clone()
	}

	if err := mutate(&nextInv, nextBoard); err != nil {
		return err
	}
	s.invites[id] = &nextInv
	if nextBoard != nil {
		s.boards[nextBoard.ID] = nextBoard
	}
	return nil
}

var _ Store = (*MemStore)(nil)
