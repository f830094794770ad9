package board

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/raibo/raiboard/internal/catalog"
	"github.com/raibo/raiboard/internal/collab"
	"github.com/raibo/raiboard/internal/geometry"
	"github.com/raibo/raiboard/internal/identity"
	"github.com/rs/zerolog/log"
)

// Presence is the read/write surface the service needs from the
// presence tracker. Presence failures never fail a board operation.
type Presence interface {
	Heartbeat(ctx context.Context, boardID, userID uuid.UUID) error
	Disconnect(ctx context.Context, boardID, userID uuid.UUID) error
	Online(ctx context.Context, boardID uuid.UUID) ([]uuid.UUID, error)
}

// Service is the façade the UI layer calls. Every public method is
// one logical transaction against one board: load, validate, mutate,
// save — serialized per board by the store, so concurrent edits
// re-validate against each other's committed state.
type Service struct {
	store     Store
	catalog   catalog.Resolver
	presence  Presence
	inviteTTL time.Duration
	now       func() time.Time
}

// NewService wires the service with its collaborators.
func NewService(store Store, cat catalog.Resolver, pres Presence, inviteTTL time.Duration) *Service {
	return &Service{
		store:     store,
		catalog:   cat,
		presence:  pres,
		inviteTTL: inviteTTL,
		now:       time.Now,
	}
}

// CreateBoard creates a board owned by the actor.
func (s *Service) CreateBoard(ctx context.Context, actor identity.Identity, name, description string, isPublic bool) (*Board, error) {
	if actor.IsAnonymous() {
		return nil, ErrForbidden
	}
	b := New(actor.UserID, name, description, isPublic, s.now().UTC())
	if err := s.store.CreateBoard(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}
	return b, nil
}

// GetBoard loads a board the actor may read. Collaborator presence
// flags are filled in best-effort.
func (s *Service) GetBoard(ctx context.Context, actor identity.Identity, boardID uuid.UUID) (*Board, error) {
	b, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if !b.Can(actor.UserID, collab.ActionViewBoard) {
		return nil, ErrForbidden
	}
	s.fillPresence(ctx, b)
	return b, nil
}

// ListBoards returns the boards the actor owns or collaborates on.
func (s *Service) ListBoards(ctx context.Context, actor identity.Identity) ([]*Board, error) {
	if actor.IsAnonymous() {
		return nil, ErrForbidden
	}
	boards, err := s.store.ListBoards(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	return boards, nil
}

// UpdateBoardInfo changes a board's name, description, or visibility.
func (s *Service) UpdateBoardInfo(ctx context.Context, actor identity.Identity, boardID uuid.UUID, patch InfoPatch) error {
	return s.store.UpdateBoard(ctx, boardID, func(b *Board) error {
		return b.UpdateInfo(actor.UserID, patch, s.now().UTC())
	})
}

// DeleteBoard removes a board with its elements and roster. Owner
// only. Invites referencing the board remain as historical records.
func (s *Service) DeleteBoard(ctx context.Context, actor identity.Identity, boardID uuid.UUID) error {
	b, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		return err
	}
	if !b.Can(actor.UserID, collab.ActionDeleteBoard) {
		return ErrForbidden
	}
	return s.store.DeleteBoard(ctx, boardID)
}

// UpdateSettings applies a settings patch. Owner only.
func (s *Service) UpdateSettings(ctx context.Context, actor identity.Identity, boardID uuid.UUID, patch SettingsPatch) error {
	return s.store.UpdateBoard(ctx, boardID, func(b *Board) error {
		return b.UpdateSettings(actor.UserID, patch, s.now().UTC())
	})
}

// PlaceProduct resolves the product in the catalog and places a card
// carrying the snapshot the actor saw.
func (s *Service) PlaceProduct(ctx context.Context, actor identity.Identity, boardID uuid.UUID, productID string, pos geometry.Point, size geometry.Size) (*Element, error) {
	summary, err := s.catalog.Resolve(ctx, productID)
	if err != nil {
		return nil, err
	}
	snapshot := ProductInfo{
		ProductID:    summary.ID,
		ProductName:  summary.Name,
		ProductImage: summary.Image,
		ProductPrice: summary.Price,
	}

	var placed *Element
	err = s.store.UpdateBoard(ctx, boardID, func(b *Board) error {
		el, err := b.PlaceProduct(actor.UserID, snapshot, pos, size, s.now().UTC())
		if err != nil {
			return err
		}
		placed = el
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

// PlaceText places an empty text block.
func (s *Service) PlaceText(ctx context.Context, actor identity.Identity, boardID uuid.UUID, kind TextKind, pos geometry.Point) (*Element, error) {
	var placed *Element
	err := s.store.UpdateBoard(ctx, boardID, func(b *Board) error {
		el, err := b.PlaceText(actor.UserID, kind, pos, s.now().UTC())
		if err != nil {
			return err
		}
		placed = el
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

// UpdateElement applies a move/resize/restyle patch to one element.
func (s *Service) UpdateElement(ctx context.Context, actor identity.Identity, boardID, elementID uuid.UUID, patch ElementPatch) error {
	return s.store.UpdateBoard(ctx, boardID, func(b *Board) error {
		return b.UpdateElement(actor.UserID, elementID, patch, s.now().UTC())
	})
}

// SetElementLayer brings an element to the front or sends it to the
// back.
func (s *Service) SetElementLayer(ctx context.Context, actor identity.Identity, boardID, elementID uuid.UUID, layer Layer) error {
	return s.store.UpdateBoard(ctx, boardID, func(b *Board) error {
		return b.SetElementLayer(actor.UserID, elementID, layer, s.now().UTC())
	})
}

// RemoveElement deletes an element from a board.
func (s *Service) RemoveElement(ctx context.Context, actor identity.Identity, boardID, elementID uuid.UUID) error {
	return s.store.UpdateBoard(ctx, boardID, func(b *Board) error {
		return b.RemoveElement(actor.UserID, elementID, s.now().UTC())
	})
}

// Invite issues a pending invite granting role on the board. Owner or
// editor only.
func (s *Service) Invite(ctx context.Context, actor identity.Identity, boardID uuid.UUID, email string, role collab.Role) (*collab.Invite, error) {
	b, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if !b.Can(actor.UserID, collab.ActionInvite) {
		return nil, ErrForbidden
	}
	inv, err := collab.NewInvite(boardID, actor.DisplayName, email, role, s.inviteTTL, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateInvite(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}
	return inv, nil
}

// RespondToInvite applies the invitee's answer. Accepting a still
// pending invite joins the roster with the invited role in the same
// atomic step as the status transition; declining changes no roster
// state. A past-due invite is marked expired and the call returns
// collab.ErrInviteExpired regardless of the answer.
func (s *Service) RespondToInvite(ctx context.Context, actor identity.Identity, inviteID uuid.UUID, accept bool) error {
	if actor.IsAnonymous() {
		return ErrForbidden
	}

	var deferred error
	err := s.store.UpdateInvite(ctx, inviteID, func(inv *collab.Invite, b *Board) error {
		if !inv.MatchesInvitee(actor.Email) {
			return collab.ErrEmailMismatch
		}
		now := s.now().UTC()
		if err := inv.Respond(accept, now); err != nil {
			if errors.Is(err, collab.ErrInviteExpired) {
				// Persist the expired flip, surface the error after
				// commit.
				deferred = err
				return nil
			}
			return err
		}
		if !accept {
			return nil
		}
		if b == nil {
			return ErrBoardNotFound
		}
		if err := b.Collaborators.Add(actor.UserID, actor.DisplayName, actor.AvatarURL, inv.Role, now); err != nil {
			if errors.Is(err, collab.ErrAlreadyCollaborator) {
				return nil
			}
			return err
		}
		b.UpdatedAt = now
		return nil
	})
	if err != nil {
		return err
	}
	return deferred
}

// RevokeInvite withdraws a pending invite. Owner or editor only.
func (s *Service) RevokeInvite(ctx context.Context, actor identity.Identity, boardID, inviteID uuid.UUID) error {
	return s.store.UpdateInvite(ctx, inviteID, func(inv *collab.Invite, b *Board) error {
		if inv.BoardID != boardID {
			return ErrInviteNotFound
		}
		if b == nil {
			return ErrBoardNotFound
		}
		if !b.Can(actor.UserID, collab.ActionRevokeInvite) {
			return ErrForbidden
		}
		return inv.Revoke(s.now().UTC())
	})
}

// ListInvites returns a board's invite log with lazily resolved
// statuses. Owner or editor only.
func (s *Service) ListInvites(ctx context.Context, actor identity.Identity, boardID uuid.UUID) ([]collab.Invite, error) {
	b, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if !b.Can(actor.UserID, collab.ActionInvite) {
		return nil, ErrForbidden
	}
	invites, err := s.store.ListInvites(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	now := s.now().UTC()
	for i := range invites {
		invites[i].Status = invites[i].EffectiveStatus(now)
	}
	return invites, nil
}

// ListCollaborators returns the roster with live presence flags.
func (s *Service) ListCollaborators(ctx context.Context, actor identity.Identity, boardID uuid.UUID) (collab.Roster, error) {
	b, err := s.GetBoard(ctx, actor, boardID)
	if err != nil {
		return nil, err
	}
	return b.Collaborators, nil
}

// SetCollaboratorRole changes a collaborator's role. Owner only.
func (s *Service) SetCollaboratorRole(ctx context.Context, actor identity.Identity, boardID, targetID uuid.UUID, role collab.Role) error {
	return s.store.UpdateBoard(ctx, boardID, func(b *Board) error {
		return b.SetCollaboratorRole(actor.UserID, targetID, role, s.now().UTC())
	})
}

// RemoveCollaborator removes a user from the roster; a collaborator
// may remove themselves to leave the board.
func (s *Service) RemoveCollaborator(ctx context.Context, actor identity.Identity, boardID, targetID uuid.UUID) error {
	err := s.store.UpdateBoard(ctx, boardID, func(b *Board) error {
		return b.RemoveCollaborator(actor.UserID, targetID, s.now().UTC())
	})
	if err != nil {
		return err
	}
	if perr := s.presence.Disconnect(ctx, boardID, targetID); perr != nil {
		log.Warn().Err(perr).Str("board_id", boardID.String()).Msg("Failed to clear presence for removed collaborator")
	}
	return nil
}

// Heartbeat marks the actor online on a board they can read.
func (s *Service) Heartbeat(ctx context.Context, actor identity.Identity, boardID uuid.UUID) error {
	if actor.IsAnonymous() {
		return ErrForbidden
	}
	b, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		return err
	}
	if !b.Can(actor.UserID, collab.ActionViewBoard) {
		return ErrForbidden
	}
	return s.presence.Heartbeat(ctx, boardID, actor.UserID)
}

// fillPresence merges live presence into the roster. Best-effort:
// a presence failure logs a warning and leaves every flag false.
func (s *Service) fillPresence(ctx context.Context, b *Board) {
	online, err := s.presence.Online(ctx, b.ID)
	if err != nil {
		log.Warn().Err(err).Str("board_id", b.ID.String()).Msg("Failed to read presence")
		return
	}
	set := make(map[uuid.UUID]bool, len(online))
	for _, id := range online {
		set[id] = true
	}
	for i := range b.Collaborators {
		b.Collaborators[i].IsOnline = set[b.Collaborators[i].UserID]
	}
}
