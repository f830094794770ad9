// Package audit records board activity in the board_events table.
// Writes are best-effort: a failed audit insert is logged and never
// fails the request that triggered it.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const (
	EventBoardCreated     = "board.created"
	EventBoardUpdated     = "board.updated"
	EventBoardDeleted     = "board.deleted"
	EventSettingsUpdated  = "board.settings_updated"
	EventElementPlaced    = "board.element_placed"
	EventElementUpdated   = "board.element_updated"
	EventElementLayered   = "board.element_layered"
	EventElementRemoved   = "board.element_removed"
	EventInviteCreated    = "board.invite_created"
	EventInviteAccepted   = "board.invite_accepted"
	EventInviteDeclined   = "board.invite_declined"
	EventInviteRevoked    = "board.invite_revoked"
	EventCollaboratorRole = "board.collaborator_role_updated"
	EventCollaboratorLeft = "board.collaborator_removed"
	EventInvitesSwept     = "board.invites_swept"
)

// Event represents a single audit log entry.
type Event struct {
	ID          uuid.UUID      `json:"id"`
	BoardID     *uuid.UUID     `json:"board_id,omitempty"`
	ActorUserID *uuid.UUID     `json:"actor_user_id,omitempty"`
	Action      string         `json:"action"`
	Meta        map[string]any `json:"meta"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Writer provides methods to write audit log entries.
type Writer struct {
	pool *pgxpool.Pool
}

func NewWriter(pool *pgxpool.Pool) *Writer {
	return &Writer{pool: pool}
}

// LogParams contains parameters for logging an audit event.
type LogParams struct {
	BoardID     *uuid.UUID
	ActorUserID *uuid.UUID
	Action      string
	Meta        map[string]any
}

func (w *Writer) Log(ctx context.Context, params LogParams) error {
	metaJSON := []byte("{}")
	if params.Meta != nil {
		b, err := json.Marshal(params.Meta)
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal audit meta")
			return err
		}
		metaJSON = b
	}

	query := `
		INSERT INTO board_events (board_id, actor_user_id, action, meta)
		VALUES ($1, $2, $3, $4)
	`

	boardID := toNullUUID(params.BoardID)
	actorUserID := toNullUUID(params.ActorUserID)

	_, err := w.pool.Exec(ctx, query, boardID, actorUserID, params.Action, metaJSON)
	if err != nil {
		log.Error().Err(err).Str("action", params.Action).Msg("Failed to write audit log")
		return err
	}

	log.Info().
		Str("action", params.Action).
		Interface("board_id", params.BoardID).
		Interface("actor_user_id", params.ActorUserID).
		Msg("Audit event logged")

	return nil
}

func toNullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func (w *Writer) LogBoardCreated(ctx context.Context, boardID, userID uuid.UUID, name string) error {
	return w.Log(ctx, LogParams{
		BoardID:     &boardID,
		ActorUserID: &userID,
		Action:      EventBoardCreated,
		Meta: map[string]any{
			"name": name,
		},
	})
}

func (w *Writer) LogBoardUpdated(ctx context.Context, boardID, userID uuid.UUID) error {
	return w.Log(ctx, LogParams{
		BoardID:     &boardID,
		ActorUserID: &userID,
		Action:      EventBoardUpdated,
		Meta:        map[string]any{},
	})
}

func (w *Writer) LogBoardDeleted(ctx context.Context, boardID, userID uuid.UUID) error {
	return w.Log(ctx, LogParams{
		BoardID:     &boardID,
		ActorUserID: &userID,
		Action:      EventBoardDeleted,
		Meta:        map[string]any{},
	})
}

func (w *Writer) LogSettingsUpdated(ctx context.Context, boardID, userID uuid.UUID) error {
	return w.Log(ctx, LogParams{
		BoardID:     &boardID,
		ActorUserID: &userID,
		Action:      EventSettingsUpdated,
		Meta:        map[string]any{},
	})
}

func (w *Writer) LogElementPlaced(ctx context.Context, boardID, userID, elementID uuid.UUID, kind string) error {
	return w.Log(ctx, LogParams{
		BoardID:     &boardID,
		ActorUserID: &userID,
		Action:      EventElementPlaced,
		Meta: map[string]any{
			"element_id": elementID.String(),
			"kind":       kind,
		},
	})
}

func (w *Writer) LogElementUpdated(ctx context.Context, boardID, userID, elementID uuid.UUID) error {
	return w.Log(ctx, LogParams{
		BoardID:     &boardID,
		ActorUserID: &userID,
		Action:      EventElementUpdated,
		Meta: map[string]any{
			"element_id": elementID.String(),
		},
	})
}

func (w *Writer) LogElementLayered(ctx context.Context, boardID, userID, elementID uuid.UUID, layer string) error {
	return w.Log(ctx, LogParams{
		BoardID:     &boardID,
		ActorUserID: &userID,
		Action:      EventElementLayered,
		Meta: map[string]any{
			"element_id": elementID.String(),
			"layer":      layer,
		},
	})
}

func (w *Writer) LogElementRemoved(ctx context.Context, boardID, userID, elementID uuid.UUID) error {
	return w.Log(ctx, LogParams{
		BoardID:     &boardID,
		ActorUserID: &userID,
		Action:      EventElementRemoved,
		Meta: map[string]any{
			"element_id": elementID.String(),
		},
	})
}

func (w *Writer) LogInviteCreated(ctx context.Context, boardID, actorUserID, inviteID uuid.UUID, email, role string) error {
	return w.Log(ctx, LogParams{
		BoardID:     &boardID,
		ActorUserID: &actorUserID,
		Action:      EventInviteCreated,
		Meta: map[string]any{
			"invite_id": inviteID.String(),
			"email":     email,
			"role":      role,
		},
	})
}

func (w *Writer) LogInviteResponded(ctx context.Context, boardID, actorUserID, inviteID uuid.UUID, accepted bool) error {
	action := EventInviteDeclined
	if accepted {
		action = EventInviteAccepted
	}
	return w.Log(ctx, LogParams{
		BoardID:     &boardID,
		ActorUserID: &actorUserID,
		Action:      action,
		Meta: map[string]any{
			"invite_id": inviteID.String(),
		},
	})
}

func (w *Writer) LogInviteRevoked(ctx context.Context, boardID, actorUserID, inviteID uuid.UUID) error {
	return w.Log(ctx, LogParams{
		BoardID:     &boardID,
		ActorUserID: &actorUserID,
		Action:      EventInviteRevoked,
		Meta: map[string]any{
			"invite_id": inviteID.String(),
		},
	})
}

func (w *Writer) LogCollaboratorRoleUpdated(ctx context.Context, boardID, actorUserID, targetUserID uuid.UUID, newRole string) error {
	return w.Log(ctx, LogParams{
		BoardID:     &boardID,
		ActorUserID: &actorUserID,
		Action:      EventCollaboratorRole,
		Meta: map[string]any{
			"target_user_id": targetUserID.String(),
			"new_role":       newRole,
		},
	})
}

func (w *Writer) LogCollaboratorRemoved(ctx context.Context, boardID, actorUserID, targetUserID uuid.UUID) error {
	return w.Log(ctx, LogParams{
		BoardID:     &boardID,
		ActorUserID: &actorUserID,
		Action:      EventCollaboratorLeft,
		Meta: map[string]any{
			"target_user_id": targetUserID.String(),
		},
	})
}

func (w *Writer) LogInvitesSwept(ctx context.Context, count int64) error {
	return w.Log(ctx, LogParams{
		Action: EventInvitesSwept,
		Meta: map[string]any{
			"expired": count,
		},
	})
}
