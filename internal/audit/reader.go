package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Reader struct {
	pool *pgxpool.Pool
}

func NewReader(pool *pgxpool.Pool) *Reader {
	return &Reader{pool: pool}
}

// ListByBoard returns the newest events for a board, newest first.
func (r *Reader) ListByBoard(ctx context.Context, boardID uuid.UUID, limit int) ([]Event, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, board_id, actor_user_id, action, meta, created_at
		FROM board_events
		WHERE board_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, boardID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query board events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var event Event
		var bID uuid.NullUUID
		var actorUserID uuid.NullUUID
		var metaRaw []byte

		if err := rows.Scan(&event.ID, &bID, &actorUserID, &event.Action, &metaRaw, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}

		if bID.Valid {
			event.BoardID = &bID.UUID
		}
		if actorUserID.Valid {
			event.ActorUserID = &actorUserID.UUID
		}

		event.Meta = map[string]any{}
		if len(metaRaw) > 0 {
			_ = json.Unmarshal(metaRaw, &event.Meta)
		}

		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return out, nil
}
