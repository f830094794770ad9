// Package presence tracks which collaborators are currently looking
// at a board. Presence is best-effort and ephemeral: it lives in
// redis with a staleness window, may lag reality, and is never
// consulted for permission decisions.
package presence

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const boardKeyPrefix = "raiboard:presence:" // sorted set per board, scored by last heartbeat

// Tracker records heartbeats in a per-board sorted set scored by the
// heartbeat time. A member is online while its score is within the
// staleness window; overdue members are trimmed on read.
type Tracker struct {
	client *redis.Client
	window time.Duration
	now    func() time.Time
}

// NewTracker creates a tracker with the given staleness window.
func NewTracker(client *redis.Client, window time.Duration) *Tracker {
	return &Tracker{client: client, window: window, now: time.Now}
}

func boardKey(boardID uuid.UUID) string {
	return boardKeyPrefix + boardID.String()
}

// Heartbeat marks the user online on the board. Last write wins.
func (t *Tracker) Heartbeat(ctx context.Context, boardID, userID uuid.UUID) error {
	now := t.now()
	key := boardKey(boardID)

	pipe := t.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMilli()), Member: userID.String()})
	pipe.Expire(ctx, key, 2*t.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record heartbeat: %w", err)
	}
	return nil
}

// Disconnect removes the user from the board's presence set.
func (t *Tracker) Disconnect(ctx context.Context, boardID, userID uuid.UUID) error {
	if err := t.client.ZRem(ctx, boardKey(boardID), userID.String()).Err(); err != nil {
		return fmt.Errorf("failed to remove presence: %w", err)
	}
	return nil
}

// Online returns the users whose last heartbeat is within the
// staleness window, trimming overdue entries as a side effect.
func (t *Tracker) Online(ctx context.Context, boardID uuid.UUID) ([]uuid.UUID, error) {
	key := boardKey(boardID)
	cutoff := t.now().Add(-t.window).UnixMilli()

	pipe := t.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(cutoff, 10))
	members := pipe.ZRange(ctx, key, 0, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to read presence: %w", err)
	}

	var online []uuid.UUID
	for _, member := range members.Val() {
		id, err := uuid.Parse(member)
		if err != nil {
			continue
		}
		online = append(online, id)
	}
	return online, nil
}
