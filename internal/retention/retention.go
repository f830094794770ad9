// Package retention holds the scheduled cleanup jobs. Invite expiry is
// already enforced on read; the sweep only settles the stored status so
// listings and reports match without a reader in the loop.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// SweepExpiredInvites marks pending invites whose deadline has passed
// as expired. Idempotent, safe to run repeatedly.
//
// Returns the number of rows updated.
func SweepExpiredInvites(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	query := `
		UPDATE board_invites
		SET status = 'expired'
		WHERE status = 'pending'
		  AND expires_at <= NOW()
	`

	tag, err := pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired invites: %w", err)
	}

	return tag.RowsAffected(), nil
}

// RunSweepJob executes the invite sweep and logs the result.
// This is the main entry point called by the cron scheduler.
func RunSweepJob(ctx context.Context, pool *pgxpool.Pool) error {
	startTime := time.Now()

	expired, err := SweepExpiredInvites(ctx, pool)
	if err != nil {
		log.Error().Err(err).Msg("Failed to sweep expired invites")
		return fmt.Errorf("invite sweep failed: %w", err)
	}

	log.Info().
		Int64("invites_expired", expired).
		Dur("duration", time.Since(startTime)).
		Msg("Invite sweep completed")

	return nil
}
