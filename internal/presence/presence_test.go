package presence

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T) (*Tracker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTracker(client, 30*time.Second), mr
}

func TestHeartbeatAndOnline(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()
	boardID := uuid.New()
	alice := uuid.New()
	bob := uuid.New()

	require.NoError(t, tracker.Heartbeat(ctx, boardID, alice))
	require.NoError(t, tracker.Heartbeat(ctx, boardID, bob))

	online, err := tracker.Online(ctx, boardID)
	require.NoError(t, err)
	require.ElementsMatch(t, []uuid.UUID{alice, bob}, online)
}

func TestDisconnect(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()
	boardID := uuid.New()
	alice := uuid.New()

	require.NoError(t, tracker.Heartbeat(ctx, boardID, alice))
	require.NoError(t, tracker.Disconnect(ctx, boardID, alice))

	online, err := tracker.Online(ctx, boardID)
	require.NoError(t, err)
	require.Empty(t, online)
}

func TestOnline_TrimsStaleEntries(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()
	boardID := uuid.New()
	alice := uuid.New()

	require.NoError(t, tracker.Heartbeat(ctx, boardID, alice))

	// Read a minute into the future, past the staleness window.
	tracker.now = func() time.Time { return time.Now().Add(time.Minute) }

	online, err := tracker.Online(ctx, boardID)
	require.NoError(t, err)
	require.Empty(t, online)
}

func TestOnline_EmptyBoard(t *testing.T) {
	tracker, _ := newTestTracker(t)

	online, err := tracker.Online(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Empty(t, online)
}

func TestHeartbeat_LastWriteWins(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()
	boardID := uuid.New()
	alice := uuid.New()

	require.NoError(t, tracker.Heartbeat(ctx, boardID, alice))
	require.NoError(t, tracker.Heartbeat(ctx, boardID, alice))

	online, err := tracker.Online(ctx, boardID)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{alice}, online)
}
