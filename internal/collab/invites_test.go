package collab

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newPendingInvite(t *testing.T, now time.Time) *Invite {
	t.Helper()
	inv, err := NewInvite(uuid.New(), "alice", "bob@example.com", RoleEditor, 7*24*time.Hour, now)
	require.NoError(t, err)
	require.Equal(t, InvitePending, inv.Status)
	return inv
}

func TestNewInvite_RejectsBadInput(t *testing.T) {
	now := time.Now()

	_, err := NewInvite(uuid.New(), "alice", "not-an-email", RoleEditor, time.Hour, now)
	require.Error(t, err)

	_, err = NewInvite(uuid.New(), "alice", "bob@example.com", RoleOwner, time.Hour, now)
	require.ErrorIs(t, err, ErrInvalidRole)

	_, err = NewInvite(uuid.New(), "alice", "bob@example.com", Role("admin"), time.Hour, now)
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestRespond_AcceptJustBeforeDeadline(t *testing.T) {
	now := time.Now()
	inv := newPendingInvite(t, now)

	err := inv.Respond(true, inv.ExpiresAt.Add(-time.Second))
	require.NoError(t, err)
	require.Equal(t, InviteAccepted, inv.Status)
}

func TestRespond_Decline(t *testing.T) {
	now := time.Now()
	inv := newPendingInvite(t, now)

	require.NoError(t, inv.Respond(false, now))
	require.Equal(t, InviteDeclined, inv.Status)
}

func TestRespond_PastDeadlineAlwaysExpired(t *testing.T) {
	now := time.Now()
	inv := newPendingInvite(t, now)
	late := inv.ExpiresAt.Add(time.Second)

	err := inv.Respond(true, late)
	require.ErrorIs(t, err, ErrInviteExpired)
	require.Equal(t, InviteExpired, inv.Status)

	// Repeated responses stay expired without further state change.
	err = inv.Respond(false, late.Add(time.Hour))
	require.ErrorIs(t, err, ErrInviteExpired)
	require.Equal(t, InviteExpired, inv.Status)
}

func TestRespond_ExactDeadlineIsExpired(t *testing.T) {
	now := time.Now()
	inv := newPendingInvite(t, now)

	err := inv.Respond(true, inv.ExpiresAt)
	require.ErrorIs(t, err, ErrInviteExpired)
}

func TestRespond_TransitionsAreOneWay(t *testing.T) {
	now := time.Now()
	inv := newPendingInvite(t, now)
	require.NoError(t, inv.Respond(true, now))

	err := inv.Respond(false, now)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, InviteAccepted, inv.Status)
}

func TestRevoke_OnlyWhilePending(t *testing.T) {
	now := time.Now()
	inv := newPendingInvite(t, now)

	require.NoError(t, inv.Revoke(now))
	require.Equal(t, InviteRevoked, inv.Status)

	err := inv.Revoke(now)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRevoke_PastDueInviteIsExpiredNotRevocable(t *testing.T) {
	now := time.Now()
	inv := newPendingInvite(t, now)

	err := inv.Revoke(inv.ExpiresAt.Add(time.Minute))
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, InviteExpired, inv.Status)
}

func TestEffectiveStatus_LazyExpiry(t *testing.T) {
	now := time.Now()
	inv := newPendingInvite(t, now)

	require.Equal(t, InvitePending, inv.EffectiveStatus(now))
	require.Equal(t, InviteExpired, inv.EffectiveStatus(inv.ExpiresAt))
	// The stored status is untouched by a read.
	require.Equal(t, InvitePending, inv.Status)
}

func TestMatchesInvitee(t *testing.T) {
	now := time.Now()
	inv := newPendingInvite(t, now)

	require.True(t, inv.MatchesInvitee("Bob@Example.com"))
	require.True(t, inv.MatchesInvitee("  bob@example.com "))
	require.False(t, inv.MatchesInvitee("eve@example.com"))
}
