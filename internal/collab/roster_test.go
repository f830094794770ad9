package collab

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRoster_AddFindRemove(t *testing.T) {
	var r Roster
	now := time.Now()
	bob := uuid.New()

	require.NoError(t, r.Add(bob, "bob", "", RoleEditor, now))
	require.ErrorIs(t, r.Add(bob, "bob", "", RoleViewer, now), ErrAlreadyCollaborator)

	c := r.Find(bob)
	require.NotNil(t, c)
	require.Equal(t, RoleEditor, c.Role)
	require.Equal(t, RoleEditor, r.RoleOf(bob))

	require.NoError(t, r.Remove(bob))
	require.ErrorIs(t, r.Remove(bob), ErrNotCollaborator)
	require.Equal(t, Role(""), r.RoleOf(bob))
}

func TestRoster_AddRejectsOwnerRole(t *testing.T) {
	var r Roster
	err := r.Add(uuid.New(), "eve", "", RoleOwner, time.Now())
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestRoster_SetRole(t *testing.T) {
	var r Roster
	bob := uuid.New()
	require.NoError(t, r.Add(bob, "bob", "", RoleViewer, time.Now()))

	require.NoError(t, r.SetRole(bob, RoleEditor))
	require.Equal(t, RoleEditor, r.RoleOf(bob))

	require.ErrorIs(t, r.SetRole(bob, RoleOwner), ErrInvalidRole)
	require.ErrorIs(t, r.SetRole(uuid.New(), RoleEditor), ErrNotCollaborator)
}

func TestRole_PermissionMatrix(t *testing.T) {
	all := []Action{
		ActionViewBoard, ActionEditElements, ActionUpdateSettings,
		ActionUpdateBoard, ActionDeleteBoard, ActionInvite,
		ActionRevokeInvite, ActionManageCollaborators,
	}

	for _, action := range all {
		require.True(t, RoleOwner.Can(action), "owner should pass %s", action)
	}

	require.True(t, RoleEditor.Can(ActionViewBoard))
	require.True(t, RoleEditor.Can(ActionEditElements))
	require.True(t, RoleEditor.Can(ActionInvite))
	require.True(t, RoleEditor.Can(ActionRevokeInvite))
	require.False(t, RoleEditor.Can(ActionUpdateSettings))
	require.False(t, RoleEditor.Can(ActionManageCollaborators))
	require.False(t, RoleEditor.Can(ActionDeleteBoard))

	for _, action := range all {
		if action == ActionViewBoard {
			require.True(t, RoleViewer.Can(action))
			continue
		}
		require.False(t, RoleViewer.Can(action), "viewer should fail %s", action)
	}

	require.False(t, Role("").Can(ActionViewBoard))
}
