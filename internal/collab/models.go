// Package collab owns the collaboration model of a board: the
// collaborator roster, role-based permissions, and the invite
// lifecycle. It is pure state-machine logic; persistence and
// transport live elsewhere.
package collab

import (
	"time"

	"github.com/google/uuid"
)

// Role is a collaborator's role on a board. The board owner is an
// implicit distinct role and is never stored in the roster.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// IsValid reports whether the role is one that can be granted to a
// collaborator. Owner is not grantable.
func (r Role) IsValid() bool {
	return r == RoleEditor || r == RoleViewer
}

// Action is a permission-checked operation on a board.
type Action string

const (
	ActionViewBoard           Action = "board.view"
	ActionEditElements        Action = "board.edit_elements"
	ActionUpdateSettings      Action = "board.update_settings"
	ActionUpdateBoard         Action = "board.update"
	ActionDeleteBoard         Action = "board.delete"
	ActionInvite              Action = "board.invite"
	ActionRevokeInvite        Action = "board.revoke_invite"
	ActionManageCollaborators Action = "board.manage_collaborators"
)

// Can reports whether a role is allowed to perform an action. The
// owner passes every check; editors may mutate elements and manage
// invites but not settings or other collaborators; viewers only read.
func (r Role) Can(action Action) bool {
	switch r {
	case RoleOwner:
		return true
	case RoleEditor:
		switch action {
		case ActionViewBoard, ActionEditElements, ActionInvite, ActionRevokeInvite:
			return true
		}
		return false
	case RoleViewer:
		return action == ActionViewBoard
	}
	return false
}

// Collaborator is a user with access to a board. IsOnline is an
// ephemeral presence flag filled in at read time; it is never
// persisted and never consulted for permission decisions.
type Collaborator struct {
	UserID     uuid.UUID `json:"user_id"`
	UserName   string    `json:"user_name"`
	UserAvatar string    `json:"user_avatar,omitempty"`
	Role       Role      `json:"role"`
	JoinedAt   time.Time `json:"joined_at"`
	IsOnline   bool      `json:"is_online"`
}

// InviteStatus is the stored state of an invite. A pending invite
// past its deadline reads as expired everywhere regardless of the
// stored value; see Invite.EffectiveStatus.
type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteDeclined InviteStatus = "declined"
	InviteExpired  InviteStatus = "expired"
	InviteRevoked  InviteStatus = "revoked"
)

// Invite grants a role on a board to an email address, valid until
// ExpiresAt. Invites reference their board by id but are not owned by
// it: a terminal invite remains a historical record after the board
// is gone.
type Invite struct {
	ID           uuid.UUID    `json:"id"`
	BoardID      uuid.UUID    `json:"board_id"`
	InviterName  string       `json:"inviter_name"`
	InviteeEmail string       `json:"invitee_email"`
	Role         Role         `json:"role"`
	Status       InviteStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	ExpiresAt    time.Time    `json:"expires_at"`
}
