package collab

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrAlreadyCollaborator is returned when a user already on the
	// roster is added again.
	ErrAlreadyCollaborator = errors.New("user is already a collaborator")

	// ErrNotCollaborator is returned when a roster operation targets
	// a user who is not on it.
	ErrNotCollaborator = errors.New("user is not a collaborator")
)

// Roster is the collaborator list of one board. The owner is not a
// member; ownership is carried on the board itself.
type Roster []Collaborator

// Find returns the collaborator with the given user id, or nil.
func (r Roster) Find(userID uuid.UUID) *Collaborator {
	for idx := range r {
		if r[idx].UserID == userID {
			return &r[idx]
		}
	}
	return nil
}

// RoleOf returns the user's role, or "" when the user is not on the
// roster.
func (r Roster) RoleOf(userID uuid.UUID) Role {
	if c := r.Find(userID); c != nil {
		return c.Role
	}
	return ""
}

// Add appends a collaborator with the given role.
func (r *Roster) Add(userID uuid.UUID, userName, avatar string, role Role, now time.Time) error {
	if !role.IsValid() {
		return ErrInvalidRole
	}
	if r.Find(userID) != nil {
		return ErrAlreadyCollaborator
	}
	*r = append(*r, Collaborator{
		UserID:     userID,
		UserName:   userName,
		UserAvatar: avatar,
		Role:       role,
		JoinedAt:   now,
	})
	return nil
}

// Remove deletes the collaborator with the given user id.
func (r *Roster) Remove(userID uuid.UUID) error {
	for idx := range *r {
		if (*r)[idx].UserID == userID {
			*r = append((*r)[:idx], (*r)[idx+1:]...)
			return nil
		}
	}
	return ErrNotCollaborator
}

// SetRole changes a collaborator's role.
func (r Roster) SetRole(userID uuid.UUID, role Role) error {
	if !role.IsValid() {
		return ErrInvalidRole
	}
	c := r.Find(userID)
	if c == nil {
		return ErrNotCollaborator
	}
	c.Role = role
	return nil
}
