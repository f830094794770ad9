package collab

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInviteExpired is returned when an invite is answered or read
	// past its deadline.
	ErrInviteExpired = errors.New("invite expired")

	// ErrInvalidTransition is returned on an invite state-machine
	// violation, e.g. revoking a non-pending invite.
	ErrInvalidTransition = errors.New("invalid invite transition")

	// ErrEmailMismatch is returned when a principal other than the
	// invitee tries to answer an invite.
	ErrEmailMismatch = errors.New("invite email does not match user")

	// ErrInvalidRole is returned when an invite names a role that
	// cannot be granted.
	ErrInvalidRole = errors.New("invalid collaborator role")
)

// NormalizeEmail validates and canonicalizes an invitee address.
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", errors.New("email is required")
	}
	if len(email) > 320 {
		return "", errors.New("email is too long")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", errors.New("invalid email address")
	}
	return email, nil
}

// NewInvite creates a pending invite for email with the given role,
// expiring after ttl.
func NewInvite(boardID uuid.UUID, inviterName, email string, role Role, ttl time.Duration, now time.Time) (*Invite, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	return &Invite{
		ID:           uuid.New(),
		BoardID:      boardID,
		InviterName:  inviterName,
		InviteeEmail: email,
		Role:         role,
		Status:       InvitePending,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}, nil
}

// EffectiveStatus resolves the stored status against the wall clock.
// Expiry is evaluated lazily: a stored pending status past the
// deadline reads as expired even if nothing has rewritten the row yet.
func (i *Invite) EffectiveStatus(now time.Time) InviteStatus {
	if i.Status == InvitePending && !now.Before(i.ExpiresAt) {
		return InviteExpired
	}
	return i.Status
}

// markExpiredIfDue flips a past-due pending invite to expired.
// Idempotent: repeated calls keep the status at expired.
func (i *Invite) markExpiredIfDue(now time.Time) bool {
	if i.EffectiveStatus(now) == InviteExpired {
		i.Status = InviteExpired
		return true
	}
	return false
}

// Respond applies the invitee's answer. Only a pending, unexpired
// invite can transition; a past-due invite is marked expired as a
// side effect and ErrInviteExpired is returned no matter the answer.
// All transitions are one-way.
func (i *Invite) Respond(accept bool, now time.Time) error {
	if i.markExpiredIfDue(now) {
		return ErrInviteExpired
	}
	if i.Status != InvitePending {
		return ErrInvalidTransition
	}
	if accept {
		i.Status = InviteAccepted
	} else {
		i.Status = InviteDeclined
	}
	return nil
}

// Revoke withdraws a pending invite. Any other stored or effective
// state, including a second revoke, is an invalid transition.
func (i *Invite) Revoke(now time.Time) error {
	if i.markExpiredIfDue(now) {
		return ErrInvalidTransition
	}
	if i.Status != InvitePending {
		return ErrInvalidTransition
	}
	i.Status = InviteRevoked
	return nil
}

// MatchesInvitee reports whether email is the invitee this invite was
// addressed to.
func (i *Invite) MatchesInvitee(email string) bool {
	return strings.EqualFold(strings.TrimSpace(email), i.InviteeEmail)
}
