package board

import "errors"

var (
	// ErrForbidden is returned when the actor's role does not allow
	// the attempted action.
	ErrForbidden = errors.New("actor lacks permission for this action")

	// ErrBoardNotFound is returned when a board id does not resolve.
	ErrBoardNotFound = errors.New("board not found")

	// ErrElementNotFound is returned when an element id does not
	// resolve on the target board.
	ErrElementNotFound = errors.New("element not found")

	// ErrInviteNotFound is returned when an invite id does not
	// resolve.
	ErrInviteNotFound = errors.New("invite not found")

	// ErrOverlap is returned when a placement or move would intersect
	// an existing element while the board disallows overlap.
	ErrOverlap = errors.New("element would overlap an existing element")

	// ErrInvalidSettings is returned for a malformed settings patch.
	ErrInvalidSettings = errors.New("invalid board settings")

	// ErrInvalidGeometry is returned for a non-positive element size.
	ErrInvalidGeometry = errors.New("element size must be positive")

	// ErrInvalidPatch is returned when a patch mixes fields that do
	// not apply to the target element kind.
	ErrInvalidPatch = errors.New("patch does not apply to this element kind")

	// ErrOwnerImmutable is returned when an operation would remove or
	// demote the board owner.
	ErrOwnerImmutable = errors.New("board owner cannot be removed or demoted")
)
