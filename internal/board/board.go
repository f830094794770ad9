package board

import (
	"time"

	"github.com/google/uuid"
	"github.com/raibo/raiboard/internal/collab"
	"github.com/raibo/raiboard/internal/geometry"
)

// Default sizes for freshly placed text blocks.
var textDefaultSizes = map[TextKind]geometry.Size{
	TextHeading:   {Width: 200, Height: 50},
	TextParagraph: {Width: 200, Height: 100},
}

// New creates a board with default settings and empty element and
// collaborator collections.
func New(ownerID uuid.UUID, name, description string, isPublic bool, now time.Time) *Board {
	return &Board{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		IsPublic:    isPublic,
		Settings:    DefaultSettings(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// RoleOf resolves a user's role on this board. The owner gets the
// implicit owner role; everyone else is looked up on the roster.
func (b *Board) RoleOf(userID uuid.UUID) collab.Role {
	if userID == b.OwnerID && userID != uuid.Nil {
		return collab.RoleOwner
	}
	return b.Collaborators.RoleOf(userID)
}

// Can reports whether the actor may perform the action. A public
// board is readable by any principal, including the anonymous one.
func (b *Board) Can(actorID uuid.UUID, action collab.Action) bool {
	if role := b.RoleOf(actorID); role != "" {
		return role.Can(action)
	}
	return b.IsPublic && action == collab.ActionViewBoard
}

func (b *Board) require(actorID uuid.UUID, action collab.Action) error {
	if !b.Can(actorID, action) {
		return ErrForbidden
	}
	return nil
}

func (b *Board) snap(p geometry.Point) (geometry.Point, error) {
	snapped, err := geometry.SnapToGrid(p, b.Settings.GridSize)
	if err != nil {
		return geometry.Point{}, ErrInvalidSettings
	}
	return snapped, nil
}

// PlaceProduct places a product card carrying the catalog snapshot
// the actor saw. Position is snapped to the grid before the overlap
// check.
func (b *Board) PlaceProduct(actorID uuid.UUID, product ProductInfo, pos geometry.Point, size geometry.Size, now time.Time) (*Element, error) {
	if err := b.require(actorID, collab.ActionEditElements); err != nil {
		return nil, err
	}
	pos, err := b.snap(pos)
	if err != nil {
		return nil, err
	}
	el, err := b.Elements.Add(Element{
		Kind:     KindProduct,
		Position: pos,
		Size:     size,
		Product:  &product,
	}, b.Settings.AllowOverlap)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt = now
	return el, nil
}

// PlaceText places an empty text block with the default size for its
// kind.
func (b *Board) PlaceText(actorID uuid.UUID, kind TextKind, pos geometry.Point, now time.Time) (*Element, error) {
	if err := b.require(actorID, collab.ActionEditElements); err != nil {
		return nil, err
	}
	size, ok := textDefaultSizes[kind]
	if !ok {
		return nil, ErrInvalidPatch
	}
	pos, err := b.snap(pos)
	if err != nil {
		return nil, err
	}
	el, err := b.Elements.Add(Element{
		Kind:     KindText,
		Position: pos,
		Size:     size,
		Text: &TextInfo{
			Kind:       kind,
			FontSize:   defaultFontSize(kind),
			FontWeight: defaultFontWeight(kind),
			Color:      "#000000",
		},
	}, b.Settings.AllowOverlap)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt = now
	return el, nil
}

func defaultFontSize(kind TextKind) int {
	if kind == TextHeading {
		return 24
	}
	return 14
}

func defaultFontWeight(kind TextKind) string {
	if kind == TextHeading {
		return "bold"
	}
	return "normal"
}

// UpdateElement applies a patch: position and size changes go through
// the geometry checks, text styling only applies to text elements.
// The patch is validated as a whole before anything is applied, so a
// rejected step leaves the element untouched.
func (b *Board) UpdateElement(actorID, elementID uuid.UUID, patch ElementPatch, now time.Time) error {
	if err := b.require(actorID, collab.ActionEditElements); err != nil {
		return err
	}
	el := b.Elements.Find(elementID)
	if el == nil {
		return ErrElementNotFound
	}
	if patch.hasTextFields() && el.Kind != KindText {
		return ErrInvalidPatch
	}
	if patch.Size != nil && !patch.Size.Valid() {
		return ErrInvalidGeometry
	}

	// Validate the final geometry before mutating.
	candidate := el.Bounds()
	if patch.Position != nil {
		snapped, err := b.snap(*patch.Position)
		if err != nil {
			return err
		}
		patch.Position = &snapped
		candidate.Position = snapped
	}
	if patch.Size != nil {
		candidate.Size = *patch.Size
	}
	if (patch.Position != nil || patch.Size != nil) && !b.Settings.AllowOverlap {
		if b.Elements.overlapsAny(candidate, elementID) {
			return ErrOverlap
		}
	}

	if patch.Position != nil {
		el.Position = *patch.Position
	}
	if patch.Size != nil {
		el.Size = *patch.Size
	}
	if patch.Rotation != nil {
		el.Rotation = *patch.Rotation
	}
	if el.Kind == KindText {
		if patch.Content != nil {
			el.Text.Content = *patch.Content
		}
		if patch.FontSize != nil {
			el.Text.FontSize = *patch.FontSize
		}
		if patch.FontWeight != nil {
			el.Text.FontWeight = *patch.FontWeight
		}
		if patch.Color != nil {
			el.Text.Color = *patch.Color
		}
	}
	b.UpdatedAt = now
	return nil
}

// SetElementLayer applies an explicit bring-to-front or send-to-back.
func (b *Board) SetElementLayer(actorID, elementID uuid.UUID, layer Layer, now time.Time) error {
	if err := b.require(actorID, collab.ActionEditElements); err != nil {
		return err
	}
	if err := b.Elements.SetLayer(elementID, layer); err != nil {
		return err
	}
	b.UpdatedAt = now
	return nil
}

// RemoveElement deletes an element.
func (b *Board) RemoveElement(actorID, elementID uuid.UUID, now time.Time) error {
	if err := b.require(actorID, collab.ActionEditElements); err != nil {
		return err
	}
	if err := b.Elements.Remove(elementID); err != nil {
		return err
	}
	b.UpdatedAt = now
	return nil
}

// UpdateSettings applies a settings patch. Owner only; the patched
// settings must still satisfy the invariants or nothing is applied.
func (b *Board) UpdateSettings(actorID uuid.UUID, patch SettingsPatch, now time.Time) error {
	if err := b.require(actorID, collab.ActionUpdateSettings); err != nil {
		return err
	}
	next := b.Settings
	if patch.GridSize != nil {
		next.GridSize = *patch.GridSize
	}
	if patch.ShowGrid != nil {
		next.ShowGrid = *patch.ShowGrid
	}
	if patch.AllowOverlap != nil {
		next.AllowOverlap = *patch.AllowOverlap
	}
	if patch.MinZoom != nil {
		next.MinZoom = *patch.MinZoom
	}
	if patch.MaxZoom != nil {
		next.MaxZoom = *patch.MaxZoom
	}
	if err := next.Validate(); err != nil {
		return err
	}
	b.Settings = next
	b.UpdatedAt = now
	return nil
}

// UpdateInfo changes the board's name, description, or visibility.
// Owner only.
func (b *Board) UpdateInfo(actorID uuid.UUID, patch InfoPatch, now time.Time) error {
	if err := b.require(actorID, collab.ActionUpdateBoard); err != nil {
		return err
	}
	if patch.Name != nil {
		b.Name = *patch.Name
	}
	if patch.Description != nil {
		b.Description = *patch.Description
	}
	if patch.IsPublic != nil {
		b.IsPublic = *patch.IsPublic
	}
	b.UpdatedAt = now
	return nil
}

// SetCollaboratorRole changes a collaborator's role. Owner only; the
// owner themselves can never be the target.
func (b *Board) SetCollaboratorRole(actorID, targetID uuid.UUID, role collab.Role, now time.Time) error {
	if err := b.require(actorID, collab.ActionManageCollaborators); err != nil {
		return err
	}
	if targetID == b.OwnerID {
		return ErrOwnerImmutable
	}
	if err := b.Collaborators.SetRole(targetID, role); err != nil {
		return err
	}
	b.UpdatedAt = now
	return nil
}

// RemoveCollaborator removes a user from the roster. The owner may
// remove anyone; a collaborator may remove only themselves (leaving
// the board). The owner can never be removed.
func (b *Board) RemoveCollaborator(actorID, targetID uuid.UUID, now time.Time) error {
	if targetID == b.OwnerID {
		return ErrOwnerImmutable
	}
	if actorID != targetID {
		if err := b.require(actorID, collab.ActionManageCollaborators); err != nil {
			return err
		}
	}
	if err := b.Collaborators.Remove(targetID); err != nil {
		return err
	}
	b.UpdatedAt = now
	return nil
}
