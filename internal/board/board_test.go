package board

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/raibo/raiboard/internal/collab"
	"github.com/raibo/raiboard/internal/geometry"
	"github.com/stretchr/testify/require"
)

func newTestBoard(t *testing.T) (*Board, uuid.UUID) {
	t.Helper()
	owner := uuid.New()
	b := New(owner, "Living room", "moodboard", false, time.Now())
	return b, owner
}

func addCollaborator(t *testing.T, b *Board, role collab.Role) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, b.Collaborators.Add(id, "user", "", role, time.Now()))
	return id
}

func TestNew_Defaults(t *testing.T) {
	b, owner := newTestBoard(t)

	require.Equal(t, owner, b.OwnerID)
	require.Equal(t, Settings{
		GridSize:     20,
		ShowGrid:     true,
		AllowOverlap: false,
		MinZoom:      0.5,
		MaxZoom:      3,
	}, b.Settings)
	require.Empty(t, b.Elements)
	require.Empty(t, b.Collaborators)
	require.Equal(t, b.CreatedAt, b.UpdatedAt)
}

func TestRoleOf(t *testing.T) {
	b, owner := newTestBoard(t)
	editor := addCollaborator(t, b, collab.RoleEditor)

	require.Equal(t, collab.RoleOwner, b.RoleOf(owner))
	require.Equal(t, collab.RoleEditor, b.RoleOf(editor))
	require.Equal(t, collab.Role(""), b.RoleOf(uuid.New()))
}

func TestCan_PublicBoardReadableByAnyone(t *testing.T) {
	b, _ := newTestBoard(t)
	stranger := uuid.New()

	require.False(t, b.Can(stranger, collab.ActionViewBoard))
	require.False(t, b.Can(uuid.Nil, collab.ActionViewBoard))

	b.IsPublic = true
	require.True(t, b.Can(stranger, collab.ActionViewBoard))
	require.True(t, b.Can(uuid.Nil, collab.ActionViewBoard))
	require.False(t, b.Can(stranger, collab.ActionEditElements))
}

func TestPlaceProduct_ScenarioOverlap(t *testing.T) {
	b, owner := newTestBoard(t)
	now := time.Now()
	chair := ProductInfo{ProductID: "p-1", ProductName: "Chair", ProductPrice: 49.90}

	p1, err := b.PlaceProduct(owner, chair, geometry.Point{X: 0, Y: 0}, geometry.Size{Width: 100, Height: 100}, now)
	require.NoError(t, err)
	require.Equal(t, 1, p1.ZIndex)

	_, err = b.PlaceProduct(owner, chair, geometry.Point{X: 50, Y: 50}, geometry.Size{Width: 100, Height: 100}, now)
	require.ErrorIs(t, err, ErrOverlap)

	p2, err := b.PlaceProduct(owner, chair, geometry.Point{X: 200, Y: 0}, geometry.Size{Width: 100, Height: 100}, now)
	require.NoError(t, err)
	require.Equal(t, 2, p2.ZIndex)
}

func TestPlaceProduct_SnapsToGrid(t *testing.T) {
	b, owner := newTestBoard(t)

	el, err := b.PlaceProduct(owner, ProductInfo{ProductID: "p"}, geometry.Point{X: 27, Y: 53}, geometry.Size{Width: 100, Height: 100}, time.Now())
	require.NoError(t, err)
	require.Equal(t, geometry.Point{X: 20, Y: 60}, el.Position)
}

func TestPlaceProduct_PermissionGate(t *testing.T) {
	b, _ := newTestBoard(t)
	viewer := addCollaborator(t, b, collab.RoleViewer)
	stranger := uuid.New()
	now := time.Now()

	_, err := b.PlaceProduct(viewer, ProductInfo{ProductID: "p"}, geometry.Point{}, geometry.Size{Width: 10, Height: 10}, now)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = b.PlaceProduct(stranger, ProductInfo{ProductID: "p"}, geometry.Point{}, geometry.Size{Width: 10, Height: 10}, now)
	require.ErrorIs(t, err, ErrForbidden)

	editor := addCollaborator(t, b, collab.RoleEditor)
	_, err = b.PlaceProduct(editor, ProductInfo{ProductID: "p"}, geometry.Point{}, geometry.Size{Width: 10, Height: 10}, now)
	require.NoError(t, err)
}

func TestPlaceText_Defaults(t *testing.T) {
	b, owner := newTestBoard(t)
	now := time.Now()

	heading, err := b.PlaceText(owner, TextHeading, geometry.Point{X: 0, Y: 0}, now)
	require.NoError(t, err)
	require.Equal(t, geometry.Size{Width: 200, Height: 50}, heading.Size)
	require.Equal(t, KindText, heading.Kind)
	require.Empty(t, heading.Text.Content)

	paragraph, err := b.PlaceText(owner, TextParagraph, geometry.Point{X: 0, Y: 200}, now)
	require.NoError(t, err)
	require.Equal(t, geometry.Size{Width: 200, Height: 100}, paragraph.Size)

	_, err = b.PlaceText(owner, TextKind("caption"), geometry.Point{X: 500, Y: 0}, now)
	require.ErrorIs(t, err, ErrInvalidPatch)
}

func TestPlaceText_ViewerForbidden(t *testing.T) {
	b, _ := newTestBoard(t)
	viewer := addCollaborator(t, b, collab.RoleViewer)

	_, err := b.PlaceText(viewer, TextHeading, geometry.Point{}, time.Now())
	require.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateElement_MoveResizeContent(t *testing.T) {
	b, owner := newTestBoard(t)
	now := time.Now()

	txt, err := b.PlaceText(owner, TextParagraph, geometry.Point{X: 0, Y: 0}, now)
	require.NoError(t, err)
	id := txt.ID

	content := "Velvet and walnut"
	pos := geometry.Point{X: 400, Y: 400}
	size := geometry.Size{Width: 300, Height: 120}
	err = b.UpdateElement(owner, id, ElementPatch{Position: &pos, Size: &size, Content: &content}, now)
	require.NoError(t, err)

	got := b.Elements.Find(id)
	require.Equal(t, pos, got.Position)
	require.Equal(t, size, got.Size)
	require.Equal(t, content, got.Text.Content)
}

func TestUpdateElement_TextFieldsOnProductRejected(t *testing.T) {
	b, owner := newTestBoard(t)
	now := time.Now()

	prod, err := b.PlaceProduct(owner, ProductInfo{ProductID: "p"}, geometry.Point{}, geometry.Size{Width: 100, Height: 100}, now)
	require.NoError(t, err)

	content := "nope"
	err = b.UpdateElement(owner, prod.ID, ElementPatch{Content: &content}, now)
	require.ErrorIs(t, err, ErrInvalidPatch)
}

func TestUpdateElement_RotationOnAnyKind(t *testing.T) {
	b, owner := newTestBoard(t)
	now := time.Now()

	prod, err := b.PlaceProduct(owner, ProductInfo{ProductID: "p"}, geometry.Point{}, geometry.Size{Width: 100, Height: 100}, now)
	require.NoError(t, err)

	rot := 45.0
	require.NoError(t, b.UpdateElement(owner, prod.ID, ElementPatch{Rotation: &rot}, now))
	require.Equal(t, 45.0, b.Elements.Find(prod.ID).Rotation)
}

func TestUpdateElement_NotFound(t *testing.T) {
	b, owner := newTestBoard(t)
	err := b.UpdateElement(owner, uuid.New(), ElementPatch{}, time.Now())
	require.ErrorIs(t, err, ErrElementNotFound)
}

func TestUpdateElement_MoveKeepsOverlapInvariant(t *testing.T) {
	b, owner := newTestBoard(t)
	now := time.Now()

	a, err := b.PlaceProduct(owner, ProductInfo{ProductID: "a"}, geometry.Point{X: 0, Y: 0}, geometry.Size{Width: 100, Height: 100}, now)
	require.NoError(t, err)
	_, err = b.PlaceProduct(owner, ProductInfo{ProductID: "b"}, geometry.Point{X: 200, Y: 0}, geometry.Size{Width: 100, Height: 100}, now)
	require.NoError(t, err)

	pos := geometry.Point{X: 200, Y: 0}
	err = b.UpdateElement(owner, a.ID, ElementPatch{Position: &pos}, now)
	require.ErrorIs(t, err, ErrOverlap)
	require.Equal(t, geometry.Point{X: 0, Y: 0}, b.Elements.Find(a.ID).Position)
}

func TestUpdateSettings(t *testing.T) {
	b, owner := newTestBoard(t)
	editor := addCollaborator(t, b, collab.RoleEditor)
	now := time.Now()

	grid := 10
	require.ErrorIs(t, b.UpdateSettings(editor, SettingsPatch{GridSize: &grid}, now), ErrForbidden)

	require.NoError(t, b.UpdateSettings(owner, SettingsPatch{GridSize: &grid}, now))
	require.Equal(t, 10, b.Settings.GridSize)

	bad := 0
	require.ErrorIs(t, b.UpdateSettings(owner, SettingsPatch{GridSize: &bad}, now), ErrInvalidSettings)
	require.Equal(t, 10, b.Settings.GridSize)

	minZoom, maxZoom := 2.0, 1.0
	err := b.UpdateSettings(owner, SettingsPatch{MinZoom: &minZoom, MaxZoom: &maxZoom}, now)
	require.ErrorIs(t, err, ErrInvalidSettings)
}

func TestSetCollaboratorRole_OwnerOnly(t *testing.T) {
	b, owner := newTestBoard(t)
	viewer := addCollaborator(t, b, collab.RoleViewer)
	otherViewer := addCollaborator(t, b, collab.RoleViewer)
	now := time.Now()

	// A viewer can never promote another viewer.
	err := b.SetCollaboratorRole(otherViewer, viewer, collab.RoleEditor, now)
	require.ErrorIs(t, err, ErrForbidden)

	// Editors cannot manage collaborators either.
	editor := addCollaborator(t, b, collab.RoleEditor)
	err = b.SetCollaboratorRole(editor, viewer, collab.RoleEditor, now)
	require.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, b.SetCollaboratorRole(owner, viewer, collab.RoleEditor, now))
	require.Equal(t, collab.RoleEditor, b.Collaborators.RoleOf(viewer))
}

func TestOwnerImmutable(t *testing.T) {
	b, owner := newTestBoard(t)
	editor := addCollaborator(t, b, collab.RoleEditor)
	now := time.Now()

	require.ErrorIs(t, b.SetCollaboratorRole(owner, owner, collab.RoleViewer, now), ErrOwnerImmutable)
	require.ErrorIs(t, b.RemoveCollaborator(editor, owner, now), ErrOwnerImmutable)
	require.ErrorIs(t, b.RemoveCollaborator(owner, owner, now), ErrOwnerImmutable)
	require.Equal(t, collab.RoleOwner, b.RoleOf(owner))
}

func TestRemoveCollaborator_SelfLeave(t *testing.T) {
	b, owner := newTestBoard(t)
	editor := addCollaborator(t, b, collab.RoleEditor)
	viewer := addCollaborator(t, b, collab.RoleViewer)
	now := time.Now()

	// A collaborator cannot remove someone else.
	err := b.RemoveCollaborator(editor, viewer, now)
	require.ErrorIs(t, err, ErrForbidden)

	// But may leave the board themselves.
	require.NoError(t, b.RemoveCollaborator(editor, editor, now))
	require.Nil(t, b.Collaborators.Find(editor))

	// And the owner can remove anyone.
	require.NoError(t, b.RemoveCollaborator(owner, viewer, now))
	require.Nil(t, b.Collaborators.Find(viewer))
}
