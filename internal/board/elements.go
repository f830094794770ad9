package board

import (
	"github.com/google/uuid"
	"github.com/raibo/raiboard/internal/geometry"
)

// Layer names the two explicit restacking moves.
type Layer string

const (
	LayerFront Layer = "front"
	LayerBack  Layer = "back"
)

// IsValid reports whether l is a known layer move.
func (l Layer) IsValid() bool {
	return l == LayerFront || l == LayerBack
}

// Elements is the element collection of one board. All mutations are
// all-or-nothing: a rejected geometry leaves the collection untouched.
// Z-index gaps are permitted; only relative order matters.
type Elements []Element

// Find returns the element with the given id, or nil.
func (els Elements) Find(id uuid.UUID) *Element {
	for i := range els {
		if els[i].ID == id {
			return &els[i]
		}
	}
	return nil
}

func (els Elements) zIndices() []int {
	zs := make([]int, len(els))
	for i := range els {
		zs[i] = els[i].ZIndex
	}
	return zs
}

// overlapsAny reports whether bounds intersects any element other
// than exclude. The test is symmetric: only final geometry matters,
// not insertion order.
func (els Elements) overlapsAny(bounds geometry.Rect, exclude uuid.UUID) bool {
	for i := range els {
		if els[i].ID == exclude {
			continue
		}
		if geometry.Intersects(bounds, els[i].Bounds()) {
			return true
		}
	}
	return false
}

// Add places a new element, assigning it a fresh id and a z-index one
// above the current top. When allowOverlap is false the candidate's
// bounding box must not intersect any existing element.
func (els *Elements) Add(e Element, allowOverlap bool) (*Element, error) {
	if !e.Size.Valid() {
		return nil, ErrInvalidGeometry
	}
	if !allowOverlap && els.overlapsAny(e.Bounds(), uuid.Nil) {
		return nil, ErrOverlap
	}
	e.ID = uuid.New()
	e.ZIndex = geometry.NextZIndex(els.zIndices())
	*els = append(*els, e)
	return &(*els)[len(*els)-1], nil
}

// Move repositions an element, re-checking the overlap policy with
// the element's existing size. On violation the position is left
// unchanged.
func (els Elements) Move(id uuid.UUID, pos geometry.Point, allowOverlap bool) error {
	el := els.Find(id)
	if el == nil {
		return ErrElementNotFound
	}
	if !allowOverlap {
		candidate := geometry.Rect{Position: pos, Size: el.Size}
		if els.overlapsAny(candidate, id) {
			return ErrOverlap
		}
	}
	el.Position = pos
	return nil
}

// Resize changes an element's size under the same contract as Move.
func (els Elements) Resize(id uuid.UUID, size geometry.Size, allowOverlap bool) error {
	el := els.Find(id)
	if el == nil {
		return ErrElementNotFound
	}
	if !size.Valid() {
		return ErrInvalidGeometry
	}
	if !allowOverlap {
		candidate := geometry.Rect{Position: el.Position, Size: size}
		if els.overlapsAny(candidate, id) {
			return ErrOverlap
		}
	}
	el.Size = size
	return nil
}

// SetLayer brings an element to the front (max+1) or sends it to the
// back (min-1). No sibling's z-index is touched.
func (els Elements) SetLayer(id uuid.UUID, layer Layer) error {
	el := els.Find(id)
	if el == nil {
		return ErrElementNotFound
	}
	if !layer.IsValid() {
		return ErrInvalidPatch
	}
	if layer == LayerFront {
		el.ZIndex = geometry.NextZIndex(els.zIndices())
	} else {
		el.ZIndex = geometry.MinZIndex(els.zIndices()) - 1
	}
	return nil
}

// Remove deletes an element. Remaining z-indices are not renumbered.
func (els *Elements) Remove(id uuid.UUID) error {
	for i := range *els {
		if (*els)[i].ID == id {
			*els = append((*els)[:i], (*els)[i+1:]...)
			return nil
		}
	}
	return ErrElementNotFound
}
