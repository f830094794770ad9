// Package board owns the moodboard aggregate: the board entity, its
// element collection, and the mutation rules that keep both
// consistent. One Board is the unit of consistency; cross-board
// operations do not exist.
package board

import (
	"time"

	"github.com/google/uuid"
	"github.com/raibo/raiboard/internal/collab"
	"github.com/raibo/raiboard/internal/geometry"
)

// Settings are the per-board canvas rules.
type Settings struct {
	GridSize     int     `json:"grid_size"`
	ShowGrid     bool    `json:"show_grid"`
	AllowOverlap bool    `json:"allow_overlap"`
	MinZoom      float64 `json:"min_zoom"`
	MaxZoom      float64 `json:"max_zoom"`
}

// DefaultSettings returns the settings a new board starts with.
func DefaultSettings() Settings {
	return Settings{
		GridSize:     20,
		ShowGrid:     true,
		AllowOverlap: false,
		MinZoom:      0.5,
		MaxZoom:      3,
	}
}

// Validate checks the settings invariants: positive grid size and a
// non-empty zoom range.
func (s Settings) Validate() error {
	if s.GridSize <= 0 {
		return ErrInvalidSettings
	}
	if s.MinZoom <= 0 || s.MaxZoom <= 0 || s.MinZoom >= s.MaxZoom {
		return ErrInvalidSettings
	}
	return nil
}

// SettingsPatch is a partial settings update; nil fields are left
// unchanged.
type SettingsPatch struct {
	GridSize     *int     `json:"grid_size,omitempty"`
	ShowGrid     *bool    `json:"show_grid,omitempty"`
	AllowOverlap *bool    `json:"allow_overlap,omitempty"`
	MinZoom      *float64 `json:"min_zoom,omitempty"`
	MaxZoom      *float64 `json:"max_zoom,omitempty"`
}

// ElementKind tags the element union.
type ElementKind string

const (
	KindProduct ElementKind = "product"
	KindText    ElementKind = "text"
)

// TextKind distinguishes the two text block styles.
type TextKind string

const (
	TextHeading   TextKind = "heading"
	TextParagraph TextKind = "paragraph"
)

// ProductInfo is the denormalized catalog snapshot captured when a
// product is placed. It is intentionally never re-synced: it records
// what the user saw at placement time.
type ProductInfo struct {
	ProductID    string  `json:"product_id"`
	ProductName  string  `json:"product_name"`
	ProductImage string  `json:"product_image"`
	ProductPrice float64 `json:"product_price"`
}

// TextInfo is the payload of a text element.
type TextInfo struct {
	Kind       TextKind `json:"kind"`
	Content    string   `json:"content"`
	FontSize   int      `json:"font_size"`
	FontWeight string   `json:"font_weight"`
	Color      string   `json:"color"`
}

// Element is one placed item on the canvas. Kind selects which of
// Product/Text is set; exactly one is ever non-nil.
type Element struct {
	ID       uuid.UUID      `json:"id"`
	Kind     ElementKind    `json:"kind"`
	Position geometry.Point `json:"position"`
	Size     geometry.Size  `json:"size"`
	ZIndex   int            `json:"z_index"`
	Rotation float64        `json:"rotation,omitempty"`

	Product *ProductInfo `json:"product,omitempty"`
	Text    *TextInfo    `json:"text,omitempty"`
}

// Bounds returns the element's axis-aligned bounding box.
func (e *Element) Bounds() geometry.Rect {
	return geometry.Rect{Position: e.Position, Size: e.Size}
}

// ElementPatch is a partial element update; nil fields are left
// unchanged. Text styling fields only apply to text elements.
type ElementPatch struct {
	Position *geometry.Point `json:"position,omitempty"`
	Size     *geometry.Size  `json:"size,omitempty"`
	Rotation *float64        `json:"rotation,omitempty"`

	Content    *string `json:"content,omitempty"`
	FontSize   *int    `json:"font_size,omitempty"`
	FontWeight *string `json:"font_weight,omitempty"`
	Color      *string `json:"color,omitempty"`
}

func (p ElementPatch) hasTextFields() bool {
	return p.Content != nil || p.FontSize != nil || p.FontWeight != nil || p.Color != nil
}

// InfoPatch is a partial update of the board's metadata.
type InfoPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsPublic    *bool   `json:"is_public,omitempty"`
}

// Board is a named canvas owned by exactly one user. The owner is
// implicitly the highest-privileged collaborator and is never part of
// the roster.
type Board struct {
	ID            uuid.UUID     `json:"id"`
	OwnerID       uuid.UUID     `json:"owner_id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	IsPublic      bool          `json:"is_public"`
	Settings      Settings      `json:"settings"`
	Elements      Elements      `json:"elements"`
	Collaborators collab.Roster `json:"collaborators"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Clone returns a deep copy of the board. Stores hand out clones so
// callers never mutate shared state outside an update transaction.
func (b *Board) Clone() *Board {
	c := *b
	c.Elements = make(Elements, len(b.Elements))
	for i := range b.Elements {
		el := b.Elements[i]
		if el.Product != nil {
			p := *el.Product
			el.Product = &p
		}
		if el.Text != nil {
			t := *el.Text
			el.Text = &t
		}
		c.Elements[i] = el
	}
	c.Collaborators = make(collab.Roster, len(b.Collaborators))
	copy(c.Collaborators, b.Collaborators)
	return &c
}
