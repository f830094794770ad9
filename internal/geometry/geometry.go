// Package geometry holds the pure spatial rules for board elements:
// grid snapping, bounding-box intersection, zoom clamping, and z-index
// assignment. No I/O, no board state.
package geometry

import (
	"errors"
	"math"
)

// ErrInvalidGridSize is returned when a snap is requested with a
// non-positive grid size.
var ErrInvalidGridSize = errors.New("grid size must be positive")

// Point is a position in board space. Coordinates may be negative.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is the rendered extent of an element. Both dimensions must be
// positive for a placed element.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	Position Point
	Size     Size
}

// SnapToGrid rounds each coordinate of p to the nearest multiple of
// gridSize.
func SnapToGrid(p Point, gridSize int) (Point, error) {
	if gridSize <= 0 {
		return Point{}, ErrInvalidGridSize
	}
	g := float64(gridSize)
	return Point{
		X: math.Round(p.X/g) * g,
		Y: math.Round(p.Y/g) * g,
	}, nil
}

// Intersects reports whether two bounding boxes overlap with positive
// area. Touching edges do not count as an intersection.
func Intersects(a, b Rect) bool {
	if a.Position.X+a.Size.Width <= b.Position.X || b.Position.X+b.Size.Width <= a.Position.X {
		return false
	}
	if a.Position.Y+a.Size.Height <= b.Position.Y || b.Position.Y+b.Size.Height <= a.Position.Y {
		return false
	}
	return true
}

// ClampZoom clamps value into [min, max].
func ClampZoom(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// NextZIndex returns the z-index for a newly placed element: one above
// the current maximum, so the new element paints on top without
// renumbering siblings. Returns 1 when there are no siblings.
func NextZIndex(existing []int) int {
	if len(existing) == 0 {
		return 1
	}
	max := existing[0]
	for _, z := range existing[1:] {
		if z > max {
			max = z
		}
	}
	return max + 1
}

// MinZIndex returns the smallest z-index among existing, or 0 when
// empty. Used by send-to-back.
func MinZIndex(existing []int) int {
	if len(existing) == 0 {
		return 0
	}
	min := existing[0]
	for _, z := range existing[1:] {
		if z < min {
			min = z
		}
	}
	return min
}
