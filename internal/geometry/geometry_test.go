package geometry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapToGrid_RoundsToNearestMultiple(t *testing.T) {
	p, err := SnapToGrid(Point{X: 27, Y: -34}, 20)
	require.NoError(t, err)
	require.Equal(t, Point{X: 20, Y: -40}, p)

	p, err = SnapToGrid(Point{X: 30, Y: 50}, 20)
	require.NoError(t, err)
	require.Equal(t, Point{X: 40, Y: 60}, p)
}

func TestSnapToGrid_RejectsNonPositiveGrid(t *testing.T) {
	_, err := SnapToGrid(Point{X: 1, Y: 1}, 0)
	require.ErrorIs(t, err, ErrInvalidGridSize)

	_, err = SnapToGrid(Point{X: 1, Y: 1}, -5)
	require.ErrorIs(t, err, ErrInvalidGridSize)
}

func TestIntersects_Overlapping(t *testing.T) {
	a := Rect{Position: Point{0, 0}, Size: Size{100, 100}}
	b := Rect{Position: Point{50, 50}, Size: Size{100, 100}}
	require.True(t, Intersects(a, b))
	require.True(t, Intersects(b, a))
}

func TestIntersects_TouchingEdgesDoNotIntersect(t *testing.T) {
	a := Rect{Position: Point{0, 0}, Size: Size{100, 100}}
	b := Rect{Position: Point{100, 0}, Size: Size{100, 100}}
	require.False(t, Intersects(a, b))
	require.False(t, Intersects(b, a))

	c := Rect{Position: Point{0, 100}, Size: Size{100, 100}}
	require.False(t, Intersects(a, c))
}

func TestIntersects_Disjoint(t *testing.T) {
	a := Rect{Position: Point{0, 0}, Size: Size{100, 100}}
	b := Rect{Position: Point{200, 0}, Size: Size{100, 100}}
	require.False(t, Intersects(a, b))
}

func TestIntersects_NegativeCoordinates(t *testing.T) {
	a := Rect{Position: Point{-50, -50}, Size: Size{100, 100}}
	b := Rect{Position: Point{0, 0}, Size: Size{100, 100}}
	require.True(t, Intersects(a, b))
}

func TestClampZoom(t *testing.T) {
	require.Equal(t, 0.5, ClampZoom(0.1, 0.5, 3))
	require.Equal(t, 3.0, ClampZoom(10, 0.5, 3))
	require.Equal(t, 1.5, ClampZoom(1.5, 0.5, 3))
}

func TestNextZIndex(t *testing.T) {
	require.Equal(t, 1, NextZIndex(nil))
	require.Equal(t, 4, NextZIndex([]int{1, 3, 2}))
	require.Equal(t, 8, NextZIndex([]int{7, -2, 0}))
}

func TestMinZIndex(t *testing.T) {
	require.Equal(t, 0, MinZIndex(nil))
	require.Equal(t, -2, MinZIndex([]int{7, -2, 0}))
}
