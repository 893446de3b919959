package quadmosaic

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	t.Run("even box", func(t *testing.T) {
		quads := Split(image.Rect(0, 0, 4, 4))
		require.Equal(t, image.Rect(0, 0, 2, 2), quads[TopLeft])
		require.Equal(t, image.Rect(2, 0, 4, 2), quads[TopRight])
		require.Equal(t, image.Rect(0, 2, 2, 4), quads[BottomLeft])
		require.Equal(t, image.Rect(2, 2, 4, 4), quads[BottomRight])
	})

	t.Run("odd box floors the midpoint", func(t *testing.T) {
		quads := Split(image.Rect(1, 1, 6, 4))
		require.Equal(t, image.Rect(1, 1, 3, 2), quads[TopLeft])
		require.Equal(t, image.Rect(3, 1, 6, 2), quads[TopRight])
		require.Equal(t, image.Rect(1, 2, 3, 4), quads[BottomLeft])
		require.Equal(t, image.Rect(3, 2, 6, 4), quads[BottomRight])
	})

	t.Run("single column", func(t *testing.T) {
		quads := Split(image.Rect(3, 0, 4, 2))
		require.True(t, quads[TopLeft].Empty())
		require.True(t, quads[BottomLeft].Empty())
		require.Equal(t, image.Rect(3, 0, 4, 1), quads[TopRight])
		require.Equal(t, image.Rect(3, 1, 4, 2), quads[BottomRight])
	})

	t.Run("quadrants tile the box", func(t *testing.T) {
		for w := 1; w <= 9; w++ {
			for h := 1; h <= 9; h++ {
				box := image.Rect(2, 5, 2+w, 5+h)
				quads := Split(box)
				requireTiled(t, box, quads[:])
			}
		}
	})
}

func TestQuadrantString(t *testing.T) {
	require.Equal(t, "top-left", TopLeft.String())
	require.Equal(t, "bottom-right", BottomRight.String())
	require.Equal(t, "unknown", Quadrant(7).String())
}

// requireTiled checks that boxes cover parent exactly, without overlapping.
func requireTiled(t *testing.T, parent image.Rectangle, boxes []image.Rectangle) {
	t.Helper()

	covered := 0
	for i, a := range boxes {
		if a.Empty() {
			continue
		}
		require.True(t, a.In(parent), "%v is outside %v", a, parent)
		covered += a.Dx() * a.Dy()
		for _, b := range boxes[i+1:] {
			require.True(t, a.Intersect(b).Empty(), "%v overlaps %v", a, b)
		}
	}
	require.Equal(t, parent.Dx()*parent.Dy(), covered, "boxes do not cover %v", parent)
}
