package render

import (
	"context"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRasterSurface_CartesianMapping(t *testing.T) {
	s := NewRasterSurface(4, 4)
	reg := NewRegistry()
	reg.Allocate("c", s)

	_, err := NewRenderer(reg).Render(context.Background(), Request{
		SurfaceID: "c",
		Data:      mustData(t, []int{2, 2}, 1, 10, 100, 1000),
		Shape:     []int{2, 2},
	})
	require.NoError(t, err)

	frame := s.Frame()
	// logical (0,0) is bottom-left
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, frame.RGBAAt(0, 3))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, frame.RGBAAt(1, 2))
	// logical (1,0) bottom-right
	assert.Equal(t, color.RGBA{85, 85, 85, 255}, frame.RGBAAt(3, 3))
	// logical (0,1) top-left
	assert.Equal(t, color.RGBA{170, 170, 170, 255}, frame.RGBAAt(0, 0))
	// logical (1,1) top-right
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, frame.RGBAAt(3, 0))
}

func TestRasterSurface_PresentPublishes(t *testing.T) {
	s := NewRasterSurface(2, 2)
	require.NoError(t, s.Clear(color.White))

	assert.Equal(t, color.RGBA{}, s.Frame().RGBAAt(0, 0), "nothing presented yet")

	require.NoError(t, s.Present())
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, s.Frame().RGBAAt(0, 0))
	assert.Equal(t, 1, s.Frames())
}

func TestRasterSurface_Coordinates(t *testing.T) {
	s := NewRasterSurface(6, 4)

	assert.ErrorIs(t, s.FillRect(0, 0, 1, 1, color.White), ErrNoCoordinates)
	assert.ErrorIs(t, s.SetCoordinates(0, 2), ErrUnmappableCoords)
	assert.ErrorIs(t, s.SetCoordinates(4, 4), ErrUnmappableCoords)
	assert.ErrorIs(t, s.SetCoordinates(12, 4), ErrUnmappableCoords)
	require.NoError(t, s.SetCoordinates(3, 2))

	// clipped to the coordinate range
	require.NoError(t, s.FillRect(2, 1, 5, 5, color.White))
	require.NoError(t, s.Present())
	frame := s.Frame()
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, frame.RGBAAt(5, 0))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, frame.RGBAAt(4, 1))
	assert.Equal(t, color.RGBA{}, frame.RGBAAt(3, 0))
	assert.Equal(t, color.RGBA{}, frame.RGBAAt(5, 2))
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Surface("a")
	assert.ErrorIs(t, err, ErrSurfaceNotFound)

	s := NewRasterSurface(1, 1)
	reg.Allocate("a", s)
	got, err := reg.Surface("a")
	require.NoError(t, err)
	assert.Same(t, s, got)

	reg.Release("a")
	_, err = reg.Surface("a")
	assert.ErrorIs(t, err, ErrSurfaceNotFound)
}
