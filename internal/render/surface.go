package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"
)

// Surface is an addressable 2D drawing target.
//
// Calls arrive in the order Clear, SetCoordinates, FillRect..., Present.
// Rectangle coordinates are in the logical system set by SetCoordinates.
type Surface interface {
	Clear(c color.Color) error
	SetCoordinates(width, height int) error
	FillRect(x0, y0, x1, y1 int, c color.Color) error
	Present() error
}

// SurfaceLocator finds a surface allocated by the UI layer.
type SurfaceLocator interface {
	Surface(id string) (Surface, error)
}

// Surface errors.
var (
	ErrSurfaceNotFound  = errors.New("surface not found")
	ErrNoCoordinates    = errors.New("coordinate system not established")
	ErrUnmappableCoords = errors.New("surface size is not a whole multiple of the coordinate range")
)

// Registry is an in-process SurfaceLocator keyed by id.
//
// Thread-safety: safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	surfaces map[string]Surface
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{surfaces: make(map[string]Surface)}
}

// Allocate registers s under id, replacing any previous surface.
func (r *Registry) Allocate(id string, s Surface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.surfaces[id] = s
}

// Surface implements SurfaceLocator.
func (r *Registry) Surface(id string) (Surface, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.surfaces[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSurfaceNotFound, id)
	}
	return s, nil
}

// Release forgets the surface registered under id.
func (r *Registry) Release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.surfaces, id)
}

// RasterSurface is a double-buffered RGBA surface.
//
// Drawing goes to a back buffer; Present copies it to the front buffer that
// Frame exposes. The coordinate system is cartesian: (0,0) is the
// bottom-left logical cell and y grows upward. Each logical cell covers
// scaleX x scaleY pixels.
type RasterSurface struct {
	mu     sync.Mutex
	back   *image.RGBA
	front  *image.RGBA
	width  int // logical
	height int // logical
	scaleX int
	scaleY int
	frames int
}

// NewRasterSurface allocates a surface of width x height pixels.
func NewRasterSurface(width, height int) *RasterSurface {
	r := image.Rect(0, 0, width, height)
	return &RasterSurface{
		back:  image.NewRGBA(r),
		front: image.NewRGBA(r),
	}
}

// Bounds returns the pixel bounds.
func (s *RasterSurface) Bounds() image.Rectangle {
	return s.back.Bounds()
}

// Clear fills the back buffer with c.
func (s *RasterSurface) Clear(c color.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	draw.Draw(s.back, s.back.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return nil
}

// SetCoordinates maps [0,width) x [0,height) onto the pixel bounds.
func (s *RasterSurface) SetCoordinates(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("set coordinates %dx%d: %w", width, height, ErrUnmappableCoords)
	}
	b := s.back.Bounds()
	if b.Dx() < width || b.Dy() < height || b.Dx()%width != 0 || b.Dy()%height != 0 {
		return fmt.Errorf("set coordinates %dx%d on %dx%d pixels: %w", width, height, b.Dx(), b.Dy(), ErrUnmappableCoords)
	}
	s.width, s.height = width, height
	s.scaleX, s.scaleY = b.Dx()/width, b.Dy()/height
	return nil
}

// FillRect fills the logical rectangle [x0,x1) x [y0,y1), clipped to the
// coordinate range.
func (s *RasterSurface) FillRect(x0, y0, x1, y1 int, c color.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return ErrNoCoordinates
	}
	logical := image.Rect(x0, y0, x1, y1).Intersect(image.Rect(0, 0, s.width, s.height))
	if logical.Empty() {
		return nil
	}
	px := image.Rect(
		logical.Min.X*s.scaleX,
		(s.height-logical.Max.Y)*s.scaleY,
		logical.Max.X*s.scaleX,
		(s.height-logical.Min.Y)*s.scaleY,
	)
	draw.Draw(s.back, px, image.NewUniform(c), image.Point{}, draw.Src)
	return nil
}

// Present publishes the back buffer.
func (s *RasterSurface) Present() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy(s.front.Pix, s.back.Pix)
	s.frames++
	return nil
}

// Frame returns a copy of the last presented frame.
func (s *RasterSurface) Frame() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := image.NewRGBA(s.front.Bounds())
	copy(out.Pix, s.front.Pix)
	return out
}

// Frames returns how many times Present has been called.
func (s *RasterSurface) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}
