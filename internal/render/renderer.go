package render

import (
	"context"
	"image/color"
	"log/slog"
	"slices"

	"github.com/roach88/fitsview/internal/fits"
)

// DefaultBackground is the clear colour used when none is configured.
var DefaultBackground color.Color = color.Black

// Request is a single draw: which surface, which data, and the shape the
// caller believes the data has. It does not outlive one Render call.
type Request struct {
	SurfaceID string
	Data      *fits.Data
	Shape     []int
}

// Renderer draws normalized images onto surfaces found through a locator.
type Renderer struct {
	surfaces   SurfaceLocator
	background color.Color
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithBackground sets the colour the surface is cleared to.
func WithBackground(c color.Color) Option {
	return func(r *Renderer) {
		r.background = c
	}
}

// NewRenderer creates a Renderer.
func NewRenderer(surfaces SurfaceLocator, opts ...Option) *Renderer {
	r := &Renderer{
		surfaces:   surfaces,
		background: DefaultBackground,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render draws req.Data on the surface req.SurfaceID.
//
// The shape is validated before the surface is touched. The surface is
// cleared on every call so repeated renders never accumulate, every pixel
// is drawn exactly once as a unit rectangle, and Present is called once at
// the end. Any failure returns a *RenderError.
func (r *Renderer) Render(ctx context.Context, req Request) (Diagnostics, error) {
	w, h, err := checkShape(req)
	if err != nil {
		return Diagnostics{}, err
	}

	field, diag, err := Normalize(req.Data)
	if err != nil {
		return Diagnostics{}, newRenderError(ErrCodeShapeMismatch, req.SurfaceID, "data is not drawable", err)
	}

	surface, err := r.surfaces.Surface(req.SurfaceID)
	if err != nil {
		return diag, newRenderError(ErrCodeSurfaceMissing, req.SurfaceID, "cannot find surface", err)
	}
	if err := surface.Clear(r.background); err != nil {
		return diag, newRenderError(ErrCodeContextUnavailable, req.SurfaceID, "cannot clear surface", err)
	}
	if err := surface.SetCoordinates(w, h); err != nil {
		return diag, newRenderError(ErrCodeCoordinateSetup, req.SurfaceID, "cannot build coordinate system", err)
	}

	for y := 0; y < h; y++ {
		if err := ctx.Err(); err != nil {
			return diag, newRenderError(ErrCodeCancelled, req.SurfaceID, "render cancelled", err)
		}
		for x := 0; x < w; x++ {
			if err := surface.FillRect(x, y, x+1, y+1, Grey(field.At(x, y))); err != nil {
				return diag, newRenderError(ErrCodeDrawFailed, req.SurfaceID, "cannot draw pixel", err)
			}
		}
	}

	if err := surface.Present(); err != nil {
		return diag, newRenderError(ErrCodePresentFailed, req.SurfaceID, "cannot present surface", err)
	}

	slog.Debug("rendered image", "surface", req.SurfaceID, "width", w, "height", h, "non_finite", diag.NonFinite)
	return diag, nil
}

// checkShape accepts only a positive 2D shape equal to the data's own.
func checkShape(req Request) (w, h int, err error) {
	if req.Data == nil {
		return 0, 0, newRenderError(ErrCodeShapeMismatch, req.SurfaceID, "no data", nil)
	}
	if len(req.Shape) != 2 {
		return 0, 0, newRenderError(ErrCodeShapeMismatch, req.SurfaceID, "shape must be 2D", nil)
	}
	if !slices.Equal(req.Shape, req.Data.Shape()) {
		return 0, 0, newRenderError(ErrCodeShapeMismatch, req.SurfaceID, "shape does not match data axes", nil)
	}
	w, h = req.Shape[0], req.Shape[1]
	if w <= 0 || h <= 0 {
		return 0, 0, newRenderError(ErrCodeShapeMismatch, req.SurfaceID, "shape must be positive", nil)
	}
	return w, h, nil
}
