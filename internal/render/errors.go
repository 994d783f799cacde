package render

import (
	"errors"
	"fmt"
)

// RenderErrorCode categorizes render failures.
type RenderErrorCode string

const (
	// ErrCodeShapeMismatch indicates the request shape disagrees with the data.
	ErrCodeShapeMismatch RenderErrorCode = "SHAPE_MISMATCH"

	// ErrCodeSurfaceMissing indicates no surface is registered under the id.
	ErrCodeSurfaceMissing RenderErrorCode = "SURFACE_MISSING"

	// ErrCodeContextUnavailable indicates the surface could not be cleared.
	ErrCodeContextUnavailable RenderErrorCode = "CONTEXT_UNAVAILABLE"

	// ErrCodeCoordinateSetup indicates the coordinate system could not be built.
	ErrCodeCoordinateSetup RenderErrorCode = "COORDINATE_SETUP"

	// ErrCodeDrawFailed indicates a rectangle could not be drawn.
	ErrCodeDrawFailed RenderErrorCode = "DRAW_FAILED"

	// ErrCodePresentFailed indicates the finished frame could not be presented.
	ErrCodePresentFailed RenderErrorCode = "PRESENT_FAILED"

	// ErrCodeCancelled indicates the context was cancelled mid-draw.
	ErrCodeCancelled RenderErrorCode = "CANCELLED"
)

// RenderError is returned by Renderer.Render. Rectangles drawn before the
// failure are not rolled back, but nothing is presented.
type RenderError struct {
	Code      RenderErrorCode
	SurfaceID string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	msg := fmt.Sprintf("%s: %s (surface=%s)", e.Code, e.Message, e.SurfaceID)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying surface error.
func (e *RenderError) Unwrap() error {
	return e.Err
}

func newRenderError(code RenderErrorCode, surfaceID, message string, err error) *RenderError {
	return &RenderError{Code: code, SurfaceID: surfaceID, Message: message, Err: err}
}

// Code returns the RenderErrorCode of err, or "" if err is not a RenderError.
func Code(err error) RenderErrorCode {
	var re *RenderError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsShapeMismatch reports whether err rejected the request before drawing.
func IsShapeMismatch(err error) bool {
	return Code(err) == ErrCodeShapeMismatch
}

// IsSurfaceError reports whether err came from the drawing surface.
func IsSurfaceError(err error) bool {
	switch Code(err) {
	case ErrCodeSurfaceMissing, ErrCodeContextUnavailable, ErrCodeCoordinateSetup,
		ErrCodeDrawFailed, ErrCodePresentFailed:
		return true
	}
	return false
}
