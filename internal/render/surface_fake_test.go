package render

import (
	"errors"
	"image/color"
)

// recordingSurface remembers every call so tests can inspect the draw list.
type recordingSurface struct {
	clears   int
	presents int
	coords   [2]int
	rects    []rect
	failOn   string
}

type rect struct {
	x0, y0, x1, y1 int
	c              HSL
}

var errInjected = errors.New("injected surface failure")

func (s *recordingSurface) Clear(c color.Color) error {
	if s.failOn == "clear" {
		return errInjected
	}
	s.clears++
	s.rects = nil
	return nil
}

func (s *recordingSurface) SetCoordinates(w, h int) error {
	if s.failOn == "coords" {
		return errInjected
	}
	s.coords = [2]int{w, h}
	return nil
}

func (s *recordingSurface) FillRect(x0, y0, x1, y1 int, c color.Color) error {
	if s.failOn == "fill" {
		return errInjected
	}
	s.rects = append(s.rects, rect{x0, y0, x1, y1, c.(HSL)})
	return nil
}

func (s *recordingSurface) Present() error {
	if s.failOn == "present" {
		return errInjected
	}
	s.presents++
	return nil
}

func (s *recordingSurface) lightness() []float64 {
	out := make([]float64, len(s.rects))
	for i, r := range s.rects {
		out[i] = r.c.L
	}
	return out
}
