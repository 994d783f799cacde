package render

import (
	"math"
)

// HSL is a colour in hue/saturation/lightness form. H is in degrees,
// S and L in [0,1]; out-of-range components are clamped on conversion.
type HSL struct {
	H, S, L float64
}

// Grey maps an intensity to a greyscale colour.
//
// Lightness is the intensity clamped into [0,1]. NaN and -Inf become 0,
// +Inf becomes 1, so a drawing surface never sees a non-finite component.
func Grey(intensity float64) HSL {
	return HSL{L: clampUnit(intensity)}
}

func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// RGBA implements color.Color. The colour is fully opaque.
func (c HSL) RGBA() (r, g, b, a uint32) {
	s, l := clampUnit(c.S), clampUnit(c.L)
	h := math.Mod(c.H, 360)
	if math.IsNaN(h) {
		h = 0
	}
	if h < 0 {
		h += 360
	}

	chroma := (1 - math.Abs(2*l-1)) * s
	x := chroma * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - chroma/2

	var rf, gf, bf float64
	switch {
	case h < 60:
		rf, gf, bf = chroma, x, 0
	case h < 120:
		rf, gf, bf = x, chroma, 0
	case h < 180:
		rf, gf, bf = 0, chroma, x
	case h < 240:
		rf, gf, bf = 0, x, chroma
	case h < 300:
		rf, gf, bf = x, 0, chroma
	default:
		rf, gf, bf = chroma, 0, x
	}

	return channel(rf + m), channel(gf + m), channel(bf + m), 0xffff
}

func channel(v float64) uint32 {
	return uint32(math.Round(clampUnit(v) * 0xffff))
}
