package render

import (
	"errors"
	"log/slog"
	"math"

	"github.com/roach88/fitsview/internal/fits"
)

// ErrNotDrawable is returned when the data is not a non-empty 2D array.
var ErrNotDrawable = errors.New("data is not a non-empty 2D image")

// Field is a normalized intensity field with the shape of its source.
// Values are in [0,1] for well-formed input and may be NaN or infinite
// otherwise.
type Field struct {
	Width  int
	Height int
	values []float64
}

// At returns the intensity at (x, y).
func (f *Field) At(x, y int) float64 {
	return f.values[y*f.Width+x]
}

// Values returns a copy of the intensities in storage order.
func (f *Field) Values() []float64 {
	return append([]float64(nil), f.values...)
}

// Diagnostics describes one normalization pass. It is meant for logs, not
// for a second normalization.
type Diagnostics struct {
	LogMin     float64 // min of log10(samples)
	LogMax     float64 // max of log10(samples)
	Min        float64 // min of the rescaled field
	Max        float64 // max of the rescaled field
	NonFinite  int     // intensities that are NaN or infinite
	Degenerate bool    // NonFinite > 0
}

// Normalize log-scales data and rescales it linearly to [0,1].
//
// The source container is not modified. A constant image (max == min) or
// one with non-positive samples produces non-finite intensities; the
// result is still returned and Diagnostics.Degenerate is set.
func Normalize(data *fits.Data) (*Field, Diagnostics, error) {
	if data == nil {
		return nil, Diagnostics{}, ErrNotDrawable
	}
	shape := data.Shape()
	if len(shape) != 2 || data.Len() == 0 {
		return nil, Diagnostics{}, ErrNotDrawable
	}

	values := data.Values()
	for i, v := range values {
		values[i] = math.Log10(v)
	}

	var diag Diagnostics
	diag.LogMin, diag.LogMax = extremes(values)
	slog.Debug("log10 extremes", "min", diag.LogMin, "max", diag.LogMax)

	span := diag.LogMax - diag.LogMin
	for i, v := range values {
		values[i] = (v - diag.LogMin) / span
	}

	diag.Min, diag.Max = extremes(values)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			diag.NonFinite++
		}
	}
	diag.Degenerate = diag.NonFinite > 0
	slog.Debug("scaled extremes", "min", diag.Min, "max", diag.Max)

	if diag.Degenerate {
		slog.Warn("degenerate image: intensities will be clamped",
			"non_finite", diag.NonFinite,
			"samples", len(values),
			"log_min", diag.LogMin,
			"log_max", diag.LogMax,
		)
	}

	return &Field{Width: shape[0], Height: shape[1], values: values}, diag, nil
}

// extremes folds min and max starting from +Inf and -Inf. NaN compares
// false against everything, so it never moves either extreme.
func extremes(values []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
