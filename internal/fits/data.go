package fits

import (
	"errors"
	"fmt"
)

// Data is an immutable multi-dimensional array of float64 samples.
//
// Shape()[0] is the fastest varying dimension. An empty shape holds no
// samples.
type Data struct {
	shape  []int
	values []float64
}

// ErrShapeMismatch is returned when the sample count disagrees with the shape.
var ErrShapeMismatch = errors.New("sample count does not match shape")

// NewData copies shape and values into a new container.
func NewData(shape []int, values []float64) (*Data, error) {
	n := Product(shape)
	if len(values) != n {
		return nil, fmt.Errorf("new data: %w: shape %v holds %d samples, got %d", ErrShapeMismatch, shape, n, len(values))
	}
	return &Data{
		shape:  append([]int(nil), shape...),
		values: append([]float64(nil), values...),
	}, nil
}

// Product returns the number of samples described by shape.
// An empty shape describes zero samples (NAXIS = 0 means no data array).
func Product(shape []int) int {
	if len(shape) == 0 {
		return 0
	}
	n := 1
	for _, s := range shape {
		if s <= 0 {
			return 0
		}
		n *= s
	}
	return n
}

// Shape returns a copy of the dimension sizes.
func (d *Data) Shape() []int {
	return append([]int(nil), d.shape...)
}

// Len returns the total number of samples.
func (d *Data) Len() int { return len(d.values) }

// At returns the i-th sample in storage order.
func (d *Data) At(i int) float64 { return d.values[i] }

// At2 returns the sample at (x, y) of a 2D array.
func (d *Data) At2(x, y int) float64 { return d.values[y*d.shape[0]+x] }

// Values returns a copy of all samples in storage order.
func (d *Data) Values() []float64 {
	return append([]float64(nil), d.values...)
}

// File is a decoded primary HDU.
type File struct {
	Header *Header
	Data   *Data
}

// Drawable reports whether f holds a non-empty two-dimensional image.
func (f *File) Drawable() bool {
	return f != nil && f.Header.Naxis() == 2 && f.Data.Len() > 0
}
