package render

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fitsview/internal/fits"
)

func mustData(t *testing.T, shape []int, values ...float64) *fits.Data {
	t.Helper()
	d, err := fits.NewData(shape, values)
	require.NoError(t, err)
	return d
}

func TestNormalize_LogScaleScenario(t *testing.T) {
	data := mustData(t, []int{2, 2}, 1, 10, 100, 1000)

	field, diag, err := Normalize(data)
	require.NoError(t, err)

	assert.Equal(t, 2, field.Width)
	assert.Equal(t, 2, field.Height)
	assert.InDelta(t, 0.0, diag.LogMin, 1e-12)
	assert.InDelta(t, 3.0, diag.LogMax, 1e-12)
	assert.InDeltaSlice(t, []float64{0, 1.0 / 3, 2.0 / 3, 1}, field.Values(), 1e-9)
	assert.InDelta(t, 1.0/3, field.At(1, 0), 1e-9)
	assert.InDelta(t, 2.0/3, field.At(0, 1), 1e-9)
	assert.Equal(t, 0.0, diag.Min)
	assert.Equal(t, 1.0, diag.Max)
	assert.False(t, diag.Degenerate)
}

func TestNormalize_PositiveInputsSpanUnitInterval(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 20; trial++ {
		w, h := 1+rng.Intn(12), 1+rng.Intn(12)
		values := make([]float64, w*h)
		for i := range values {
			values[i] = math.Pow(10, rng.Float64()*8-4)
		}
		if w*h == 1 {
			continue // a single pixel is constant by definition
		}
		field, _, err := Normalize(mustData(t, []int{w, h}, values...))
		require.NoError(t, err)

		out := field.Values()
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, v := range out {
			require.GreaterOrEqual(t, v, 0.0)
			require.LessOrEqual(t, v, 1.0)
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
		assert.Equal(t, 0.0, lo)
		assert.Equal(t, 1.0, hi)
	}
}

func TestNormalize_ConstantImageIsDegenerate(t *testing.T) {
	values := make([]float64, 16)
	for i := range values {
		values[i] = 5
	}

	field, diag, err := Normalize(mustData(t, []int{4, 4}, values...))
	require.NoError(t, err)

	assert.True(t, diag.Degenerate)
	assert.Equal(t, 16, diag.NonFinite)
	for _, v := range field.Values() {
		assert.True(t, math.IsNaN(v))
	}
}

func TestNormalize_NaNDoesNotMoveExtremes(t *testing.T) {
	field, diag, err := Normalize(mustData(t, []int{2, 2}, -1, 1, 10, 100))
	require.NoError(t, err)

	assert.InDelta(t, 0.0, diag.LogMin, 1e-12)
	assert.InDelta(t, 2.0, diag.LogMax, 1e-12)
	assert.Equal(t, 1, diag.NonFinite)

	out := field.Values()
	assert.True(t, math.IsNaN(out[0]))
	assert.InDeltaSlice(t, []float64{0, 0.5, 1}, out[1:], 1e-9)
}

func TestNormalize_ZeroSamplePropagates(t *testing.T) {
	_, diag, err := Normalize(mustData(t, []int{2, 2}, 0, 1, 10, 100))
	require.NoError(t, err)

	assert.True(t, math.IsInf(diag.LogMin, -1))
	assert.True(t, diag.Degenerate)
	assert.Equal(t, 4, diag.NonFinite)
}

func TestNormalize_SourceUntouched(t *testing.T) {
	data := mustData(t, []int{2, 1}, 10, 100)
	_, _, err := Normalize(data)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 100}, data.Values())
}

func TestNormalize_NotDrawable(t *testing.T) {
	tests := []struct {
		name string
		data *fits.Data
	}{
		{"nil", nil},
		{"1d", mustData(t, []int{3}, 1, 2, 3)},
		{"3d", mustData(t, []int{1, 1, 2}, 1, 2)},
		{"empty", mustData(t, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Normalize(tt.data)
			assert.ErrorIs(t, err, ErrNotDrawable)
		})
	}
}
