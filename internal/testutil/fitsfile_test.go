package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFITSBuilder_BlockAligned(t *testing.T) {
	raw := NewFITS(-64, 2, 2).Comment("a").Samples(1, 2, 3, 4).Bytes()

	require.Len(t, raw, 2*blockSize)
	assert.Equal(t, "SIMPLE  =                    T", string(raw[:30]))
	assert.Equal(t, "COMMENT a", string(raw[5*cardSize:5*cardSize+9]))
	assert.Equal(t, "END", string(raw[6*cardSize:6*cardSize+3]))
}

func TestFITSBuilder_Truncate(t *testing.T) {
	raw := NewFITS(16, 2).Samples(1, 2).TruncateData().Bytes()
	assert.Len(t, raw, blockSize+3)
}

func TestRamp(t *testing.T) {
	assert.Equal(t, []float64{1, 10, 10, 100}, Ramp(2, 2))
}
