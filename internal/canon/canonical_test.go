package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fitsview/internal/fits"
)

func TestMarshal_SortedKeysNoHTMLEscape(t *testing.T) {
	got, err := Marshal(map[string]any{
		"b": 1,
		"a": "<x & y>",
		"c": []any{true, int64(-3)},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"<x & y>","b":1,"c":[true,-3]}`, string(got))
}

func TestMarshal_UTF16Ordering(t *testing.T) {
	// U+E000 sorts after U+1F600 in UTF-8 byte order but before it in UTF-16.
	got, err := Marshal(map[string]any{"\U0001F600": 1, "\ue000": 2})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":1,\"\ue000\":2}", string(got))
}

func TestMarshal_NFC(t *testing.T) {
	decomposed := "e\u0301"
	got, err := Marshal(decomposed)
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(got))
}

func TestMarshal_LineSeparatorsLiteral(t *testing.T) {
	got, err := Marshal("a\u2028b")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(got))

	got, err = Marshal(`a\u2028b`)
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(got))
}

func TestMarshal_Rejects(t *testing.T) {
	_, err := Marshal(1.5)
	assert.Error(t, err)
	_, err = Marshal(nil)
	assert.Error(t, err)
	_, err = Marshal(map[string]any{"x": struct{}{}})
	assert.Error(t, err)
}

func TestHeaderDigest_StableAndSensitive(t *testing.T) {
	h1, err := fits.NewHeader(true, fits.Int16, []int{2, 2}, []fits.Keyword{fits.Comment{Text: "a"}})
	require.NoError(t, err)
	h2, err := fits.NewHeader(true, fits.Int16, []int{2, 2}, []fits.Keyword{fits.Comment{Text: "a"}})
	require.NoError(t, err)
	h3, err := fits.NewHeader(true, fits.Int16, []int{2, 2}, []fits.Keyword{fits.History{Text: "a"}})
	require.NoError(t, err)

	d1, err := HeaderDigest(h1)
	require.NoError(t, err)
	d2, err := HeaderDigest(h2)
	require.NoError(t, err)
	d3, err := HeaderDigest(h3)
	require.NoError(t, err)

	assert.Len(t, d1, 64)
	assert.Equal(t, d1, d2)
	assert.NotEqual(t, d1, d3)
}

func TestHash_DomainSeparation(t *testing.T) {
	assert.NotEqual(t, Hash("a", []byte("bc")), Hash("ab", []byte("c")))
}
