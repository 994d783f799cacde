package testutil

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

const (
	blockSize = 2880
	cardSize  = 80
)

// FITSBuilder assembles a primary HDU byte stream for tests.
//
//	b := testutil.NewFITS(-64, 2, 2).
//		Comment("a").
//		Value("X", "1", "").
//		History("b").
//		Samples(1, 10, 100, 1000)
//	raw := b.Bytes()
type FITSBuilder struct {
	simple  string
	bitpix  int
	axes    []int
	cards   []string
	samples []float64
	trimEnd bool
}

// NewFITS starts a SIMPLE = T file with the given BITPIX and axes.
func NewFITS(bitpix int, axes ...int) *FITSBuilder {
	return &FITSBuilder{simple: "T", bitpix: bitpix, axes: axes}
}

// NotSimple sets SIMPLE = F.
func (b *FITSBuilder) NotSimple() *FITSBuilder {
	b.simple = "F"
	return b
}

// Value appends "KEY = value / comment". String values must carry their
// own quotes.
func (b *FITSBuilder) Value(key, value, comment string) *FITSBuilder {
	card := fmt.Sprintf("%-8s= %20s", key, value)
	if comment != "" {
		card += " / " + comment
	}
	b.cards = append(b.cards, card)
	return b
}

// Comment appends a COMMENT card.
func (b *FITSBuilder) Comment(text string) *FITSBuilder {
	b.cards = append(b.cards, "COMMENT "+text)
	return b
}

// History appends a HISTORY card.
func (b *FITSBuilder) History(text string) *FITSBuilder {
	b.cards = append(b.cards, "HISTORY "+text)
	return b
}

// Continue appends a CONTINUE card with a quoted value.
func (b *FITSBuilder) Continue(value, comment string) *FITSBuilder {
	card := "CONTINUE  '" + strings.ReplaceAll(value, "'", "''") + "'"
	if comment != "" {
		card += " / " + comment
	}
	b.cards = append(b.cards, card)
	return b
}

// Raw appends a card verbatim.
func (b *FITSBuilder) Raw(card string) *FITSBuilder {
	b.cards = append(b.cards, card)
	return b
}

// Samples sets the data array in storage order (NAXIS1 fastest). Values are
// converted to the builder's BITPIX.
func (b *FITSBuilder) Samples(values ...float64) *FITSBuilder {
	b.samples = values
	return b
}

// TruncateData drops the last data block padding and one sample so the
// stream is short by a few bytes.
func (b *FITSBuilder) TruncateData() *FITSBuilder {
	b.trimEnd = true
	return b
}

// Bytes renders the header blocks followed by the padded data blocks.
func (b *FITSBuilder) Bytes() []byte {
	var cards []string
	cards = append(cards,
		fmt.Sprintf("%-8s= %20s", "SIMPLE", b.simple),
		fmt.Sprintf("%-8s= %20d", "BITPIX", b.bitpix),
		fmt.Sprintf("%-8s= %20d", "NAXIS", len(b.axes)),
	)
	for i, n := range b.axes {
		cards = append(cards, fmt.Sprintf("%-8s= %20d", fmt.Sprintf("NAXIS%d", i+1), n))
	}
	cards = append(cards, b.cards...)
	cards = append(cards, "END")

	var out []byte
	for _, c := range cards {
		out = append(out, pad(c)...)
	}
	for len(out)%blockSize != 0 {
		out = append(out, ' ')
	}

	data := b.encodeSamples()
	if b.trimEnd && len(data) > 0 {
		return append(out, data[:len(data)-1]...)
	}
	out = append(out, data...)
	for len(out)%blockSize != 0 {
		out = append(out, 0)
	}
	return out
}

func (b *FITSBuilder) encodeSamples() []byte {
	width := b.bitpix / 8
	if width < 0 {
		width = -width
	}
	out := make([]byte, len(b.samples)*width)
	for i, v := range b.samples {
		p := out[i*width : (i+1)*width]
		switch b.bitpix {
		case 8:
			p[0] = uint8(v)
		case 16:
			binary.BigEndian.PutUint16(p, uint16(int16(v)))
		case 32:
			binary.BigEndian.PutUint32(p, uint32(int32(v)))
		case 64:
			binary.BigEndian.PutUint64(p, uint64(int64(v)))
		case -32:
			binary.BigEndian.PutUint32(p, math.Float32bits(float32(v)))
		case -64:
			binary.BigEndian.PutUint64(p, math.Float64bits(v))
		}
	}
	return out
}

func pad(card string) string {
	if len(card) > cardSize {
		return card[:cardSize]
	}
	return card + strings.Repeat(" ", cardSize-len(card))
}

// Ramp returns w*h samples equal to 10^(x+y), handy for log10 scaling tests.
func Ramp(w, h int) []float64 {
	out := make([]float64, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out = append(out, math.Pow(10, float64(x+y)))
		}
	}
	return out
}
