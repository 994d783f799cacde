package fits

import (
	"fmt"
	"strconv"
)

// Bitpix is the BITPIX sample storage code.
type Bitpix int

// Valid BITPIX values.
const (
	Uint8   Bitpix = 8
	Int16   Bitpix = 16
	Int32   Bitpix = 32
	Int64   Bitpix = 64
	Float32 Bitpix = -32
	Float64 Bitpix = -64
)

// Valid reports whether b is one of the six standard codes.
func (b Bitpix) Valid() bool {
	switch b {
	case Uint8, Int16, Int32, Int64, Float32, Float64:
		return true
	}
	return false
}

// BytesPerSample returns |BITPIX|/8.
func (b Bitpix) BytesPerSample() int {
	if b < 0 {
		return int(-b) / 8
	}
	return int(b) / 8
}

// String renders the code the way it appears in the header, with a type hint.
func (b Bitpix) String() string {
	switch b {
	case Uint8:
		return "8 (uint8)"
	case Int16:
		return "16 (int16)"
	case Int32:
		return "32 (int32)"
	case Int64:
		return "64 (int64)"
	case Float32:
		return "-32 (float32)"
	case Float64:
		return "-64 (float64)"
	default:
		return strconv.Itoa(int(b)) + " (invalid)"
	}
}

// Header is the decoded metadata block of a primary HDU.
//
// A Header is read-only once built; accessors return copies so callers can
// not alter the decoded values.
type Header struct {
	simple   bool
	bitpix   Bitpix
	axes     []int
	keywords []Keyword
}

// NewHeader builds a Header. naxis is implied by len(axes); every axis must
// be positive, every keyword non-nil and bitpix must be a standard code.
func NewHeader(simple bool, bitpix Bitpix, axes []int, keywords []Keyword) (*Header, error) {
	if !bitpix.Valid() {
		return nil, fmt.Errorf("new header: invalid bitpix %d", int(bitpix))
	}
	if len(axes) > MaxAxes {
		return nil, fmt.Errorf("new header: naxis %d exceeds %d", len(axes), MaxAxes)
	}
	for i, n := range axes {
		if n <= 0 {
			return nil, fmt.Errorf("new header: NAXIS%d must be positive, got %d", i+1, n)
		}
	}
	for i, k := range keywords {
		if k == nil {
			return nil, fmt.Errorf("new header: keyword %d is nil", i)
		}
	}

	h := &Header{
		simple:   simple,
		bitpix:   bitpix,
		axes:     append([]int(nil), axes...),
		keywords: append([]Keyword(nil), keywords...),
	}
	return h, nil
}

// MaxAxes is the FITS limit on NAXIS.
const MaxAxes = 999

// Simple reports the SIMPLE conformance flag.
func (h *Header) Simple() bool { return h.simple }

// Bitpix returns the sample storage code.
func (h *Header) Bitpix() Bitpix { return h.bitpix }

// Naxis returns the number of axes.
func (h *Header) Naxis() int { return len(h.axes) }

// Axes returns a copy of the axis sizes, NAXIS1 first.
func (h *Header) Axes() []int {
	return append([]int(nil), h.axes...)
}

// Keywords returns the non-mandatory cards in file order.
func (h *Header) Keywords() []Keyword {
	return append([]Keyword(nil), h.keywords...)
}

// Len returns the number of keywords.
func (h *Header) Len() int { return len(h.keywords) }

// Lookup returns the first Value keyword named key.
func (h *Header) Lookup(key string) (Value, bool) {
	for _, kw := range h.keywords {
		if v, ok := kw.(Value); ok && v.Key == key {
			return v, true
		}
	}
	return Value{}, false
}
