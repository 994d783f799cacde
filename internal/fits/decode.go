package fits

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// Layout constants of the FITS container.
const (
	BlockSize = 2880
	CardSize  = 80
)

// FormatErrorCode categorizes decode failures.
type FormatErrorCode string

const (
	// ErrCodeEmpty indicates a zero-length input.
	ErrCodeEmpty FormatErrorCode = "EMPTY"

	// ErrCodeTruncatedHeader indicates the header blocks are incomplete.
	ErrCodeTruncatedHeader FormatErrorCode = "TRUNCATED_HEADER"

	// ErrCodeNotSimple indicates the first card is not SIMPLE.
	ErrCodeNotSimple FormatErrorCode = "NOT_SIMPLE"

	// ErrCodeBadCard indicates a header card with non-ASCII content.
	ErrCodeBadCard FormatErrorCode = "BAD_CARD"

	// ErrCodeBadMandatory indicates a missing or malformed mandatory card.
	ErrCodeBadMandatory FormatErrorCode = "BAD_MANDATORY"

	// ErrCodeBadBitpix indicates an unsupported BITPIX value.
	ErrCodeBadBitpix FormatErrorCode = "BAD_BITPIX"

	// ErrCodeBadAxis indicates a non-positive or unparsable NAXISn.
	ErrCodeBadAxis FormatErrorCode = "BAD_AXIS"

	// ErrCodeMissingEnd indicates the header has no END card.
	ErrCodeMissingEnd FormatErrorCode = "MISSING_END"

	// ErrCodeTruncatedData indicates fewer data bytes than the axes require.
	ErrCodeTruncatedData FormatErrorCode = "TRUNCATED_DATA"
)

// FormatError describes why a byte slice is not a FITS primary HDU.
type FormatError struct {
	Code    FormatErrorCode
	Offset  int // byte offset of the offending card or block
	Message string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("%s at byte %d: %s", e.Code, e.Offset, e.Message)
}

func formatErr(code FormatErrorCode, offset int, format string, args ...any) *FormatError {
	return &FormatError{Code: code, Offset: offset, Message: fmt.Sprintf(format, args...)}
}

// Decode parses b as a FITS primary HDU.
//
// It returns (nil, false) for anything that is not a complete primary HDU,
// including empty input. Decode has no side effects beyond a debug log line.
func Decode(b []byte) (*File, bool) {
	f, err := Parse(b)
	if err != nil {
		slog.Debug("input is not a FITS file", "size", len(b), "error", err)
		return nil, false
	}
	return f, true
}

// Parse is Decode with the failure reason as a *FormatError.
func Parse(b []byte) (*File, error) {
	if len(b) == 0 {
		return nil, formatErr(ErrCodeEmpty, 0, "no bytes")
	}
	r := &cardReader{data: b}

	simple, err := r.mandatoryLogical("SIMPLE")
	if err != nil {
		return nil, err
	}

	bp, err := r.mandatoryInt("BITPIX", ErrCodeBadMandatory)
	if err != nil {
		return nil, err
	}
	bitpix := Bitpix(bp)
	if !bitpix.Valid() {
		return nil, formatErr(ErrCodeBadBitpix, r.pos-CardSize, "unsupported BITPIX %d", bp)
	}

	naxis, err := r.mandatoryInt("NAXIS", ErrCodeBadMandatory)
	if err != nil {
		return nil, err
	}
	if naxis < 0 || naxis > MaxAxes {
		return nil, formatErr(ErrCodeBadMandatory, r.pos-CardSize, "NAXIS %d out of range", naxis)
	}

	axes := make([]int, naxis)
	for i := range axes {
		n, err := r.mandatoryInt("NAXIS"+strconv.Itoa(i+1), ErrCodeBadAxis)
		if err != nil {
			return nil, err
		}
		if n <= 0 {
			return nil, formatErr(ErrCodeBadAxis, r.pos-CardSize, "NAXIS%d must be positive, got %d", i+1, n)
		}
		axes[i] = n
	}

	var keywords []Keyword
	for {
		card, err := r.next()
		if err != nil {
			return nil, err
		}
		if cardKey(card) == "END" {
			break
		}
		keywords = append(keywords, parseKeyword(card))
	}

	header, err := NewHeader(simple, bitpix, axes, keywords)
	if err != nil {
		return nil, formatErr(ErrCodeBadMandatory, 0, "%v", err)
	}

	dataStart := padded(r.pos)
	if dataStart > len(b) {
		return nil, formatErr(ErrCodeTruncatedHeader, r.pos, "header block ends at %d, input has %d bytes", dataStart, len(b))
	}

	n, err := sampleCount(axes, bitpix.BytesPerSample(), len(b)-dataStart, dataStart)
	if err != nil {
		return nil, err
	}
	size := n * bitpix.BytesPerSample()

	values := readSamples(b[dataStart:dataStart+size], bitpix, n)
	applyScaling(header, values)

	data, err := NewData(axes, values)
	if err != nil {
		return nil, err
	}
	return &File{Header: header, Data: data}, nil
}

// sampleCount multiplies the axes, rejecting any shape whose data would not
// fit in avail bytes before the product can overflow.
func sampleCount(axes []int, bps, avail, offset int) (int, error) {
	if len(axes) == 0 {
		return 0, nil
	}
	n := 1
	for i, a := range axes {
		if n > avail/bps/a {
			return 0, formatErr(ErrCodeTruncatedData, offset,
				"NAXIS%d = %d needs more than the %d data bytes present", i+1, a, avail)
		}
		n *= a
	}
	return n, nil
}

// padded rounds n up to a whole number of blocks.
func padded(n int) int {
	return (n + BlockSize - 1) / BlockSize * BlockSize
}

// cardReader walks the header one 80-byte card at a time.
type cardReader struct {
	data []byte
	pos  int
}

func (r *cardReader) next() (string, error) {
	if r.pos+CardSize > len(r.data) {
		if r.pos == 0 {
			return "", formatErr(ErrCodeTruncatedHeader, 0, "input shorter than one card")
		}
		return "", formatErr(ErrCodeMissingEnd, r.pos, "header has no END card")
	}
	raw := r.data[r.pos : r.pos+CardSize]
	for i, c := range raw {
		if c < 0x20 || c > 0x7e {
			return "", formatErr(ErrCodeBadCard, r.pos+i, "non-printable byte 0x%02x in header", c)
		}
	}
	card := string(raw)
	r.pos += CardSize
	return card, nil
}

func (r *cardReader) mandatory(key string, code FormatErrorCode) (string, error) {
	card, err := r.next()
	if err != nil {
		if fe, ok := err.(*FormatError); ok && key == "SIMPLE" {
			fe.Code = ErrCodeNotSimple
		}
		return "", err
	}
	if cardKey(card) != key || card[8:10] != "= " {
		if key == "SIMPLE" {
			code = ErrCodeNotSimple
		}
		return "", formatErr(code, r.pos-CardSize, "expected %s card, got %q", key, strings.TrimRight(card, " "))
	}
	v, _ := splitValue(card[10:])
	return v, nil
}

func (r *cardReader) mandatoryLogical(key string) (bool, error) {
	v, err := r.mandatory(key, ErrCodeNotSimple)
	if err != nil {
		return false, err
	}
	switch v {
	case "T":
		return true, nil
	case "F":
		return false, nil
	}
	return false, formatErr(ErrCodeNotSimple, r.pos-CardSize, "%s must be T or F, got %q", key, v)
}

func (r *cardReader) mandatoryInt(key string, code FormatErrorCode) (int, error) {
	v, err := r.mandatory(key, code)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, formatErr(code, r.pos-CardSize, "%s is not an integer: %q", key, v)
	}
	return n, nil
}

func cardKey(card string) string {
	return strings.TrimRight(card[:8], " ")
}

// parseKeyword maps one non-mandatory card onto its Keyword variant.
func parseKeyword(card string) Keyword {
	key := cardKey(card)
	switch key {
	case "", NameComment:
		return Comment{Text: strings.TrimRight(card[8:], " ")}
	case NameHistory:
		return History{Text: strings.TrimRight(card[8:], " ")}
	case NameContinue:
		v, c := splitValue(card[10:])
		return Continue{Key: NameContinue, Value: v, Comment: c}
	}
	if card[8:10] == "= " {
		v, c := splitValue(card[10:])
		return Value{Key: key, Value: v, Comment: c}
	}
	return Value{Key: key, Comment: strings.TrimSpace(card[8:])}
}

// splitValue separates the value field from the trailing "/ comment".
// Quoted strings are unescaped ('' becomes ') and lose trailing blanks.
func splitValue(s string) (value, comment string) {
	s = strings.TrimLeft(s, " ")
	if strings.HasPrefix(s, "'") {
		var b strings.Builder
		i := 1
		for i < len(s) {
			if s[i] == '\'' {
				if i+1 < len(s) && s[i+1] == '\'' {
					b.WriteByte('\'')
					i += 2
					continue
				}
				i++
				break
			}
			b.WriteByte(s[i])
			i++
		}
		rest := s[i:]
		if j := strings.IndexByte(rest, '/'); j >= 0 {
			comment = strings.TrimSpace(rest[j+1:])
		}
		return strings.TrimRight(b.String(), " "), comment
	}
	if j := strings.IndexByte(s, '/'); j >= 0 {
		return strings.TrimSpace(s[:j]), strings.TrimSpace(s[j+1:])
	}
	return strings.TrimSpace(s), ""
}

func readSamples(b []byte, bitpix Bitpix, n int) []float64 {
	out := make([]float64, n)
	bps := bitpix.BytesPerSample()
	for i := range out {
		p := b[i*bps : (i+1)*bps]
		switch bitpix {
		case Uint8:
			out[i] = float64(p[0])
		case Int16:
			out[i] = float64(int16(binary.BigEndian.Uint16(p)))
		case Int32:
			out[i] = float64(int32(binary.BigEndian.Uint32(p)))
		case Int64:
			out[i] = float64(int64(binary.BigEndian.Uint64(p)))
		case Float32:
			out[i] = float64(math.Float32frombits(binary.BigEndian.Uint32(p)))
		case Float64:
			out[i] = math.Float64frombits(binary.BigEndian.Uint64(p))
		}
	}
	return out
}

// applyScaling converts stored values to physical values using BZERO and
// BSCALE when the header carries them.
func applyScaling(h *Header, values []float64) {
	bscale, bzero := 1.0, 0.0
	if v, ok := h.Lookup("BSCALE"); ok {
		if f, err := strconv.ParseFloat(fortranFloat(v.Value), 64); err == nil {
			bscale = f
		}
	}
	if v, ok := h.Lookup("BZERO"); ok {
		if f, err := strconv.ParseFloat(fortranFloat(v.Value), 64); err == nil {
			bzero = f
		}
	}
	if bscale == 1 && bzero == 0 {
		return
	}
	for i, v := range values {
		values[i] = bzero + bscale*v
	}
}

// fortranFloat accepts the D exponent some writers still emit.
func fortranFloat(s string) string {
	return strings.NewReplacer("D", "E", "d", "e").Replace(s)
}
