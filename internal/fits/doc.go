// Package fits holds the in-memory model of a decoded FITS primary HDU and
// the decoder that produces it.
//
// The model has three parts:
//   - Header: the mandatory cards (SIMPLE, BITPIX, NAXIS, NAXISn) as typed
//     fields plus every other card as an ordered Keyword sequence
//   - Keyword: a sealed sum type (Value, History, Comment, Continue)
//   - Data: an immutable float64 sample array with its shape
//
// # Decoding
//
// Decode is the ingestion boundary. It never fails loudly: a byte slice that
// is not a complete FITS primary HDU yields (nil, false), which callers treat
// as an ordinary "not a FITS file" outcome. Parse exposes the same logic with
// a typed *FormatError for diagnostics.
//
// Axis ordering follows the file: Axes()[0] is NAXIS1, the fastest varying
// dimension, so the sample at (x, y) of a 2D image lives at y*Axes()[0]+x.
package fits
