package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/fitsview/internal/fits"
)

// DomainHeader separates header digests from any other hash in the system.
const DomainHeader = "fitsview/header/v1"

// Hash computes SHA256(domain || 0x00 || data) as lowercase hex.
func Hash(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// HeaderObject is the canonical form of a header that HeaderDigest hashes.
func HeaderObject(h *fits.Header) map[string]any {
	keywords := make([]any, 0, h.Len())
	for _, kw := range h.Keywords() {
		name, value, comment := fits.Row(kw)
		keywords = append(keywords, map[string]any{
			"kind":    fits.Kind(kw),
			"name":    name,
			"value":   value,
			"comment": comment,
		})
	}
	return map[string]any{
		"simple":   h.Simple(),
		"bitpix":   int(h.Bitpix()),
		"axes":     h.Axes(),
		"keywords": keywords,
	}
}

// HeaderDigest returns the content-addressed identity of h.
func HeaderDigest(h *fits.Header) (string, error) {
	data, err := Marshal(HeaderObject(h))
	if err != nil {
		return "", fmt.Errorf("header digest: %w", err)
	}
	return Hash(DomainHeader, data), nil
}
