// Package canon produces canonical JSON (RFC 8785 key ordering, NFC strings,
// no HTML escaping, no floats) and domain-separated SHA-256 digests over it.
//
// HeaderDigest gives every decoded FITS header a stable identity that does
// not depend on card padding or on how a writer quoted its values. The
// journal stores it so repeated sessions on the same file can be grouped.
package canon
