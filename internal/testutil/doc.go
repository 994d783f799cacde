// Package testutil provides deterministic fixtures shared by fitsview tests:
// FITS byte streams built card by card and sequential read tokens.
package testutil
