package viewer

import (
	"errors"
	"fmt"
)

var (
	// ErrNothingToDraw is returned by Draw when no drawable image is loaded.
	ErrNothingToDraw = errors.New("no drawable image loaded")

	// ErrSessionClosed is returned when the session loop is not running.
	ErrSessionClosed = errors.New("session closed")

	// ErrSuperseded is returned by AwaitRead when a newer selection or a
	// clear replaced the awaited one.
	ErrSuperseded = errors.New("selection superseded")
)

// ReadErrorCode categorizes file acquisition failures.
type ReadErrorCode string

const (
	// ErrCodeNotFound indicates the file does not exist.
	ErrCodeNotFound ReadErrorCode = "NOT_FOUND"

	// ErrCodePermission indicates the file could not be opened for reading.
	ErrCodePermission ReadErrorCode = "PERMISSION"

	// ErrCodeIO indicates the read failed part way.
	ErrCodeIO ReadErrorCode = "IO"

	// ErrCodeCancelled indicates the read was superseded or cancelled.
	ErrCodeCancelled ReadErrorCode = "CANCELLED"
)

// ReadError reports a failed file read. A ReadFailed event carrying it
// returns the session to NoFileSelected.
type ReadError struct {
	Code ReadErrorCode
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ReadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: read %s: %v", e.Code, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: read %s", e.Code, e.Path)
}

// Unwrap returns the underlying error.
func (e *ReadError) Unwrap() error {
	return e.Err
}

// IsReadError reports whether err is a *ReadError.
func IsReadError(err error) bool {
	var re *ReadError
	return errors.As(err, &re)
}

// IsCancelled reports whether err is a read cancelled by a newer selection.
func IsCancelled(err error) bool {
	var re *ReadError
	return errors.As(err, &re) && re.Code == ErrCodeCancelled
}
