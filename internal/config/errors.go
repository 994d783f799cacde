package config

import (
	"errors"
	"fmt"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Error codes for config loading.
const (
	ErrCodeNotFound    = "CONFIG_NOT_FOUND"
	ErrCodeUnsupported = "CONFIG_UNSUPPORTED"
	ErrCodeParseFailed = "CONFIG_PARSE_FAILED"
	ErrCodeInvalid     = "CONFIG_INVALID"
)

// Error reports a config file that could not be loaded.
type Error struct {
	Code    string
	Path    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvalid reports whether err is a schema violation.
func IsInvalid(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Code == ErrCodeInvalid
}

// IsNotFound reports whether err is a missing config file.
func IsNotFound(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Code == ErrCodeNotFound
}

// newCUEError converts the first CUE error into an *Error with its position.
func newCUEError(code, path string, err error) *Error {
	e := &Error{Code: code, Path: path, Message: err.Error()}
	if list := cueerrors.Errors(err); len(list) > 0 {
		e.Message = list[0].Error()
		e.Pos = list[0].Position()
	}
	return e
}
