package viewer

import (
	"fmt"

	"github.com/roach88/fitsview/internal/fits"
)

// Phase is the lifecycle position of a session.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseReading
	PhaseLoadedValid
	PhaseLoadedInvalid
)

// String returns the phase name used in logs and the journal.
func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "Empty"
	case PhaseReading:
		return "Reading"
	case PhaseLoadedValid:
		return "LoadedValid"
	case PhaseLoadedInvalid:
		return "LoadedInvalid"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// State is an immutable snapshot of a session.
//
// Token and Handle identify the current selection. A failed read leaves
// the session Empty but keeps Token, Handle and Err so the failure can be
// reported. File is set only in PhaseLoadedValid.
type State struct {
	Phase  Phase
	Token  string
	Handle FileHandle
	File   *fits.File
	Err    error
}

// Event is an input to the state machine.
//
// The set of implementations is closed: FileSelected, BytesReady,
// ReadFailed, SelectionCleared and DrawRequested.
type Event interface {
	// event is a private method to restrict implementers
	event()
}

// FileSelected starts a read of Handle under a fresh Token.
type FileSelected struct {
	Token  string
	Handle FileHandle
}

// BytesReady delivers the content read for Token.
type BytesReady struct {
	Token string
	Bytes []byte
}

// ReadFailed reports that the read for Token failed.
type ReadFailed struct {
	Token string
	Err   error
}

// SelectionCleared drops the current selection.
type SelectionCleared struct{}

// DrawRequested asks the loop to render the loaded image onto a surface.
// It never changes the state.
type DrawRequested struct {
	SurfaceID string
}

func (FileSelected) event()     {}
func (BytesReady) event()       {}
func (ReadFailed) event()       {}
func (SelectionCleared) event() {}
func (DrawRequested) event()    {}

// EventName returns the event name used in logs and the journal.
func EventName(ev Event) string {
	switch ev.(type) {
	case FileSelected:
		return "FileSelected"
	case BytesReady:
		return "BytesReady"
	case ReadFailed:
		return "ReadFailed"
	case SelectionCleared:
		return "SelectionCleared"
	case DrawRequested:
		return "DrawRequested"
	default:
		panic(fmt.Sprintf("viewer: unknown event %T", ev))
	}
}

// Applies reports whether ev changes s. Read completions apply only while
// Reading and only for the current token; anything else is stale.
func Applies(s State, ev Event) bool {
	switch e := ev.(type) {
	case FileSelected, SelectionCleared:
		return true
	case BytesReady:
		return s.Phase == PhaseReading && e.Token == s.Token
	case ReadFailed:
		return s.Phase == PhaseReading && e.Token == s.Token
	case DrawRequested:
		return false
	default:
		panic(fmt.Sprintf("viewer: unknown event %T", ev))
	}
}

// Transition returns the state that follows s on ev. It has no side
// effects; events that do not apply return s unchanged.
func Transition(s State, ev Event) State {
	if !Applies(s, ev) {
		return s
	}
	switch e := ev.(type) {
	case FileSelected:
		return State{Phase: PhaseReading, Token: e.Token, Handle: e.Handle}
	case BytesReady:
		file, ok := fits.Decode(e.Bytes)
		if !ok {
			return State{Phase: PhaseLoadedInvalid, Token: s.Token, Handle: s.Handle}
		}
		return State{Phase: PhaseLoadedValid, Token: s.Token, Handle: s.Handle, File: file}
	case ReadFailed:
		return State{Phase: PhaseEmpty, Token: s.Token, Handle: s.Handle, Err: e.Err}
	case SelectionCleared:
		return State{Phase: PhaseEmpty}
	}
	return s
}

// ViewKind is the user-facing condition of a session.
type ViewKind int

const (
	KindNoFileSelected ViewKind = iota
	KindReadingFile
	KindFileLoadedNotRecognized
	KindFileLoadedRecognized
)

// String returns the kind name.
func (k ViewKind) String() string {
	switch k {
	case KindNoFileSelected:
		return "NoFileSelected"
	case KindReadingFile:
		return "ReadingFile"
	case KindFileLoadedNotRecognized:
		return "FileLoadedNotRecognized"
	case KindFileLoadedRecognized:
		return "FileLoadedRecognized"
	default:
		return fmt.Sprintf("ViewKind(%d)", int(k))
	}
}

// View is what a UI shows for a state.
type View struct {
	Kind             ViewKind
	Handle           FileHandle
	File             *fits.File
	Header           *fits.Header
	HasDrawableImage bool
	Err              error
}

// View derives the user-facing view of s.
func (s State) View() View {
	v := View{Handle: s.Handle, Err: s.Err}
	switch s.Phase {
	case PhaseEmpty:
		v.Kind = KindNoFileSelected
	case PhaseReading:
		v.Kind = KindReadingFile
	case PhaseLoadedInvalid:
		v.Kind = KindFileLoadedNotRecognized
	case PhaseLoadedValid:
		v.Kind = KindFileLoadedRecognized
		v.File = s.File
		v.Header = s.File.Header
		v.HasDrawableImage = s.File.Drawable()
	}
	return v
}

// Messages shown for views without a keyword table or image.
const (
	MsgSelectFile    = "Select a file..."
	MsgReading       = "Reading file..."
	MsgNotRecognized = "Not a valid FITS file, so not reading..."
	MsgNoData        = "No data to display"
)

// Message returns the status line for v, or "" when an image is shown.
func (v View) Message() string {
	switch v.Kind {
	case KindNoFileSelected:
		return MsgSelectFile
	case KindReadingFile:
		return MsgReading
	case KindFileLoadedNotRecognized:
		return MsgNotRecognized
	default:
		if !v.HasDrawableImage {
			return MsgNoData
		}
		return ""
	}
}
