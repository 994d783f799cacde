package harness

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/roach88/fitsview/internal/journal"
	"github.com/roach88/fitsview/internal/render"
	"github.com/roach88/fitsview/internal/testutil"
	"github.com/roach88/fitsview/internal/viewer"
)

// StepTimeout bounds how long a single step may wait on the session.
const StepTimeout = 5 * time.Second

// ErrCodeNothingToDraw is the expect_error code for viewer.ErrNothingToDraw.
const ErrCodeNothingToDraw = "NOTHING_TO_DRAW"

// Harness holds the per-run session and its collaborators.
type Harness struct {
	session  *viewer.Session
	source   *viewer.MemorySource
	journal  *journal.Journal
	surfaces map[string]*render.RasterSurface
	handles  map[string]viewer.FileHandle
	held     bool
}

// Run executes a scenario against a fresh session and returns the result.
//
// Each run uses a new in-memory journal, tokens "sel-1", "sel-2", ... and
// the scenario name as session id, so traces are reproducible.
func Run(scenario *Scenario) (*Result, error) {
	j, err := journal.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory journal: %w", err)
	}
	defer j.Close()

	h := &Harness{
		source:   viewer.NewMemorySource(),
		journal:  j,
		surfaces: make(map[string]*render.RasterSurface),
		handles:  make(map[string]viewer.FileHandle),
		held:     scenario.Hold,
	}

	for _, f := range scenario.Files {
		h.handles[f.Path] = h.source.Put(f.Path, fixtureBytes(f))
	}
	if h.held {
		h.source.Hold()
	}

	registry := render.NewRegistry()
	surfaces := scenario.Surfaces
	if len(surfaces) == 0 {
		surfaces = []SurfaceFixture{{ID: DefaultSurfaceID, Width: 4, Height: 4}}
	}
	for _, sf := range surfaces {
		s := render.NewRasterSurface(sf.Width, sf.Height)
		h.surfaces[sf.ID] = s
		registry.Allocate(sf.ID, s)
	}

	h.session = viewer.NewSession(h.source, render.NewRenderer(registry),
		viewer.WithTokens(testutil.NewSequentialTokens("sel")),
		viewer.WithRecorder(j),
		viewer.WithSessionID(scenario.Name),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.session.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("failed to execute step %d: %w", i, err)
		}
	}

	transitions, err := j.ReadTransitions(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}
	renders, err := j.ReadRenders(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}
	result.Trace = buildTrace(transitions, renders)
	result.View = h.session.View()
	for id, s := range h.surfaces {
		result.Frames[id] = s.Frames()
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// executeStep performs one step and waits until the session has handled it.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	stepCtx, cancel := context.WithTimeout(ctx, StepTimeout)
	defer cancel()

	switch {
	case step.Select != "":
		token := h.session.Select(ctx, h.handle(step.Select))
		if !h.held {
			// Read errors are part of the trace, not harness failures.
			if _, err := h.session.AwaitRead(stepCtx, token); err != nil && !viewer.IsReadError(err) {
				return err
			}
		}

	case step.Release != "":
		if !h.source.Release(step.Release) {
			result.AddError(fmt.Sprintf("steps[%d]: no pending read of %s", index, step.Release))
		}

	case step.Clear:
		h.session.Clear()

	case step.Draw != "":
		_, err := h.session.Draw(stepCtx, step.Draw)
		if got := errorCode(err); got != step.ExpectError {
			result.AddError(fmt.Sprintf("steps[%d]: draw %s: expected error %q, got %q (%v)",
				index, step.Draw, step.ExpectError, got, err))
		}
	}

	if err := h.session.Sync(stepCtx); err != nil {
		return err
	}

	if step.ExpectView != nil {
		if msg := matchView(h.session.View(), *step.ExpectView); msg != "" {
			result.AddError(fmt.Sprintf("steps[%d]: %s", index, msg))
		}
	}
	return nil
}

// handle returns the handle of a fixture, or a handle whose read fails.
func (h *Harness) handle(path string) viewer.FileHandle {
	if fh, ok := h.handles[path]; ok {
		return fh
	}
	name := filepath.Base(path)
	return viewer.FileHandle{Name: name, Path: path, MimeType: viewer.MimeType(name)}
}

// errorCode maps a draw error onto its scenario code; nil maps to "".
func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, viewer.ErrNothingToDraw):
		return ErrCodeNothingToDraw
	case render.Code(err) != "":
		return string(render.Code(err))
	default:
		return "ERROR"
	}
}

// fixtureBytes renders a file fixture.
func fixtureBytes(f FileFixture) []byte {
	if f.FITS == nil {
		return []byte(f.Text)
	}
	b := testutil.NewFITS(f.FITS.Bitpix, f.FITS.Axes...)
	if f.FITS.NotSimple {
		b.NotSimple()
	}
	for _, card := range f.FITS.Cards {
		b.Raw(card)
	}
	b.Samples(f.FITS.Samples...)
	if f.FITS.Truncated {
		b.TruncateData()
	}
	return b.Bytes()
}
