package viewer

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/roach88/fitsview/internal/canon"
	"github.com/roach88/fitsview/internal/journal"
	"github.com/roach88/fitsview/internal/render"
)

// Recorder receives the journal rows of a session. Implemented by
// *journal.Journal. Write failures are logged and never stop the session.
type Recorder interface {
	WriteTransition(ctx context.Context, t journal.Transition) error
	WriteRender(ctx context.Context, r journal.Render) error
}

// Session is a single-writer viewer event loop.
type Session struct {
	id       string
	source   FileSource
	renderer *render.Renderer
	tokens   TokenGenerator
	clock    *Clock
	recorder Recorder
	queue    *eventQueue

	// mu guards state and changed. changed is closed and replaced on
	// every applied transition.
	mu      sync.Mutex
	state   State
	changed chan struct{}

	// selMu serializes selections so token order matches queue order.
	selMu      sync.Mutex
	cancelRead context.CancelFunc
	latest     string // token of the last Select, "" after Clear

	stopOnce sync.Once
	stopped  chan struct{}
}

// Option configures a Session.
type Option func(*Session)

// WithTokens sets the read token generator. Default: UUIDv7Generator.
func WithTokens(g TokenGenerator) Option {
	return func(s *Session) { s.tokens = g }
}

// WithClock sets the journal sequence clock. Default: NewClock().
func WithClock(c *Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithRecorder journals every applied transition and draw attempt.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// WithSessionID sets the id under which the session is journaled.
// Default: a fresh UUIDv7.
func WithSessionID(id string) Option {
	return func(s *Session) { s.id = id }
}

// NewSession creates a session in the Empty phase. Call Run to start
// processing events.
func NewSession(source FileSource, renderer *render.Renderer, opts ...Option) *Session {
	s := &Session{
		source:   source,
		renderer: renderer,
		tokens:   UUIDv7Generator{},
		clock:    NewClock(),
		queue:    newEventQueue(),
		changed:  make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = UUIDv7Generator{}.Generate()
	}
	return s
}

// ID returns the session id used in the journal.
func (s *Session) ID() string {
	return s.id
}

// Run processes events until ctx is cancelled or Close is called.
func (s *Session) Run(ctx context.Context) error {
	slog.Debug("session starting", "session", s.id)
	defer s.shutdown()

	for {
		if it, ok := s.queue.TryDequeue(); ok {
			s.process(ctx, it)
			continue
		}

		select {
		case <-ctx.Done():
			slog.Debug("session stopping: context cancelled", "session", s.id)
			s.queue.Close()
			return ctx.Err()

		case <-s.queue.Wait():
			// A coalesced signal can arrive after its item was already
			// taken, so an empty queue only means stop once it is closed.
			if s.queue.Len() == 0 && s.queue.Closed() {
				slog.Debug("session stopping: queue closed", "session", s.id)
				return nil
			}
		}
	}
}

// Close stops the loop after the queued events are processed and cancels
// any pending read.
func (s *Session) Close() {
	s.queue.Close()
	s.selMu.Lock()
	defer s.selMu.Unlock()
	if s.cancelRead != nil {
		s.cancelRead()
		s.cancelRead = nil
	}
}

func (s *Session) shutdown() {
	s.Close()
	s.stopOnce.Do(func() { close(s.stopped) })
}

// Enqueue submits ev to the loop. Returns false if the session is closed.
func (s *Session) Enqueue(ev Event) bool {
	return s.queue.Enqueue(item{ev: ev})
}

// Select starts reading h and returns the read token of the selection.
// A read still in flight for an earlier selection is cancelled and its
// completion, if any, is dropped.
func (s *Session) Select(ctx context.Context, h FileHandle) string {
	s.selMu.Lock()
	defer s.selMu.Unlock()

	if s.cancelRead != nil {
		s.cancelRead()
	}
	token := s.tokens.Generate()
	s.latest = token
	readCtx, cancel := context.WithCancel(ctx)
	s.cancelRead = cancel

	if !s.queue.Enqueue(item{ev: FileSelected{Token: token, Handle: h}}) {
		cancel()
		slog.Warn("selection ignored: session closed", "session", s.id, "file", h.Name)
		return token
	}

	s.source.ReadBytes(readCtx, h, func(b []byte, err error) {
		defer cancel()
		if err != nil {
			s.queue.Enqueue(item{ev: ReadFailed{Token: token, Err: err}})
			return
		}
		s.queue.Enqueue(item{ev: BytesReady{Token: token, Bytes: b}})
	})
	return token
}

// Clear drops the current selection and cancels its read.
func (s *Session) Clear() {
	s.selMu.Lock()
	defer s.selMu.Unlock()

	if s.cancelRead != nil {
		s.cancelRead()
		s.cancelRead = nil
	}
	s.latest = ""
	s.queue.Enqueue(item{ev: SelectionCleared{}})
}

// Draw renders the loaded image onto the surface registered as surfaceID.
// It waits for the loop to handle the request. A failed draw leaves the
// state untouched and may be retried.
func (s *Session) Draw(ctx context.Context, surfaceID string) (render.Diagnostics, error) {
	reply := make(chan drawResult, 1)
	if !s.queue.Enqueue(item{ev: DrawRequested{SurfaceID: surfaceID}, ctx: ctx, reply: reply}) {
		return render.Diagnostics{}, ErrSessionClosed
	}
	select {
	case res := <-reply:
		return res.diag, res.err
	case <-ctx.Done():
		return render.Diagnostics{}, ctx.Err()
	case <-s.stopped:
		return render.Diagnostics{}, ErrSessionClosed
	}
}

// Sync waits until every event enqueued before the call is processed.
func (s *Session) Sync(ctx context.Context) error {
	done := make(chan struct{})
	if !s.queue.Enqueue(item{done: done}) {
		return ErrSessionClosed
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return ErrSessionClosed
	}
}

// AwaitRead waits until the read started under token has completed.
//
// It returns the resulting view together with the read error, if the read
// failed, or ErrSuperseded when another selection or a clear replaced it.
func (s *Session) AwaitRead(ctx context.Context, token string) (View, error) {
	for {
		s.mu.Lock()
		st, changed := s.state, s.changed
		s.mu.Unlock()

		switch {
		case st.Token == token && st.Phase != PhaseReading:
			return st.View(), st.Err
		case st.Token != token && s.latestToken() != token:
			return st.View(), ErrSuperseded
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return st.View(), ctx.Err()
		case <-s.stopped:
			return st.View(), ErrSessionClosed
		}
	}
}

func (s *Session) latestToken() string {
	s.selMu.Lock()
	defer s.selMu.Unlock()
	return s.latest
}

// State returns a snapshot of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// View returns the user-facing view of the current state.
func (s *Session) View() View {
	return s.State().View()
}

// process handles one queue item.
// CRITICAL: called only from Run, which makes the loop the single writer.
func (s *Session) process(ctx context.Context, it item) {
	if it.ev == nil {
		if it.done != nil {
			close(it.done)
		}
		return
	}

	if ev, ok := it.ev.(DrawRequested); ok {
		drawCtx := it.ctx
		if drawCtx == nil {
			drawCtx = ctx
		}
		diag, err := s.draw(drawCtx, ev.SurfaceID)
		if it.reply != nil {
			it.reply <- drawResult{diag: diag, err: err}
		}
		return
	}

	prev := s.State()
	if !Applies(prev, it.ev) {
		slog.Debug("stale event dropped",
			"session", s.id,
			"event", EventName(it.ev),
			"phase", prev.Phase,
			"current_token", prev.Token,
		)
		return
	}

	next := Transition(prev, it.ev)
	s.mu.Lock()
	s.state = next
	close(s.changed)
	s.changed = make(chan struct{})
	s.mu.Unlock()

	slog.Debug("transition",
		"session", s.id,
		"event", EventName(it.ev),
		"from", prev.Phase,
		"to", next.Phase,
		"token", next.Token,
	)
	if next.Err != nil {
		slog.Warn("file read failed", "session", s.id, "file", next.Handle.Name, "error", next.Err)
	}
	s.recordTransition(ctx, it.ev, prev, next)
}

// draw renders the current image. Called only from the loop.
func (s *Session) draw(ctx context.Context, surfaceID string) (render.Diagnostics, error) {
	st := s.State()
	if st.Phase != PhaseLoadedValid || !st.File.Drawable() {
		slog.Debug("draw skipped: nothing to draw", "session", s.id, "phase", st.Phase)
		s.recordRender(ctx, surfaceID, nil, render.Diagnostics{}, ErrNothingToDraw)
		return render.Diagnostics{}, ErrNothingToDraw
	}
	if s.renderer == nil {
		err := errors.New("session has no renderer")
		s.recordRender(ctx, surfaceID, nil, render.Diagnostics{}, err)
		return render.Diagnostics{}, err
	}

	data := st.File.Data
	diag, err := s.renderer.Render(ctx, render.Request{
		SurfaceID: surfaceID,
		Data:      data,
		Shape:     data.Shape(),
	})
	if err != nil {
		slog.Warn("draw failed", "session", s.id, "surface", surfaceID, "error", err)
	}
	s.recordRender(ctx, surfaceID, data.Shape(), diag, err)
	return diag, err
}

func (s *Session) recordTransition(ctx context.Context, ev Event, prev, next State) {
	if s.recorder == nil {
		return
	}
	t := journal.Transition{
		Session:   s.id,
		Seq:       s.clock.Next(),
		Token:     next.Token,
		Event:     EventName(ev),
		FromPhase: prev.Phase.String(),
		ToPhase:   next.Phase.String(),
		FileName:  next.Handle.Name,
	}
	if _, ok := ev.(SelectionCleared); ok {
		t.Token = prev.Token
		t.FileName = prev.Handle.Name
	}
	if next.File != nil {
		digest, err := canon.HeaderDigest(next.File.Header)
		if err != nil {
			slog.Warn("header digest failed", "session", s.id, "error", err)
		}
		t.HeaderDigest = digest
	}
	if err := s.recorder.WriteTransition(ctx, t); err != nil {
		slog.Warn("journal write failed", "session", s.id, "seq", t.Seq, "error", err)
	}
}

func (s *Session) recordRender(ctx context.Context, surfaceID string, shape []int, diag render.Diagnostics, renderErr error) {
	if s.recorder == nil {
		return
	}
	r := journal.Render{
		Session:   s.id,
		Seq:       s.clock.Next(),
		SurfaceID: surfaceID,
		LogMin:    diag.LogMin,
		LogMax:    diag.LogMax,
		NonFinite: diag.NonFinite,
		Status:    journal.StatusOK,
	}
	if len(shape) == 2 {
		r.Width, r.Height = shape[0], shape[1]
	}
	if renderErr != nil {
		r.Status = journal.StatusFailed
		r.Error = renderErr.Error()
	}
	// A cancelled draw still gets journaled.
	if err := s.recorder.WriteRender(context.WithoutCancel(ctx), r); err != nil {
		slog.Warn("journal write failed", "session", s.id, "seq", r.Seq, "error", err)
	}
}
