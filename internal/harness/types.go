package harness

import (
	"sort"

	"github.com/roach88/fitsview/internal/journal"
	"github.com/roach88/fitsview/internal/viewer"
)

// Trace event types.
const (
	TraceTransition = "transition"
	TraceRender     = "render"
)

// TraceEvent is one journal row of a scenario run.
type TraceEvent struct {
	Type string `json:"type"` // "transition" or "render"
	Seq  int64  `json:"seq"`

	// Transition fields.
	Event     string `json:"event,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Token     string `json:"token,omitempty"`
	File      string `json:"file,omitempty"`
	HasDigest bool   `json:"has_digest,omitempty"`

	// Render fields.
	Surface   string `json:"surface,omitempty"`
	Status    string `json:"status,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	NonFinite int    `json:"non_finite,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace holds transitions and renders in seq order.
	Trace []TraceEvent `json:"trace"`

	// Errors lists failed expectations.
	Errors []string `json:"errors,omitempty"`

	// View is the final view of the session.
	View viewer.View `json:"-"`

	// Frames counts presented frames per surface id.
	Frames map[string]int `json:"frames"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Frames: make(map[string]int),
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// buildTrace merges journal rows into one seq-ordered trace.
func buildTrace(transitions []journal.Transition, renders []journal.Render) []TraceEvent {
	trace := make([]TraceEvent, 0, len(transitions)+len(renders))
	for _, t := range transitions {
		trace = append(trace, TraceEvent{
			Type:      TraceTransition,
			Seq:       t.Seq,
			Event:     t.Event,
			From:      t.FromPhase,
			To:        t.ToPhase,
			Token:     t.Token,
			File:      t.FileName,
			HasDigest: t.HeaderDigest != "",
		})
	}
	for _, r := range renders {
		trace = append(trace, TraceEvent{
			Type:      TraceRender,
			Seq:       r.Seq,
			Surface:   r.SurfaceID,
			Status:    r.Status,
			Width:     r.Width,
			Height:    r.Height,
			NonFinite: r.NonFinite,
			Error:     r.Error,
		})
	}
	sort.SliceStable(trace, func(i, j int) bool { return trace[i].Seq < trace[j].Seq })
	return trace
}
