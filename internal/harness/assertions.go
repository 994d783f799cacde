package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/fitsview/internal/viewer"
)

// AssertionError is returned when an assertion fails. It carries the full
// trace to help debug the failure.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace {
		switch ev.Type {
		case TraceTransition:
			fmt.Fprintf(&buf, "  [%d] %s %s -> %s %s\n", ev.Seq, ev.Event, ev.From, ev.To, ev.File)
		case TraceRender:
			fmt.Fprintf(&buf, "  [%d] render %s %s\n", ev.Seq, ev.Surface, ev.Status)
		}
	}
	return buf.String()
}

// transitionEvents lists the transition event names of a trace in order.
func transitionEvents(trace []TraceEvent) []string {
	var events []string
	for _, ev := range trace {
		if ev.Type == TraceTransition {
			events = append(events, ev.Event)
		}
	}
	return events
}

// assertTraceOrder checks that the events appear in order, not
// necessarily adjacent.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	actual := transitionEvents(trace)
	next := 0
	for _, ev := range actual {
		if next < len(a.Events) && ev == a.Events[next] {
			next++
		}
	}
	if next == len(a.Events) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: strings.Join(a.Events, " -> "),
		Actual:   strings.Join(actual, " -> "),
		Trace:    trace,
	}
}

func assertTraceCount(trace []TraceEvent, a Assertion) error {
	n := 0
	for _, ev := range trace {
		if ev.Type == TraceTransition && ev.Event == a.Event {
			n++
		}
	}
	if n == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%s x%d", a.Event, a.Count),
		Actual:   fmt.Sprintf("%s x%d", a.Event, n),
		Trace:    trace,
	}
}

func assertRenderCount(trace []TraceEvent, a Assertion) error {
	n := 0
	for _, ev := range trace {
		if ev.Type == TraceRender && ev.Status == a.Status {
			n++
		}
	}
	if n == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertRenderCount,
		Expected: fmt.Sprintf("%d renders with status %s", a.Count, a.Status),
		Actual:   fmt.Sprintf("%d renders with status %s", n, a.Status),
		Trace:    trace,
	}
}

func assertFrames(result *Result, a Assertion) error {
	got, ok := result.Frames[a.Surface]
	if !ok {
		return fmt.Errorf("frames: unknown surface %q", a.Surface)
	}
	if got == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertFrames,
		Expected: fmt.Sprintf("%d frames on %s", a.Count, a.Surface),
		Actual:   fmt.Sprintf("%d frames on %s", got, a.Surface),
		Trace:    result.Trace,
	}
}

// matchView compares v against the expected subset. It returns "" on a
// match and a description of the first difference otherwise.
func matchView(v viewer.View, want ViewExpect) string {
	if want.Kind != "" && v.Kind.String() != want.Kind {
		return fmt.Sprintf("view kind: expected %s, got %s", want.Kind, v.Kind)
	}
	if want.File != "" && v.Handle.Name != want.File {
		return fmt.Sprintf("view file: expected %q, got %q", want.File, v.Handle.Name)
	}
	if want.Drawable != nil && v.HasDrawableImage != *want.Drawable {
		return fmt.Sprintf("view drawable: expected %t, got %t", *want.Drawable, v.HasDrawableImage)
	}
	if want.Message != "" && v.Message() != want.Message {
		return fmt.Sprintf("view message: expected %q, got %q", want.Message, v.Message())
	}
	return ""
}

// EvaluateAssertions evaluates all assertions against the result and
// returns one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string

	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertFinalView:
			if msg := matchView(result.View, *a.View); msg != "" {
				err = fmt.Errorf("final_view: %s", msg)
			}
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertRenderCount:
			err = assertRenderCount(result.Trace, a)
		case AssertFrames:
			err = assertFrames(result, a)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}
