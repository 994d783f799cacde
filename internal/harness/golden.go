package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/fitsview/internal/canon"
)

// TraceSnapshot is the golden-file form of a scenario run.
type TraceSnapshot struct {
	ScenarioName string
	FinalView    string
	Trace        []TraceEvent
}

// toCanonicalMap converts the snapshot for canonical JSON. Empty optional
// fields are omitted.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		m := map[string]any{
			"type": ev.Type,
			"seq":  ev.Seq,
		}
		put := func(key, value string) {
			if value != "" {
				m[key] = value
			}
		}
		switch ev.Type {
		case TraceTransition:
			put("event", ev.Event)
			put("from", ev.From)
			put("to", ev.To)
			put("token", ev.Token)
			put("file", ev.File)
			if ev.HasDigest {
				m["has_digest"] = true
			}
		case TraceRender:
			put("surface", ev.Surface)
			put("status", ev.Status)
			put("error", ev.Error)
			m["width"] = ev.Width
			m["height"] = ev.Height
			m["non_finite"] = ev.NonFinite
		}
		trace[i] = m
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"final_view":    s.FinalView,
		"trace":         trace,
	}
}

// Snapshot returns the canonical JSON golden form of a result.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		FinalView:    result.View.Kind.String(),
		Trace:        result.Trace,
	}
	return canon.Marshal(snapshot.toCanonicalMap())
}

// RunWithGolden runs a scenario and compares its trace against
// testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}
