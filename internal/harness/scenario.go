package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted viewer session.
type Scenario struct {
	// Name identifies the scenario and its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario checks.
	Description string `yaml:"description"`

	// Hold keeps reads pending until a release step.
	Hold bool `yaml:"hold,omitempty"`

	// Files are served by the in-memory source. Selecting a path that is
	// not listed fails the read.
	Files []FileFixture `yaml:"files,omitempty"`

	// Surfaces are allocated before the first step. When empty, a 4x4
	// raster surface named data_canvas is allocated.
	Surfaces []SurfaceFixture `yaml:"surfaces,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions are evaluated after the last step.
	Assertions []Assertion `yaml:"assertions"`
}

// FileFixture is one in-memory file: either plain text or a FITS stream.
type FileFixture struct {
	Path string       `yaml:"path"`
	Text string       `yaml:"text,omitempty"`
	FITS *FITSFixture `yaml:"fits,omitempty"`
}

// FITSFixture describes a primary HDU built with testutil.FITSBuilder.
type FITSFixture struct {
	Bitpix    int       `yaml:"bitpix"`
	Axes      []int     `yaml:"axes,omitempty"`
	Samples   []float64 `yaml:"samples,omitempty"`
	Cards     []string  `yaml:"cards,omitempty"` // extra header cards, verbatim
	NotSimple bool      `yaml:"not_simple,omitempty"`
	Truncated bool      `yaml:"truncated,omitempty"`
}

// SurfaceFixture allocates a raster surface of the given pixel size.
type SurfaceFixture struct {
	ID     string `yaml:"id"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Step is one user action. Exactly one of Select, Release, Clear and Draw
// is set, or none when the step only checks the view.
type Step struct {
	Select  string `yaml:"select,omitempty"`
	Release string `yaml:"release,omitempty"`
	Clear   bool   `yaml:"clear,omitempty"`
	Draw    string `yaml:"draw,omitempty"`

	// ExpectError is the error code a draw must fail with.
	ExpectError string `yaml:"expect_error,omitempty"`

	// ExpectView is checked after the step.
	ExpectView *ViewExpect `yaml:"expect_view,omitempty"`
}

// ViewExpect is a subset match on viewer.View. Empty fields are ignored.
type ViewExpect struct {
	Kind     string `yaml:"kind,omitempty"`
	File     string `yaml:"file,omitempty"`
	Drawable *bool  `yaml:"drawable,omitempty"`
	Message  string `yaml:"message,omitempty"`
}

// Assertion checks the final view or the trace.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// View is the expected final view (final_view).
	View *ViewExpect `yaml:"view,omitempty"`

	// Events is the expected order of transition events (trace_order).
	Events []string `yaml:"events,omitempty"`

	// Event is the transition event to count (trace_count).
	Event string `yaml:"event,omitempty"`

	// Status is the render status to count (render_count).
	Status string `yaml:"status,omitempty"`

	// Surface is the surface whose presented frames are counted (frames).
	Surface string `yaml:"surface,omitempty"`

	// Count is the expected number (trace_count, render_count, frames).
	Count int `yaml:"count"`
}

// Assertion type constants.
const (
	AssertFinalView   = "final_view"
	AssertTraceOrder  = "trace_order"
	AssertTraceCount  = "trace_count"
	AssertRenderCount = "render_count"
	AssertFrames      = "frames"
)

// DefaultSurfaceID is the surface allocated when a scenario lists none.
const DefaultSurfaceID = "data_canvas"

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	seen := make(map[string]bool)
	for i, f := range s.Files {
		if f.Path == "" {
			return fmt.Errorf("files[%d]: path is required", i)
		}
		if seen[f.Path] {
			return fmt.Errorf("files[%d]: duplicate path %q", i, f.Path)
		}
		seen[f.Path] = true
		if f.FITS != nil && f.Text != "" {
			return fmt.Errorf("files[%d]: text and fits are mutually exclusive", i)
		}
	}

	for i, sf := range s.Surfaces {
		if sf.ID == "" {
			return fmt.Errorf("surfaces[%d]: id is required", i)
		}
		if sf.Width <= 0 || sf.Height <= 0 {
			return fmt.Errorf("surfaces[%d]: width and height must be positive", i)
		}
	}

	for i, step := range s.Steps {
		actions := 0
		for _, set := range []bool{step.Select != "", step.Release != "", step.Clear, step.Draw != ""} {
			if set {
				actions++
			}
		}
		if actions > 1 {
			return fmt.Errorf("steps[%d]: at most one of select, release, clear, draw", i)
		}
		if actions == 0 && step.ExpectView == nil {
			return fmt.Errorf("steps[%d]: empty step", i)
		}
		if step.ExpectError != "" && step.Draw == "" {
			return fmt.Errorf("steps[%d]: expect_error only applies to draw", i)
		}
		if step.Release != "" && !s.Hold {
			return fmt.Errorf("steps[%d]: release requires hold", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertFinalView:
		if a.View == nil {
			return fmt.Errorf("assertions[%d]: final_view requires view", index)
		}
	case AssertTraceOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: trace_order requires events", index)
		}
	case AssertTraceCount:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: trace_count requires event", index)
		}
	case AssertRenderCount:
		if a.Status == "" {
			return fmt.Errorf("assertions[%d]: render_count requires status", index)
		}
	case AssertFrames:
		if a.Surface == "" {
			return fmt.Errorf("assertions[%d]: frames requires surface", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	if a.Count < 0 {
		return fmt.Errorf("assertions[%d]: count must be non-negative", index)
	}
	return nil
}
