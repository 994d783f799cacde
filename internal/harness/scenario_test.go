package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "last_selection_wins.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "last_selection_wins", s.Name)
	assert.True(t, s.Hold)
	require.Len(t, s.Files, 2)
	require.NotNil(t, s.Files[0].FITS)
	assert.Equal(t, []int{2, 2}, s.Files[0].FITS.Axes)
	assert.Equal(t, "not a FITS file", s.Files[1].Text)
	assert.Equal(t, "NOTHING_TO_DRAW", s.Steps[4].ExpectError)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: x
description: y
step:
  - clear: true
`), 0o644))
	_, err := LoadScenario(path)
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing name", "description: d\nsteps: [{clear: true}]\nassertions: [{type: frames, surface: s}]", "name is required"},
		{"missing steps", "name: n\ndescription: d\nassertions: [{type: frames, surface: s}]", "steps list"},
		{"missing assertions", "name: n\ndescription: d\nsteps: [{clear: true}]", "assertions list"},
		{"two actions", "name: n\ndescription: d\nsteps: [{clear: true, draw: x}]\nassertions: [{type: frames, surface: s}]", "at most one"},
		{"empty step", "name: n\ndescription: d\nsteps: [{}]\nassertions: [{type: frames, surface: s}]", "empty step"},
		{"release without hold", "name: n\ndescription: d\nsteps: [{release: /a}]\nassertions: [{type: frames, surface: s}]", "release requires hold"},
		{"expect_error without draw", "name: n\ndescription: d\nsteps: [{clear: true, expect_error: X}]\nassertions: [{type: frames, surface: s}]", "expect_error"},
		{"duplicate file", "name: n\ndescription: d\nfiles: [{path: /a}, {path: /a}]\nsteps: [{clear: true}]\nassertions: [{type: frames, surface: s}]", "duplicate path"},
		{"bad surface", "name: n\ndescription: d\nsurfaces: [{id: s, width: 0, height: 1}]\nsteps: [{clear: true}]\nassertions: [{type: frames, surface: s}]", "positive"},
		{"unknown assertion", "name: n\ndescription: d\nsteps: [{clear: true}]\nassertions: [{type: nope}]", "unknown assertion type"},
		{"final_view without view", "name: n\ndescription: d\nsteps: [{clear: true}]\nassertions: [{type: final_view}]", "requires view"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
