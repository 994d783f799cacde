package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fitsview/internal/journal"
)

func executeHistory(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewHistoryCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// seedJournal inspects and renders m31.fits with the journal at dbPath.
func seedJournal(t *testing.T, dir, dbPath string) {
	t.Helper()
	path := writeFile(t, dir, "m31.fits", m31())
	opts := &RootOptions{Format: "text", JournalPath: dbPath}

	_, err := executeInspect(t, opts, path)
	require.NoError(t, err)
	_, err = executeRender(t, opts, path, "--out", filepath.Join(dir, "m31.png"))
	require.NoError(t, err)
}

func TestHistoryText(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "journal.db")
	seedJournal(t, dir, dbPath)

	out, err := executeHistory(t, &RootOptions{Format: "text"}, "--db", dbPath)
	require.NoError(t, err)

	assert.Contains(t, out, "Journal: "+dbPath)
	assert.Contains(t, out, "Transitions (4):")
	assert.Contains(t, out, "FileSelected: Empty -> Reading (m31.fits)")
	assert.Contains(t, out, "BytesReady: Reading -> LoadedValid (m31.fits)")
	assert.Contains(t, out, "Renders (1):")
	assert.Contains(t, out, "data_canvas 2x2 ok")
}

func TestHistoryJSON(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "journal.db")
	seedJournal(t, dir, dbPath)

	out, err := executeHistory(t, &RootOptions{Format: "json", JournalPath: dbPath})
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   HistoryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Transitions, 4)
	require.Len(t, resp.Data.Renders, 1)

	// Two sessions, one per command.
	assert.NotEqual(t, resp.Data.Transitions[0].Session, resp.Data.Transitions[2].Session)
	assert.Equal(t, resp.Data.Transitions[2].Session, resp.Data.Renders[0].Session)
	assert.Equal(t, "0", resp.Data.Renders[0].LogMin)
	assert.NotEmpty(t, resp.Data.Transitions[1].HeaderDigest)
}

func TestHistoryLimit(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "journal.db")
	seedJournal(t, dir, dbPath)

	out, err := executeHistory(t, &RootOptions{Format: "json"}, "--db", dbPath, "--limit", "1")
	require.NoError(t, err)

	var resp struct {
		Data HistoryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Transitions, 1)
	assert.Equal(t, "BytesReady", resp.Data.Transitions[0].Event)
}

func TestHistoryNoJournalConfigured(t *testing.T) {
	_, err := executeHistory(t, &RootOptions{Format: "text"})
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no journal configured")
}

func TestHistoryJournalNotFound(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "missing.db")

	_, err := executeHistory(t, &RootOptions{Format: "text"}, "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "journal not found")
	assert.NoFileExists(t, dbPath)
}

func TestBuildHistoryResultNonFinite(t *testing.T) {
	result := buildHistoryResult("j.db", nil, []journal.Render{{
		Session:   "s",
		Seq:       3,
		SurfaceID: "data_canvas",
		LogMin:    math.Inf(-1),
		LogMax:    math.NaN(),
		NonFinite: 4,
		Status:    journal.StatusOK,
	}})

	assert.Empty(t, result.Transitions)
	require.Len(t, result.Renders, 1)
	assert.Equal(t, "-Inf", result.Renders[0].LogMin)
	assert.Equal(t, "NaN", result.Renders[0].LogMax)

	_, err := json.Marshal(result)
	assert.NoError(t, err)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", shortID("abc"))
	assert.Equal(t, "0192f3a1", shortID("0192f3a1-7c4e-7000-8000-000000000000"))
}
