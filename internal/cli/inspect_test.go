package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fitsview/internal/canon"
	"github.com/roach88/fitsview/internal/fits"
	"github.com/roach88/fitsview/internal/journal"
	"github.com/roach88/fitsview/internal/testutil"
	"github.com/roach88/fitsview/internal/viewer"
)

// m31 is a 2x2 float image with one value keyword and one history line.
func m31() []byte {
	return testutil.NewFITS(-32, 2, 2).
		Value("OBJECT", "'M31'", "target").
		History("reduced with fitsview").
		Samples(1, 10, 100, 1000).
		Bytes()
}

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func executeInspect(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewInspectCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

type inspectResponse struct {
	Status  string        `json:"status"`
	Data    InspectResult `json:"data"`
	Error   *CLIError     `json:"error"`
	Session string        `json:"session"`
}

func TestInspectValidFileText(t *testing.T) {
	path := writeFile(t, t.TempDir(), "m31.fits", m31())

	out, err := executeInspect(t, &RootOptions{Format: "text"}, path)
	require.NoError(t, err)

	assert.Contains(t, out, "File:    m31.fits (application/fits, 5760 bytes)")
	assert.Contains(t, out, "Status:  FileLoadedRecognized")
	assert.Contains(t, out, "SIMPLE:  T")
	assert.Contains(t, out, "BITPIX:  -32")
	assert.Contains(t, out, "NAXIS:   2 (2 x 2)")
	assert.Contains(t, out, "Keywords (2):")
	assert.Contains(t, out, "OBJECT   M31 / target")
	assert.Contains(t, out, "HISTORY  reduced with fitsview")
	assert.NotContains(t, out, viewer.MsgNoData)
}

func TestInspectValidFileJSON(t *testing.T) {
	content := m31()
	path := writeFile(t, t.TempDir(), "m31.fits", content)

	out, err := executeInspect(t, &RootOptions{Format: "json"}, path)
	require.NoError(t, err)

	var resp inspectResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Session)
	assert.Equal(t, "FileLoadedRecognized", resp.Data.View)
	assert.Empty(t, resp.Data.Message)

	h := resp.Data.Header
	require.NotNil(t, h)
	assert.True(t, h.Simple)
	assert.Equal(t, -32, h.Bitpix)
	assert.Equal(t, []int{2, 2}, h.Axes)
	assert.True(t, h.Drawable)
	require.Len(t, h.Keywords, 2)
	assert.Equal(t, KeywordRow{Kind: "value", Name: "OBJECT", Value: "M31", Comment: "target"}, h.Keywords[0])
	assert.Equal(t, KeywordRow{Kind: "history", Name: "HISTORY", Value: "reduced with fitsview"}, h.Keywords[1])

	file, err := fits.Parse(content)
	require.NoError(t, err)
	want, err := canon.HeaderDigest(file.Header)
	require.NoError(t, err)
	assert.Equal(t, want, h.Digest)
}

func TestInspectHeaderOnly(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.fits", testutil.NewFITS(8).Value("TELESCOP", "'HST'", "").Bytes())

	out, err := executeInspect(t, &RootOptions{Format: "text"}, path)
	require.NoError(t, err)
	assert.Contains(t, out, "NAXIS:   0\n")
	assert.Contains(t, out, "TELESCOP")
	assert.Contains(t, out, viewer.MsgNoData)
}

func TestInspectNotFITS(t *testing.T) {
	path := writeFile(t, t.TempDir(), "notes.json", []byte(`{"hello": "world"}`))

	out, err := executeInspect(t, &RootOptions{Format: "text"}, path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Status:  FileLoadedNotRecognized")
	assert.Contains(t, out, viewer.MsgNotRecognized)
	assert.Contains(t, out, "application/json")
}

func TestInspectNotFITSJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "short.fits", testutil.NewFITS(16, 2, 2).Samples(1, 2, 3, 4).TruncateData().Bytes())

	out, err := executeInspect(t, &RootOptions{Format: "json"}, path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp inspectResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFITS, resp.Error.Code)
	assert.Equal(t, "FileLoadedNotRecognized", resp.Data.View)
	assert.Nil(t, resp.Data.Header)
}

func TestInspectMissingFile(t *testing.T) {
	_, err := executeInspect(t, &RootOptions{Format: "text"}, filepath.Join(t.TempDir(), "nope.fits"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	var readErr *viewer.ReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, viewer.ErrCodeNotFound, readErr.Code)
}

func TestInspectMissingArgs(t *testing.T) {
	_, err := executeInspect(t, &RootOptions{Format: "text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestInspectRecordsJournal(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "m31.fits", m31())
	dbPath := filepath.Join(dir, "journal.db")

	_, err := executeInspect(t, &RootOptions{Format: "text", JournalPath: dbPath}, path)
	require.NoError(t, err)

	j, err := journal.Open(dbPath)
	require.NoError(t, err)
	defer j.Close()

	transitions, err := j.ReadTransitions(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, transitions, 2)
	assert.Equal(t, "FileSelected", transitions[0].Event)
	assert.Equal(t, "BytesReady", transitions[1].Event)
	assert.Equal(t, "m31.fits", transitions[1].FileName)
	assert.NotEmpty(t, transitions[1].HeaderDigest)
	assert.Equal(t, transitions[0].Session, transitions[1].Session)
}
