package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/fitsview/internal/canon"
	"github.com/roach88/fitsview/internal/fits"
	"github.com/roach88/fitsview/internal/viewer"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
}

// FileInfo describes the selected file.
type FileInfo struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

// KeywordRow is one keyword table row.
type KeywordRow struct {
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Value   string `json:"value"`
	Comment string `json:"comment"`
}

// HeaderInfo summarizes a decoded primary header.
type HeaderInfo struct {
	Simple   bool         `json:"simple"`
	Bitpix   int          `json:"bitpix"`
	Naxis    int          `json:"naxis"`
	Axes     []int        `json:"axes"`
	Digest   string       `json:"digest"`
	Drawable bool         `json:"drawable"`
	Keywords []KeywordRow `json:"keywords"`
}

// InspectResult is the outcome of inspecting one file.
type InspectResult struct {
	File    FileInfo    `json:"file"`
	View    string      `json:"view"`
	Message string      `json:"message,omitempty"`
	Header  *HeaderInfo `json:"header,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the primary header of a FITS file",
		Long: `Read a file, decode its primary header and print the keyword table.

Exit codes:
  0 - File is a valid FITS file
  1 - File was read but is not a valid FITS file
  2 - Command error (file missing or unreadable, bad config)

Examples:
  fitsview inspect m31.fits
  fitsview inspect m31.fits --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, args[0], cmd)
		},
	}

	return cmd
}

func runInspect(opts *InspectOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	run, err := startSession(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer closeRun(run)

	view, err := run.load(ctx, path)
	if err != nil {
		return err
	}

	result, err := buildInspectResult(view)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to digest header", err)
	}
	out := opts.formatter(cmd)

	if view.Kind == viewer.KindFileLoadedNotRecognized {
		if opts.Format == "json" {
			if err := out.JSON(CLIResponse{
				Status:  "error",
				Data:    result,
				Error:   &CLIError{Code: ErrCodeNotFITS, Message: viewer.MsgNotRecognized},
				Session: run.session.ID(),
			}); err != nil {
				return err
			}
		} else {
			writeInspectText(out.Writer, result)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", path, viewer.MsgNotRecognized))
	}

	if opts.Format == "json" {
		return out.JSON(CLIResponse{Status: "ok", Data: result, Session: run.session.ID()})
	}
	writeInspectText(out.Writer, result)
	return nil
}

// buildInspectResult converts a finished view into the printable result.
func buildInspectResult(view viewer.View) (InspectResult, error) {
	result := InspectResult{
		File: FileInfo{
			Name:     view.Handle.Name,
			Path:     view.Handle.Path,
			Size:     view.Handle.Size,
			MimeType: view.Handle.MimeType,
		},
		View:    view.Kind.String(),
		Message: view.Message(),
	}
	if view.Header == nil {
		return result, nil
	}

	digest, err := canon.HeaderDigest(view.Header)
	if err != nil {
		return result, err
	}
	info := &HeaderInfo{
		Simple:   view.Header.Simple(),
		Bitpix:   int(view.Header.Bitpix()),
		Naxis:    view.Header.Naxis(),
		Axes:     view.Header.Axes(),
		Digest:   digest,
		Drawable: view.HasDrawableImage,
		Keywords: keywordRows(view.Header),
	}
	result.Header = info
	return result, nil
}

func keywordRows(h *fits.Header) []KeywordRow {
	rows := make([]KeywordRow, 0, h.Len())
	for _, kw := range h.Keywords() {
		name, value, comment := fits.Row(kw)
		rows = append(rows, KeywordRow{Kind: fits.Kind(kw), Name: name, Value: value, Comment: comment})
	}
	return rows
}

func writeInspectText(w io.Writer, r InspectResult) {
	fmt.Fprintf(w, "File:    %s (%s, %d bytes)\n", r.File.Name, r.File.MimeType, r.File.Size)
	fmt.Fprintf(w, "Status:  %s\n", r.View)

	if h := r.Header; h != nil {
		fmt.Fprintf(w, "SIMPLE:  %s\n", logical(h.Simple))
		fmt.Fprintf(w, "BITPIX:  %d\n", h.Bitpix)
		fmt.Fprintf(w, "NAXIS:   %d%s\n", h.Naxis, axesSuffix(h.Axes))
		fmt.Fprintf(w, "Digest:  %s\n", h.Digest)
		writeKeywordTable(w, h.Keywords)
	}

	if r.Message != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, r.Message)
	}
}

// writeKeywordTable prints rows with the name column padded to the
// widest key.
func writeKeywordTable(w io.Writer, rows []KeywordRow) {
	fmt.Fprintln(w)
	if len(rows) == 0 {
		fmt.Fprintln(w, "Keywords: none")
		return
	}
	fmt.Fprintf(w, "Keywords (%d):\n", len(rows))

	width := len("NAME")
	for _, row := range rows {
		width = max(width, len(row.Name))
	}
	for _, row := range rows {
		line := fmt.Sprintf("  %-*s  %s", width, row.Name, row.Value)
		if row.Comment != "" {
			line += " / " + row.Comment
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

func logical(b bool) string {
	if b {
		return "T"
	}
	return "F"
}

func axesSuffix(axes []int) string {
	if len(axes) == 0 {
		return ""
	}
	parts := make([]string, len(axes))
	for i, n := range axes {
		parts[i] = fmt.Sprint(n)
	}
	return " (" + strings.Join(parts, " x ") + ")"
}
