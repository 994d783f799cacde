package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/fitsview/internal/journal"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DBPath string // journal to read; empty means --journal or config
	Limit  int    // newest rows per table; 0 means all
}

// TransitionRow is a journaled transition as printed.
type TransitionRow struct {
	Session      string `json:"session"`
	Seq          int64  `json:"seq"`
	Event        string `json:"event"`
	From         string `json:"from"`
	To           string `json:"to"`
	Token        string `json:"token,omitempty"`
	File         string `json:"file,omitempty"`
	HeaderDigest string `json:"header_digest,omitempty"`
}

// RenderRow is a journaled draw as printed. Log bounds are strings
// because they may be infinite or NaN.
type RenderRow struct {
	Session   string `json:"session"`
	Seq       int64  `json:"seq"`
	Surface   string `json:"surface"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	LogMin    string `json:"log_min"`
	LogMax    string `json:"log_max"`
	NonFinite int    `json:"non_finite"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// HistoryResult holds the rows read from the journal.
type HistoryResult struct {
	Journal     string          `json:"journal"`
	Transitions []TransitionRow `json:"transitions"`
	Renders     []RenderRow     `json:"renders"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the session journal",
		Long: `Print the most recent transitions and renders recorded in the
session journal.

Exit codes:
  0 - Journal printed
  2 - Command error (no journal configured, journal not found)

Examples:
  fitsview history --db fitsview.db
  fitsview history --limit 5 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "journal database (default: --journal or config journal.path)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "newest rows to show per table (0 for all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	path := opts.DBPath
	if path == "" {
		path = opts.journalPath()
	}
	if path == "" {
		return NewExitError(ExitCommandError, "no journal configured: use --db, --journal or journal.path in the config")
	}
	if _, err := os.Stat(path); err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("journal not found: %s", path), err)
	}

	j, err := journal.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	ctx := cmd.Context()
	transitions, err := j.ReadTransitions(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read transitions", err)
	}
	renders, err := j.ReadRenders(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read renders", err)
	}

	result := buildHistoryResult(path, transitions, renders)
	out := opts.formatter(cmd)
	if opts.Format == "json" {
		return out.JSON(CLIResponse{Status: "ok", Data: result})
	}
	writeHistoryText(out.Writer, result)
	return nil
}

func buildHistoryResult(path string, transitions []journal.Transition, renders []journal.Render) HistoryResult {
	result := HistoryResult{
		Journal:     path,
		Transitions: make([]TransitionRow, len(transitions)),
		Renders:     make([]RenderRow, len(renders)),
	}
	for i, t := range transitions {
		result.Transitions[i] = TransitionRow{
			Session:      t.Session,
			Seq:          t.Seq,
			Event:        t.Event,
			From:         t.FromPhase,
			To:           t.ToPhase,
			Token:        t.Token,
			File:         t.FileName,
			HeaderDigest: t.HeaderDigest,
		}
	}
	for i, r := range renders {
		result.Renders[i] = RenderRow{
			Session:   r.Session,
			Seq:       r.Seq,
			Surface:   r.SurfaceID,
			Width:     r.Width,
			Height:    r.Height,
			LogMin:    strconv.FormatFloat(r.LogMin, 'g', -1, 64),
			LogMax:    strconv.FormatFloat(r.LogMax, 'g', -1, 64),
			NonFinite: r.NonFinite,
			Status:    r.Status,
			Error:     r.Error,
		}
	}
	return result
}

func writeHistoryText(w io.Writer, r HistoryResult) {
	fmt.Fprintf(w, "Journal: %s\n", r.Journal)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Transitions (%d):\n", len(r.Transitions))
	for _, t := range r.Transitions {
		fmt.Fprintf(w, "  [%s #%d] %s: %s -> %s", shortID(t.Session), t.Seq, t.Event, t.From, t.To)
		if t.File != "" {
			fmt.Fprintf(w, " (%s)", t.File)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Renders (%d):\n", len(r.Renders))
	for _, rr := range r.Renders {
		fmt.Fprintf(w, "  [%s #%d] %s %dx%d %s", shortID(rr.Session), rr.Seq, rr.Surface, rr.Width, rr.Height, rr.Status)
		if rr.NonFinite > 0 {
			fmt.Fprintf(w, " non_finite=%d", rr.NonFinite)
		}
		if rr.Error != "" {
			fmt.Fprintf(w, ": %s", rr.Error)
		}
		fmt.Fprintln(w)
	}
}

// shortID truncates long session ids for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
