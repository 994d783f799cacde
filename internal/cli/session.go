package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/fitsview/internal/journal"
	"github.com/roach88/fitsview/internal/render"
	"github.com/roach88/fitsview/internal/viewer"
)

// viewerRun is a session running for the lifetime of one command.
type viewerRun struct {
	session  *viewer.Session
	registry *render.Registry
	journal  *journal.Journal
	cancel   context.CancelFunc
	done     chan error
}

// startSession opens the journal (when configured), builds a renderer
// with the configured background and starts a session over the local
// filesystem.
func startSession(ctx context.Context, opts *RootOptions) (*viewerRun, error) {
	background, err := opts.Config().BackgroundColor()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid background colour", err)
	}

	r := &viewerRun{registry: render.NewRegistry(), done: make(chan error, 1)}
	renderer := render.NewRenderer(r.registry, render.WithBackground(background))

	var sessionOpts []viewer.Option
	if path := opts.journalPath(); path != "" {
		j, err := journal.Open(path)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		r.journal = j
		sessionOpts = append(sessionOpts, viewer.WithRecorder(j))
	}

	r.session = viewer.NewSession(viewer.OSFileSource{}, renderer, sessionOpts...)

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	go func() { r.done <- r.session.Run(runCtx) }()

	slog.Debug("session started", "session", r.session.ID(), "journal", opts.journalPath())
	return r, nil
}

// load selects path and waits for the read to finish. Stat and read
// failures are command errors.
func (r *viewerRun) load(ctx context.Context, path string) (viewer.View, error) {
	handle, err := viewer.HandleFromPath(path)
	if err != nil {
		return viewer.View{}, WrapExitError(ExitCommandError, fmt.Sprintf("cannot open %s", path), err)
	}
	token := r.session.Select(ctx, handle)
	view, err := r.session.AwaitRead(ctx, token)
	if err != nil {
		return view, WrapExitError(ExitCommandError, fmt.Sprintf("cannot read %s", path), err)
	}
	return view, nil
}

// Close stops the session after pending events are journaled.
func (r *viewerRun) Close() error {
	r.session.Close()
	err := <-r.done
	r.cancel()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if r.journal != nil {
		if cerr := r.journal.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// closeRun is the deferred form of Close for commands whose result is
// already decided; a failed journal close is logged rather than returned.
func closeRun(r *viewerRun) {
	if err := r.Close(); err != nil {
		slog.Warn("session close failed", "error", err)
	}
}
