package journal

import (
	"context"
	"fmt"
	"math"
	"strconv"
)

// Transition is one state-machine step of a viewer session.
type Transition struct {
	Session      string
	Seq          int64
	Token        string // read token of the selection; empty for Clear
	Event        string
	FromPhase    string
	ToPhase      string
	FileName     string
	HeaderDigest string // set once a header was decoded
}

// Render statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Render is one draw attempt and the diagnostics it produced.
//
// LogMin and LogMax may be infinite or NaN for degenerate images; they are
// stored as text so those values survive the round trip.
type Render struct {
	Session   string
	Seq       int64
	SurfaceID string
	Width     int
	Height    int
	LogMin    float64
	LogMax    float64
	NonFinite int
	Status    string
	Error     string
}

// WriteTransition appends t. A second row with the same (session, seq) is
// ignored.
func (j *Journal) WriteTransition(ctx context.Context, t Transition) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO transitions
		(session, seq, token, event, from_phase, to_phase, file_name, header_digest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session, seq) DO NOTHING
	`,
		t.Session,
		t.Seq,
		t.Token,
		t.Event,
		t.FromPhase,
		t.ToPhase,
		t.FileName,
		t.HeaderDigest,
	)
	if err != nil {
		return fmt.Errorf("write transition: %w", err)
	}
	return nil
}

// WriteRender appends r. Status must be StatusOK or StatusFailed.
func (j *Journal) WriteRender(ctx context.Context, r Render) error {
	if r.Status != StatusOK && r.Status != StatusFailed {
		return fmt.Errorf("write render: invalid status %q", r.Status)
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO renders
		(session, seq, surface_id, width, height, log_min, log_max, non_finite, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session, seq) DO NOTHING
	`,
		r.Session,
		r.Seq,
		r.SurfaceID,
		r.Width,
		r.Height,
		formatFloat(r.LogMin),
		formatFloat(r.LogMax),
		r.NonFinite,
		r.Status,
		r.Error,
	)
	if err != nil {
		return fmt.Errorf("write render: %w", err)
	}
	return nil
}

// ReadTransitions returns the most recent limit transitions in recording
// order. limit <= 0 returns all of them. The result is never nil.
func (j *Journal) ReadTransitions(ctx context.Context, limit int) ([]Transition, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT session, seq, token, event, from_phase, to_phase, file_name, header_digest
		FROM (
			SELECT * FROM transitions ORDER BY id DESC LIMIT ?
		)
		ORDER BY id ASC
	`, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	transitions := []Transition{}
	for rows.Next() {
		var t Transition
		if err := rows.Scan(&t.Session, &t.Seq, &t.Token, &t.Event,
			&t.FromPhase, &t.ToPhase, &t.FileName, &t.HeaderDigest); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		transitions = append(transitions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return transitions, nil
}

// ReadRenders returns the most recent limit renders in recording order.
// limit <= 0 returns all of them. The result is never nil.
func (j *Journal) ReadRenders(ctx context.Context, limit int) ([]Render, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT session, seq, surface_id, width, height, log_min, log_max, non_finite, status, error
		FROM (
			SELECT * FROM renders ORDER BY id DESC LIMIT ?
		)
		ORDER BY id ASC
	`, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query renders: %w", err)
	}
	defer rows.Close()

	renders := []Render{}
	for rows.Next() {
		var (
			r              Render
			logMin, logMax string
		)
		if err := rows.Scan(&r.Session, &r.Seq, &r.SurfaceID, &r.Width, &r.Height,
			&logMin, &logMax, &r.NonFinite, &r.Status, &r.Error); err != nil {
			return nil, fmt.Errorf("scan render: %w", err)
		}
		if r.LogMin, err = parseFloat(logMin); err != nil {
			return nil, fmt.Errorf("scan render log_min: %w", err)
		}
		if r.LogMax, err = parseFloat(logMax); err != nil {
			return nil, fmt.Errorf("scan render log_max: %w", err)
		}
		renders = append(renders, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate renders: %w", err)
	}
	return renders, nil
}

// sqlLimit maps "no limit" onto SQLite's LIMIT -1.
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
