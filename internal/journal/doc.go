// Package journal records viewer sessions in SQLite.
//
// Two append-only tables are kept:
//   - transitions: one row per state-machine step (event, phases, token)
//   - renders: one row per draw attempt with its normalization diagnostics
//
// File contents are never written. A transition row carries the file name
// and the header digest only, so the journal can tell which file a session
// looked at without holding a copy of it.
//
// # Ordering
//
// Rows carry the logical seq assigned by the viewer's clock. Seq restarts
// with every session, so queries order by (session, seq) within a session
// and by the autoincrement id across sessions. Wall time is never used.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - 5 second busy timeout
package journal
