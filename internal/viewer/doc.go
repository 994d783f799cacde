// Package viewer is the event-driven core of a FITS viewing session.
//
// A Session owns one State and changes it only from its Run loop. The loop
// takes events from an unbounded FIFO queue and applies the pure Transition
// function, so every state change happens on a single goroutine:
//
//	Empty --FileSelected--> Reading --BytesReady--> LoadedValid | LoadedInvalid
//	                           |
//	                           +--ReadFailed--> Empty
//	any   --SelectionCleared--> Empty
//	any   --FileSelected--> Reading (new token)
//
// Every selection takes a fresh read token. Read completions carry the
// token of the selection that started them and are dropped unless it is
// still the current one, so the last selection always wins. Selecting again
// or clearing also cancels the context of the superseded read.
//
// Drawing is a DrawRequested event handled on the loop. It renders the
// loaded data through a render.Renderer and never changes the phase.
//
// Thread-safety model:
//   - Select, Clear, Draw, Enqueue, Sync, AwaitRead: safe from any goroutine
//   - Run: must be called from exactly one goroutine
//   - State, View: return snapshots and are safe from any goroutine
package viewer
