// Package harness runs scripted viewer sessions and checks what they did.
//
// A scenario names in-memory files, the drawing surfaces to allocate and a
// list of steps. Each run gets a fresh viewer.Session with sequential read
// tokens, a held or free-running memory source and an in-memory journal.
// The journal rows form the trace that assertions and golden files check.
//
// # Scenario Format
//
//	name: last_selection_wins
//	description: "A late completion of a superseded read is dropped"
//	hold: true
//	files:
//	  - path: /first.fits
//	    fits: { bitpix: -32, axes: [2, 2], samples: [1, 10, 100, 1000] }
//	  - path: /second.txt
//	    text: "not a FITS file"
//	surfaces:
//	  - { id: data_canvas, width: 4, height: 4 }
//	steps:
//	  - select: /first.fits
//	  - select: /second.txt
//	  - release: /second.txt
//	  - release: /first.fits
//	  - draw: data_canvas
//	    expect_error: NOTHING_TO_DRAW
//	assertions:
//	  - type: final_view
//	    view: { kind: FileLoadedNotRecognized }
//	  - type: trace_order
//	    events: [FileSelected, FileSelected, BytesReady]
//
// With hold unset every read completes before the next step runs. With
// hold set, reads stay pending until a release step completes them, which
// is how scenarios order completions against selections.
//
// # Golden Files
//
// RunWithGolden stores the canonical JSON trace under
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
