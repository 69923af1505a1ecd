package main

import "sync/atomic"

// Asset is the minified form of one referenced template or stylesheet.
type Asset struct {
	Path string // Absolute path of the source file that was minified
	Text string // Minified content, not yet escaped for embedding
}

// Summary holds aggregated counts for one run. The walker fans out across
// goroutines, so every field is updated atomically.
type Summary struct {
	Dirs       atomic.Int64 // Directories listed
	Components atomic.Int64 // Component files inspected
	Rewritten  atomic.Int64 // Component files written back
	Inlined    atomic.Int64 // References replaced with inline content
	Failed     atomic.Int64 // References skipped because they could not be minified
}
