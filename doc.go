// Package paintcore implements the canvas core of a collaborative
// drawing engine: a persistent, copy-on-write state machine that
// applies an ordered stream of drawing commands to a layered,
// tile-backed raster canvas.
//
// The central type is [CanvasState], an immutable snapshot of the
// whole canvas. Commands arrive as [Message] values and are applied
// with [CanvasState.Handle], which returns a new snapshot sharing all
// untouched subtrees with its predecessor. Mutation happens through
// transient (builder) variants of each node type; a transient is
// uniquely owned by the handler that created it and is frozen back
// into immutable form by its Persist method before publication.
//
// Because snapshots share structure, comparing two of them is cheap:
// [CanvasState.Diff] fills a [CanvasDiff] with the set of 64×64 tiles
// that differ, and [CanvasState.Render] re-flattens only those tiles
// into a target layer.
//
// Snapshots are immutable and safe to share across goroutines. The
// interpreter itself is sequential for a given canvas: the snapshot
// produced by command N is the input to command N+1. A [DrawContext]
// holds per-interpreter scratch state and must not be shared
// concurrently.
package paintcore
