// Package tracklist holds the selection model for an open playlist: the
// traversal order (sequential or a shuffled permutation), the visible
// cursor, the playing position, follow mode, and the search filter.
//
// Positions passed to and returned from this package are view positions in
// the active traversal order, not indexes into the underlying track slice;
// Track resolves a view position through the permutation.
package tracklist
