// Package transform computes new columns of a frame.Dataset from per-row
// functions. Columns are evaluated one after another in Spec order; the rows
// of a single column are evaluated sequentially or fanned out over a
// fixed-size worker pool, and results always land at their original row
// position. The first row error aborts the call.
package transform
