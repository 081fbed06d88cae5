// Package frame holds the in-memory tabular model shared by sources,
// transforms and sinks: a column-oriented Dataset with ordered, uniquely
// named columns and a Row view that resolves values by column name.
package frame
