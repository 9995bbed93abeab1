// Package heatmap turns bucketed sparse rows into a dense matrix for
// heat-map rendering.
//
// The bucket axis is derived once, from the keys of the first row passed to
// BuildColumn. Keys are parsed as base-10 integers and sorted numerically;
// every key opens a bucket that ends at the next key, the last one is
// unbounded. Every later row is densified against that frozen axis: keys the
// row lacks get the caller's default, keys the axis lacks are ignored.
//
// All rows of one heat map must share the same key set. WithStrictAxis makes
// BuildColumn reject rows whose largest key differs from the last bucket.
//
// FixMissingColumns runs after all rows are built and inserts all-default
// columns for expected ids the storage did not return.
//
// A HeatMap is not safe for concurrent use.
package heatmap
