// Package tables provides post-processing for Markdown pipe tables produced
// by document extraction.
//
// PDF extraction frequently misreads flowcharts and diagrams as very wide
// tables whose cells repeat the same labels across columns, and even honest
// tables arrive with <br> artifacts, generic Col<n> placeholder headers, and
// redundant sub-header rows. This package parses every pipe table out of a
// Markdown document, classifies each one, and rewrites it in place.
//
// # Pipeline
//
//  1. [FindTables] scans the document and parses each well-formed pipe table.
//  2. [IsDegenerate] decides whether a table is a misdetected diagram.
//  3. [CleanTable] repairs a normal table and re-emits it aligned.
//  4. [RestructureDegenerate] converts a diagram-shaped table into a heading
//     plus role-grouped bullet lists.
//  5. [PostprocessTables] drives 1-4 over a whole document, splicing each
//     replacement back in reverse document order so earlier line indices
//     stay valid.
//
// # Degenerate tables
//
// A table is degenerate when it has at least 10 columns and either the
// average intra-row duplication ratio is 0.5 or higher, or at least half of
// its non-empty headers are generic Col<n> placeholders. Narrower tables are
// never flagged: small legitimate tables repeat values naturally (status
// columns, yes/no grids).
//
// # Concurrency
//
// All functions are pure. They read their input, allocate local state, and
// return new strings, so they are safe to call concurrently from any number
// of goroutines.
package tables
