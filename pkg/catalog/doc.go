// Package catalog flattens a report's node tree into an id-indexed table
// and indexes its links by endpoint.
//
// Both structures are built once per render request and never mutated
// afterwards. They are bundled in a [Context] that every later stage
// (deduplication, subset selection, edge orientation, graph assembly)
// receives as an argument, so no stage depends on state left behind by a
// previous build.
//
// # Parent references
//
// An [Entry] records the id of its structural parent as a plain lookup key
// into the catalog. The tree is owned parent-to-children only; resolving a
// parent always goes through [Catalog.Parent].
//
// # Errors
//
// Duplicate node ids are fatal and abort the walk with an
// errors.ErrCodeDuplicateID error. Everything else (unknown types, links to
// missing nodes, nodes carrying several detail records) is reported as a
// diagnostic and the offending element is kept, defaulted or dropped.
package catalog
