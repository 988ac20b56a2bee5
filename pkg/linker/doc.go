// Package linker builds each project's dependency-resolution tree and
// projects it onto disk as symlinks. Two strategies cover the two
// installation backend layouts: NestedStrategy links into per-consumer
// store copies and populates their internal node_modules recursively,
// FlattenedStrategy links into a shared content-addressed folder with
// no recursion. Both are idempotent and never delete real file content.
package linker
