// Package projection owns the primitive filesystem mutations the
// linking strategies rely on: creating symlinks idempotently, replacing
// stale links, and refusing to destroy real files or non-empty
// directories that sit where a link should go.
package projection
