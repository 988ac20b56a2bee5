// Package testutil provides test infrastructure for monolink:
// an in-memory types.FS implementation and a workspace builder that
// assembles fake monorepos with backend staging output.
package testutil
