//go:build !windows

package projection

// createLink creates a symlink. On POSIX systems file and directory
// symlinks are the same primitive, so kind is irrelevant here.
func (e *Engine) createLink(targetPath, linkPath string, _ LinkKind) error {
	return e.fs.Symlink(targetPath, linkPath)
}
