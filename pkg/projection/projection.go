package projection

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/monolink/pkg/errors"
	"github.com/arthur-debert/monolink/pkg/logging"
	"github.com/arthur-debert/monolink/pkg/types"
)

// LinkKind selects the flavor of symlink to create.
type LinkKind int

const (
	// FileSymlink links a single file.
	FileSymlink LinkKind = iota
	// DirectorySymlink links a directory. On platforms without
	// unprivileged symlink rights this falls back to a junction with
	// the same externally observable behavior.
	DirectorySymlink
)

// Engine projects dependency trees onto the filesystem.
type Engine struct {
	fs types.FS
}

// New creates a projection engine over the given filesystem.
func New(fs types.FS) *Engine {
	return &Engine{fs: fs}
}

// EnsureDir creates path and any missing parents.
func (e *Engine) EnsureDir(path string) error {
	if err := e.fs.MkdirAll(path, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory %s", path)
	}
	return nil
}

// RequireDir verifies that path already exists as a directory. Tree
// roots (project folders, staged copies) are owned by the workspace or
// the installation backend; a missing one is reported, never created.
func (e *Engine) RequireDir(path string) error {
	info, err := e.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Newf(errors.ErrNotFound,
				"%s does not exist; refusing to create it", path).
				WithDetail("path", path)
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", path)
	}
	if !info.IsDir() {
		return errors.Newf(errors.ErrFilesystemConflict,
			"%s is not a directory", path).
			WithDetail("path", path)
	}
	return nil
}

// EnsureSymlink idempotently creates a symlink at linkPath pointing at
// targetPath. An existing symlink at linkPath is replaced; an existing
// empty directory is removed first. Real content at linkPath is never
// deleted: that fails with a FILESYSTEM_CONFLICT error instead.
func (e *Engine) EnsureSymlink(targetPath, linkPath string, kind LinkKind) error {
	logger := logging.GetLogger("projection")

	info, err := e.fs.Lstat(linkPath)
	switch {
	case err == nil && info.Mode()&os.ModeSymlink != 0:
		// Already the right link: leave it alone.
		if current, rerr := e.fs.Readlink(linkPath); rerr == nil && current == targetPath {
			logger.Trace().Str("link", linkPath).Msg("symlink already in place")
			return nil
		}
		if err := e.fs.Remove(linkPath); err != nil {
			return errors.Wrapf(err, errors.ErrSymlinkCreate,
				"failed to remove stale symlink %s", linkPath)
		}

	case err == nil && info.IsDir():
		// Only an empty directory may be replaced; os.Remove refuses
		// non-empty directories, but check first so the error names
		// the real condition.
		entries, rerr := e.fs.ReadDir(linkPath)
		if rerr != nil {
			return errors.Wrapf(rerr, errors.ErrFileAccess, "failed to inspect %s", linkPath)
		}
		if len(entries) > 0 {
			return errors.Newf(errors.ErrFilesystemConflict,
				"%s is a non-empty directory not created by monolink; refusing to delete it", linkPath).
				WithDetail("path", linkPath)
		}
		if err := e.fs.Remove(linkPath); err != nil {
			return errors.Wrapf(err, errors.ErrSymlinkCreate,
				"failed to remove empty directory %s", linkPath)
		}

	case err == nil:
		return errors.Newf(errors.ErrFilesystemConflict,
			"%s already holds real content not created by monolink; refusing to delete it", linkPath).
			WithDetail("path", linkPath)

	case !os.IsNotExist(err):
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", linkPath)
	}

	if err := e.EnsureDir(filepath.Dir(linkPath)); err != nil {
		return err
	}

	if err := e.createLink(targetPath, linkPath, kind); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkCreate,
			"failed to create symlink %s -> %s", linkPath, targetPath)
	}

	logger.Debug().
		Str("link", linkPath).
		Str("target", targetPath).
		Msg("symlink created")
	return nil
}

// RemoveLink removes linkPath if it is a symlink and reports whether it
// did. Anything that is not a symlink is left untouched.
func (e *Engine) RemoveLink(linkPath string) (bool, error) {
	info, err := e.fs.Lstat(linkPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", linkPath)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return false, nil
	}
	if err := e.fs.Remove(linkPath); err != nil {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "failed to remove symlink %s", linkPath)
	}
	return true, nil
}
