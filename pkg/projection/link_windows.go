//go:build windows

package projection

import (
	"os/exec"
)

// createLink creates a symlink. Unprivileged symlink creation on
// Windows requires developer mode; when it is unavailable, directory
// links fall back to an NTFS junction, which behaves identically for
// every read path the node resolver takes.
func (e *Engine) createLink(targetPath, linkPath string, kind LinkKind) error {
	err := e.fs.Symlink(targetPath, linkPath)
	if err == nil || kind != DirectorySymlink {
		return err
	}

	// mklink is a cmd.exe builtin, not a standalone executable.
	cmd := exec.Command("cmd", "/c", "mklink", "/J", linkPath, targetPath)
	if jerr := cmd.Run(); jerr != nil {
		return err
	}
	return nil
}
