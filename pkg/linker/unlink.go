package linker

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/monolink/pkg/logging"
	"github.com/arthur-debert/monolink/pkg/manifest"
	"github.com/arthur-debert/monolink/pkg/paths"
	"github.com/arthur-debert/monolink/pkg/projection"
	"github.com/arthur-debert/monolink/pkg/types"
)

// Unlink removes every engine-created symlink under each project's
// node_modules folder. Real content is left untouched: only symlinks
// are removed, so anything a user placed there survives. Returns the
// number of links removed.
func Unlink(fs types.FS, layout paths.Layout, ws *manifest.Workspace) (int, error) {
	logger := logging.GetLogger("linker.unlink")
	engine := projection.New(fs)

	removed := 0
	for _, project := range ws.Projects {
		modulesDir := layout.NodeModulesDir(project.Folder)
		entries, err := fs.ReadDir(modulesDir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, err
		}

		for _, entry := range entries {
			entryPath := filepath.Join(modulesDir, entry.Name())

			// Scope folders hold the actual entries one level down.
			if entry.IsDir() && strings.HasPrefix(entry.Name(), "@") {
				scoped, err := fs.ReadDir(entryPath)
				if err != nil {
					return removed, err
				}
				for _, s := range scoped {
					ok, err := engine.RemoveLink(filepath.Join(entryPath, s.Name()))
					if err != nil {
						return removed, err
					}
					if ok {
						removed++
					}
				}
				continue
			}

			ok, err := engine.RemoveLink(entryPath)
			if err != nil {
				return removed, err
			}
			if ok {
				removed++
			}
		}

		logger.Debug().
			Str("project", project.Name).
			Msg("project unlinked")
	}

	logger.Info().Int("removed", removed).Msg("workspace unlinked")
	return removed, nil
}
