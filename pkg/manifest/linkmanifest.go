package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/arthur-debert/monolink/pkg/errors"
	"github.com/arthur-debert/monolink/pkg/types"
)

// WriteLinkManifest persists the link manifest artifact. It is called
// exactly once, after every project linked successfully; partial runs
// never reach it, so a stale manifest is never overwritten with a
// falsely successful one.
func WriteLinkManifest(fs types.FS, path string, m *types.LinkManifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrManifestWrite, "failed to serialize link manifest")
	}
	data = append(data, '\n')

	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory for %s", path)
	}
	if err := fs.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrManifestWrite, "failed to write link manifest %s", path)
	}
	return nil
}

// ReadLinkManifest loads a previously written link manifest. A missing
// file returns (nil, nil): no prior successful run exists.
func ReadLinkManifest(fs types.FS, path string) (*types.LinkManifest, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read link manifest %s", path)
	}

	var m types.LinkManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestParse, "failed to parse link manifest %s", path)
	}
	return &m, nil
}
