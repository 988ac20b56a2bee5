package paths_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/monolink/pkg/errors"
	"github.com/arthur-debert/monolink/pkg/paths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ExplicitRoot(t *testing.T) {
	tempDir := t.TempDir()

	l, err := paths.New(tempDir, "")
	require.NoError(t, err)

	assert.Equal(t, tempDir, l.WorkspaceRoot())
	assert.Equal(t, filepath.Join(tempDir, "workspace.yaml"), l.WorkspaceFilePath())
	assert.Equal(t, filepath.Join(tempDir, "common", "temp"), l.CommonDir())
}

func TestNew_EnvRoot(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv(paths.EnvWorkspaceRoot, tempDir)

	l, err := paths.New("", "")
	require.NoError(t, err)
	assert.Equal(t, tempDir, l.WorkspaceRoot())
}

func TestNew_WalkUpDiscovery(t *testing.T) {
	tempDir := t.TempDir()
	nested := filepath.Join(tempDir, "tools", "a")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "workspace.yaml"), []byte("projects: []\n"), 0644))

	t.Setenv(paths.EnvWorkspaceRoot, "")
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	l, err := paths.New("", "")
	require.NoError(t, err)

	// Resolve symlinks before comparing; t.TempDir may live behind one.
	wantRoot, err := filepath.EvalSymlinks(tempDir)
	require.NoError(t, err)
	gotRoot, err := filepath.EvalSymlinks(l.WorkspaceRoot())
	require.NoError(t, err)
	assert.Equal(t, wantRoot, gotRoot)
}

func TestNew_NoWorkspaceFound(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv(paths.EnvWorkspaceRoot, "")

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tempDir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	_, err = paths.New("", "")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
}

func TestLayout_CommonFolderPaths(t *testing.T) {
	tempDir := t.TempDir()
	l, err := paths.New(tempDir, "common/temp")
	require.NoError(t, err)

	common := filepath.Join(tempDir, "common", "temp")

	assert.Equal(t, filepath.Join(common, "store"), l.StoreDir())
	assert.Equal(t, filepath.Join(common, "store", "lodash", "1.0.0"), l.StorePackageDir("lodash", "1.0.0"))
	assert.Equal(t, filepath.Join(common, "store", "@scope", "pkg", "2.1.0"), l.StorePackageDir("@scope/pkg", "2.1.0"))
	assert.Equal(t, filepath.Join(common, "shared", "node_modules"), l.SharedModulesDir())
	assert.Equal(t, filepath.Join(common, "shared", "node_modules", "lodash@1.0.0"), l.SharedEntryPath("lodash", "1.0.0"))
	assert.Equal(t, filepath.Join(common, "shared", "node_modules", "@scope+pkg@2.1.0"), l.SharedEntryPath("@scope/pkg", "2.1.0"))
	assert.Equal(t, filepath.Join(common, "shared", "node_modules", ".bin"), l.SharedBinShimsDir())
	assert.Equal(t, filepath.Join(common, "projects", "a", "package.json"), l.StagingManifestPath("a"))
	assert.Equal(t, filepath.Join(common, "link-manifest.json"), l.LinkManifestPath())
}

func TestLayout_ProjectPaths(t *testing.T) {
	tempDir := t.TempDir()
	l, err := paths.New(tempDir, "")
	require.NoError(t, err)

	projectFolder := filepath.Join(tempDir, "tools", "a")

	assert.Equal(t, filepath.Join(projectFolder, "node_modules"), l.NodeModulesDir(projectFolder))
	assert.Equal(t, filepath.Join(projectFolder, "node_modules", "lodash"), l.ModuleEntryPath(projectFolder, "lodash"))
	assert.Equal(t, filepath.Join(projectFolder, "node_modules", "@scope", "pkg"), l.ModuleEntryPath(projectFolder, "@scope/pkg"))
	assert.Equal(t, filepath.Join(projectFolder, "node_modules", ".bin"), l.BinShimsDir(projectFolder))
	assert.Equal(t, filepath.Join(projectFolder, "package.json"), l.PackageManifestPath(projectFolder))
}

func TestNew_CommonDirEnvOverride(t *testing.T) {
	tempDir := t.TempDir()
	override := filepath.Join(tempDir, "elsewhere")
	t.Setenv(paths.EnvCommonDir, override)

	l, err := paths.New(tempDir, "")
	require.NoError(t, err)
	assert.Equal(t, override, l.CommonDir())
}
