package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/monolink/pkg/errors"
)

// Environment variable names
const (
	// EnvWorkspaceRoot is the primary environment variable for the workspace location
	EnvWorkspaceRoot = "MONOLINK_WORKSPACE"

	// EnvCommonDir overrides the common folder the backend installs into
	EnvCommonDir = "MONOLINK_COMMON_DIR"
)

// Fixed directory and file names.
// IMPORTANT: These constants define the on-disk contract between the
// installation backend and the linker. They are not user-configurable;
// user-configurable paths belong in pkg/config.
const (
	// WorkspaceFileName is the workspace inventory file at the workspace root
	WorkspaceFileName = "workspace.yaml"

	// DefaultCommonDir is the default common folder, relative to the workspace root
	DefaultCommonDir = "common/temp"

	// StoreDirName holds the nested backend's staged copies, keyed name/version
	StoreDirName = "store"

	// SharedDirName holds the flattened backend's consolidated installation
	SharedDirName = "shared"

	// ProjectsDirName holds the per-project staging manifests
	ProjectsDirName = "projects"

	// NodeModulesDirName is the per-consumer dependency folder
	NodeModulesDirName = "node_modules"

	// BinShimsDirName is the executable shims folder inside a node_modules tree
	BinShimsDirName = ".bin"

	// ProjectManifestName is the manifest file inside every package folder
	ProjectManifestName = "package.json"

	// LinkManifestName is the persisted link manifest artifact
	LinkManifestName = "link-manifest.json"
)

// Layout provides centralized path management for monolink
type Layout interface {
	WorkspaceRoot() string
	WorkspaceFilePath() string
	CommonDir() string

	// Nested backend store
	StoreDir() string
	StorePackageDir(name, version string) string

	// Flattened backend shared installation
	SharedModulesDir() string
	SharedEntryPath(name, version string) string
	SharedBinShimsDir() string

	// Per-project staging output
	StagingManifestPath(projectName string) string

	// Per-consumer node_modules entries
	NodeModulesDir(packageFolder string) string
	ModuleEntryPath(packageFolder, depName string) string
	BinShimsDir(projectFolder string) string

	// Package manifests
	PackageManifestPath(packageFolder string) string

	LinkManifestPath() string
}

type layout struct {
	workspaceRoot string
	commonDir     string
}

// New creates a Layout rooted at workspaceRoot. If workspaceRoot is
// empty it is resolved from MONOLINK_WORKSPACE or, failing that, by
// walking up from the current directory until workspace.yaml is found.
// commonDir may be relative to the workspace root; when empty, the
// MONOLINK_COMMON_DIR override or the default common/temp is used.
func New(workspaceRoot, commonDir string) (Layout, error) {
	l := &layout{}

	if workspaceRoot == "" {
		root, err := findWorkspaceRoot()
		if err != nil {
			return nil, err
		}
		workspaceRoot = root
	}

	absRoot, err := filepath.Abs(workspaceRoot)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for workspace root")
	}
	l.workspaceRoot = absRoot

	if commonDir == "" {
		commonDir = os.Getenv(EnvCommonDir)
	}
	if commonDir == "" {
		commonDir = DefaultCommonDir
	}
	if !filepath.IsAbs(commonDir) {
		commonDir = filepath.Join(l.workspaceRoot, filepath.FromSlash(commonDir))
	}
	l.commonDir = commonDir

	return l, nil
}

// findWorkspaceRoot determines the workspace root using the following priority:
// 1. MONOLINK_WORKSPACE environment variable (if set)
// 2. Nearest ancestor of the current directory containing workspace.yaml
func findWorkspaceRoot() (string, error) {
	if root := os.Getenv(EnvWorkspaceRoot); root != "" {
		return root, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrFileAccess, "failed to get working directory")
	}

	for {
		candidate := filepath.Join(dir, WorkspaceFileName)
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.Newf(errors.ErrConfigLoad,
		"no %s found in the current directory or any ancestor; set %s or run inside a workspace",
		WorkspaceFileName, EnvWorkspaceRoot)
}

func (l *layout) WorkspaceRoot() string {
	return l.workspaceRoot
}

func (l *layout) WorkspaceFilePath() string {
	return filepath.Join(l.workspaceRoot, WorkspaceFileName)
}

func (l *layout) CommonDir() string {
	return l.commonDir
}

func (l *layout) StoreDir() string {
	return filepath.Join(l.commonDir, StoreDirName)
}

// StorePackageDir keys staged copies by name and version. Scoped names
// ("@scope/pkg") keep their slash, producing a nested folder.
func (l *layout) StorePackageDir(name, version string) string {
	return filepath.Join(l.StoreDir(), filepath.FromSlash(name), version)
}

func (l *layout) SharedModulesDir() string {
	return filepath.Join(l.commonDir, SharedDirName, NodeModulesDirName)
}

// SharedEntryPath is the flattened backend's per-version entry. Scope
// separators are folded into the folder name so one flat directory can
// hold every (name, version) pair: "@scope/pkg" at 2.1.0 becomes
// "@scope+pkg@2.1.0".
func (l *layout) SharedEntryPath(name, version string) string {
	encoded := strings.ReplaceAll(name, "/", "+")
	return filepath.Join(l.SharedModulesDir(), encoded+"@"+version)
}

func (l *layout) SharedBinShimsDir() string {
	return filepath.Join(l.SharedModulesDir(), BinShimsDirName)
}

func (l *layout) StagingManifestPath(projectName string) string {
	return filepath.Join(l.commonDir, ProjectsDirName, filepath.FromSlash(projectName), ProjectManifestName)
}

func (l *layout) NodeModulesDir(packageFolder string) string {
	return filepath.Join(packageFolder, NodeModulesDirName)
}

func (l *layout) ModuleEntryPath(packageFolder, depName string) string {
	return filepath.Join(packageFolder, NodeModulesDirName, filepath.FromSlash(depName))
}

func (l *layout) BinShimsDir(projectFolder string) string {
	return filepath.Join(projectFolder, NodeModulesDirName, BinShimsDirName)
}

func (l *layout) PackageManifestPath(packageFolder string) string {
	return filepath.Join(packageFolder, ProjectManifestName)
}

func (l *layout) LinkManifestPath() string {
	return filepath.Join(l.commonDir, LinkManifestName)
}
