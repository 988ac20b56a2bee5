// Package manifest loads the workspace inventory and the installation
// backend's resolved staging manifests, and persists the link manifest
// artifact. It performs no linking itself.
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/monolink/pkg/errors"
	"github.com/arthur-debert/monolink/pkg/logging"
	"github.com/arthur-debert/monolink/pkg/paths"
	"github.com/arthur-debert/monolink/pkg/types"
)

// WorkspaceFile is the parsed workspace.yaml inventory.
type WorkspaceFile struct {
	// CommonFolder overrides the backend's common folder, relative to
	// the workspace root. Empty means the default.
	CommonFolder string `yaml:"commonFolder"`

	Projects []WorkspaceProject `yaml:"projects"`
}

// WorkspaceProject is one project entry in workspace.yaml.
type WorkspaceProject struct {
	Name   string `yaml:"name"`
	Folder string `yaml:"folder"`
}

// LoadWorkspaceFile reads and parses workspace.yaml.
func LoadWorkspaceFile(fs types.FS, path string) (*WorkspaceFile, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to read %s", path)
	}

	var ws WorkspaceFile
	if err := yaml.Unmarshal(data, &ws); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse %s", path)
	}

	seen := make(map[string]bool, len(ws.Projects))
	for _, p := range ws.Projects {
		if p.Name == "" || p.Folder == "" {
			return nil, errors.Newf(errors.ErrConfigValid,
				"workspace project entries need both name and folder (got name=%q folder=%q)", p.Name, p.Folder)
		}
		if seen[p.Name] {
			return nil, errors.Newf(errors.ErrConfigValid,
				"workspace lists project %q more than once", p.Name)
		}
		seen[p.Name] = true
	}

	return &ws, nil
}

// Workspace is the fully loaded project set: every local project with
// its staging manifest, indexed by name.
type Workspace struct {
	Projects []*types.ProjectDescriptor

	byName map[string]*types.ProjectDescriptor
}

// Project returns the local project with the given name, or nil.
func (w *Workspace) Project(name string) *types.ProjectDescriptor {
	return w.byName[name]
}

// Reader loads project descriptors and resolves their dependency lists
// against the backend's staging output.
type Reader struct {
	fs     types.FS
	layout paths.Layout
}

// NewReader creates a manifest reader over the given filesystem and layout.
func NewReader(fs types.FS, layout paths.Layout) *Reader {
	return &Reader{fs: fs, layout: layout}
}

// LoadProjects builds a descriptor for every workspace project,
// attaching the backend's staging manifest. A missing or malformed
// staging manifest is fatal: it means the installation step did not
// complete for that project.
func (r *Reader) LoadProjects(ws *WorkspaceFile) (*Workspace, error) {
	logger := logging.GetLogger("manifest")

	workspace := &Workspace{
		byName: make(map[string]*types.ProjectDescriptor, len(ws.Projects)),
	}

	for _, entry := range ws.Projects {
		folder := entry.Folder
		if !filepath.IsAbs(folder) {
			folder = filepath.Join(r.layout.WorkspaceRoot(), filepath.FromSlash(entry.Folder))
		}

		desc := &types.ProjectDescriptor{
			Name:   entry.Name,
			Folder: folder,
		}

		// Best-effort read of the project's own manifest for its
		// declared version. Diagnostic only: linking does not depend
		// on it.
		if pm, err := ReadPackageManifest(r.fs, r.layout.PackageManifestPath(folder)); err == nil {
			desc.Version = pm.Version
		} else {
			logger.Debug().
				Str("project", entry.Name).
				Err(err).
				Msg("could not read project manifest version")
		}

		staging, err := r.readStagingManifest(entry.Name)
		if err != nil {
			return nil, err
		}
		desc.Staging = staging

		workspace.Projects = append(workspace.Projects, desc)
		workspace.byName[entry.Name] = desc
	}

	return workspace, nil
}

func (r *Reader) readStagingManifest(projectName string) (*types.StagingManifest, error) {
	path := r.layout.StagingManifestPath(projectName)
	data, err := r.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrNotFound,
				"no staging manifest for project %q at %s; run the installation backend first", projectName, path).
				WithProject(projectName)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read staging manifest %s", path).
			WithProject(projectName)
	}

	var staging types.StagingManifest
	if err := json.Unmarshal(data, &staging); err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestParse,
			"failed to parse staging manifest %s", path).
			WithProject(projectName)
	}

	// A name cannot be both an ordinary and a local dependency; the two
	// resolve to different targets and the backend resolved only one.
	for _, name := range sortedKeys(staging.LocalDependencies) {
		if _, ok := staging.Dependencies[name]; ok {
			return nil, errors.Newf(errors.ErrConfigValid,
				"staging manifest for project %q lists %q as both an ordinary and a local dependency", projectName, name).
				WithProject(projectName).
				WithDependency(name)
		}
	}

	return &staging, nil
}

// InternalDependencies resolves a project's internal dependency names
// against the workspace, sorted by name. A name with no matching local
// project means the project graph changed without re-resolving and is
// fatal.
func (w *Workspace) InternalDependencies(p *types.ProjectDescriptor) ([]types.InternalDependency, error) {
	names := sortedKeys(p.Staging.LocalDependencies)

	deps := make([]types.InternalDependency, 0, len(names))
	for _, name := range names {
		sibling := w.Project(name)
		if sibling == nil {
			return nil, errors.Newf(errors.ErrConfigValid,
				"project %q declares internal dependency %q but no such local project exists; the project graph is stale",
				p.Name, name).
				WithProject(p.Name).
				WithDependency(name)
		}
		deps = append(deps, types.InternalDependency{Name: name, Project: sibling})
	}
	return deps, nil
}

// OrdinaryDependencies returns a project's third-party dependencies
// with the exact versions the backend resolved, sorted by name.
func OrdinaryDependencies(p *types.ProjectDescriptor) ([]types.ResolvedDependency, error) {
	names := sortedKeys(p.Staging.Dependencies)

	deps := make([]types.ResolvedDependency, 0, len(names))
	for _, name := range names {
		version := p.Staging.Dependencies[name]
		if _, err := semver.NewVersion(version); err != nil {
			return nil, errors.Wrapf(err, errors.ErrVersionInvalid,
				"project %q dependency %q has unparseable resolved version %q", p.Name, name, version).
				WithProject(p.Name).
				WithDependency(name)
		}
		deps = append(deps, types.ResolvedDependency{Name: name, Version: version})
	}
	return deps, nil
}

// ReadPackageManifest reads a package.json-style manifest.
func ReadPackageManifest(fs types.FS, path string) (*types.PackageManifest, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read manifest %s", path)
	}

	var pm types.PackageManifest
	if err := json.Unmarshal(data, &pm); err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestParse, "failed to parse manifest %s", path)
	}
	return &pm, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
