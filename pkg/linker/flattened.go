package linker

import (
	"context"
	"os"
	"path/filepath"

	"github.com/arthur-debert/monolink/pkg/depgraph"
	"github.com/arthur-debert/monolink/pkg/errors"
	"github.com/arthur-debert/monolink/pkg/logging"
	"github.com/arthur-debert/monolink/pkg/manifest"
	"github.com/arthur-debert/monolink/pkg/paths"
	"github.com/arthur-debert/monolink/pkg/projection"
	"github.com/arthur-debert/monolink/pkg/types"
)

// FlattenedStrategy links each first-level dependency straight into the
// backend's single consolidated installation. The backend guarantees
// one physical, content-addressed location per resolved (name, version)
// pair, so no recursion below depth one is needed; deeper levels are
// the backend's responsibility.
type FlattenedStrategy struct {
	fs     types.FS
	layout paths.Layout
	engine *projection.Engine
	ws     *manifest.Workspace
}

// NewFlattened creates the flattened link strategy.
func NewFlattened(fs types.FS, layout paths.Layout, ws *manifest.Workspace) *FlattenedStrategy {
	return &FlattenedStrategy{
		fs:     fs,
		layout: layout,
		engine: projection.New(fs),
		ws:     ws,
	}
}

// Name implements Strategy.
func (s *FlattenedStrategy) Name() string { return "flattened" }

// LinkProject implements Strategy.
func (s *FlattenedStrategy) LinkProject(ctx context.Context, project *types.ProjectDescriptor) (types.LinkManifestEntry, error) {
	logger := logging.GetLogger("linker.flattened")
	entry := types.LinkManifestEntry{Project: project.Name}

	if _, err := s.fs.Stat(project.Folder); err != nil {
		return entry, errors.Newf(errors.ErrConfigValid,
			"project %q folder %s does not exist; the workspace inventory is stale",
			project.Name, project.Folder).
			WithProject(project.Name)
	}

	root := depgraph.NewProjectRoot(project)

	localLinks, err := addSiblingLinks(root, s.ws, project, s.layout)
	if err != nil {
		return entry, err
	}
	entry.LocalLinks = localLinks

	ordinary, err := manifest.OrdinaryDependencies(project)
	if err != nil {
		return entry, err
	}

	for _, dep := range ordinary {
		if err := ctx.Err(); err != nil {
			return entry, errors.Wrap(err, errors.ErrInternal, "linking canceled")
		}

		resolved, err := s.resolveSharedEntry(project, dep)
		if err != nil {
			return entry, err
		}

		node := depgraph.NewLinkedNode(dep.Name, dep.Version,
			s.layout.ModuleEntryPath(project.Folder, dep.Name))
		node.SymlinkTargetFolderPath = resolved
		if err := root.AddChild(node); err != nil {
			return entry, err
		}
	}

	// The backend's executable shims folder, when present, is linked
	// once per project, outside the per-dependency loop.
	if sharedBin := s.layout.SharedBinShimsDir(); s.exists(sharedBin) {
		shims := depgraph.NewLinkedNode(paths.BinShimsDirName, "", s.layout.BinShimsDir(project.Folder))
		shims.SymlinkTargetFolderPath = sharedBin
		if err := root.AddChild(shims); err != nil {
			return entry, err
		}
	}

	if err := materializeTree(s.engine, root); err != nil {
		return entry, err
	}

	logger.Debug().
		Str("project", project.Name).
		Int("dependencies", len(ordinary)).
		Int("localLinks", len(localLinks)).
		Msg("flattened tree materialized")
	return entry, nil
}

// resolveSharedEntry verifies the backend invariant for one dependency
// and returns the location its shared symlink resolves to, following
// exactly one hop. The backend's entry must exist and must itself be a
// symlink; anything else means the backend's install step is broken or
// incomplete and nothing here can repair it.
func (s *FlattenedStrategy) resolveSharedEntry(project *types.ProjectDescriptor, dep types.ResolvedDependency) (string, error) {
	logger := logging.GetLogger("linker.flattened")
	sharedEntry := s.layout.SharedEntryPath(dep.Name, dep.Version)

	info, err := s.fs.Lstat(sharedEntry)
	if err != nil {
		return "", errors.Newf(errors.ErrBackendInvariant,
			"project %q needs %s@%s but the backend's shared entry %s does not exist; the backend install step is broken or incomplete",
			project.Name, dep.Name, dep.Version, sharedEntry).
			WithProject(project.Name).
			WithDependency(dep.Name)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return "", errors.Newf(errors.ErrBackendInvariant,
			"the backend's shared entry %s for %s@%s is not a symlink; the backend install step is broken",
			sharedEntry, dep.Name, dep.Version).
			WithProject(project.Name).
			WithDependency(dep.Name)
	}

	// One hop only: we point at what the backend resolved to, and
	// never chase further aliases.
	resolved, err := s.fs.Readlink(sharedEntry)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrBackendInvariant,
			"failed to read the backend's shared entry %s", sharedEntry).
			WithProject(project.Name).
			WithDependency(dep.Name)
	}
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(filepath.Dir(sharedEntry), resolved)
	}

	// Diagnostic only: surface the installed version in trace logs.
	// Linking does not depend on this read succeeding.
	if pm, err := manifest.ReadPackageManifest(s.fs, s.layout.PackageManifestPath(resolved)); err == nil {
		logger.Trace().
			Str("dependency", dep.Name).
			Str("installedVersion", pm.Version).
			Msg("shared entry resolved")
	}

	return resolved, nil
}

func (s *FlattenedStrategy) exists(path string) bool {
	_, err := s.fs.Lstat(path)
	return err == nil
}
