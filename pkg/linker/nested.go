package linker

import (
	"context"
	"sync"

	"github.com/arthur-debert/monolink/pkg/depgraph"
	"github.com/arthur-debert/monolink/pkg/errors"
	"github.com/arthur-debert/monolink/pkg/logging"
	"github.com/arthur-debert/monolink/pkg/manifest"
	"github.com/arthur-debert/monolink/pkg/paths"
	"github.com/arthur-debert/monolink/pkg/projection"
	"github.com/arthur-debert/monolink/pkg/types"
)

// NestedStrategy reproduces, per consumer, the dependency tree the
// nested installation backend would have produced: every project links
// into the backend's store copies, and each store copy's own
// node_modules is populated recursively so two consumers can depend on
// different resolved versions of the same transitive dependency.
type NestedStrategy struct {
	fs     types.FS
	layout paths.Layout
	engine *projection.Engine
	ws     *manifest.Workspace

	// Store copies are shared across the whole run, so their internal
	// trees are materialized exactly once, keyed by name@version. An
	// already-claimed key is a terminal leaf; re-expanding it would
	// turn dependency cycles into infinite recursion.
	mu           sync.Mutex
	materialized map[string]bool
}

// NewNested creates the nested link strategy.
func NewNested(fs types.FS, layout paths.Layout, ws *manifest.Workspace) *NestedStrategy {
	return &NestedStrategy{
		fs:           fs,
		layout:       layout,
		engine:       projection.New(fs),
		ws:           ws,
		materialized: make(map[string]bool),
	}
}

// Name implements Strategy.
func (s *NestedStrategy) Name() string { return "nested" }

// LinkProject implements Strategy.
func (s *NestedStrategy) LinkProject(ctx context.Context, project *types.ProjectDescriptor) (types.LinkManifestEntry, error) {
	logger := logging.GetLogger("linker.nested")
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

		storeDir := s.layout.StorePackageDir(dep.Name, dep.Version)
		if _, err := s.fs.Stat(storeDir); err != nil {
			return entry, errors.Newf(errors.ErrMissingDependency,
				"project %q declares %s@%s but the backend staged no copy at %s; the install step did not complete or manifest and lockfile disagree",
				project.Name, dep.Name, dep.Version, storeDir).
				WithProject(project.Name).
				WithDependency(dep.Name)
		}

		node := depgraph.NewLinkedNode(dep.Name, dep.Version,
			s.layout.ModuleEntryPath(project.Folder, dep.Name))
		node.SymlinkTargetFolderPath = storeDir
		if err := root.AddChild(node); err != nil {
			return entry, err
		}

		// The store copy owns its own subtree; populate it (once per
		// name@version across the whole run) before the project is
		// considered linked.
		if err := s.ensureStorePackage(project.Name, dep.Name, dep.Version); err != nil {
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
		Msg("nested tree materialized")
	return entry, nil
}

// ensureStorePackage populates the node_modules folder inside one store
// copy: a symlink per dependency of that copy, recursing into transitive
// store copies. Content is keyed by name+version, so a pair required by
// two ancestors is materialized once and reused; each tree position
// still gets its own symlink from its consumer.
func (s *NestedStrategy) ensureStorePackage(consumer, name, version string) error {
	s.mu.Lock()
	if s.materialized[key(name, version)] {
		s.mu.Unlock()
		return nil
	}
	s.materialized[key(name, version)] = true
	s.mu.Unlock()

	return s.populateStorePackage(consumer, name, version)
}

func (s *NestedStrategy) populateStorePackage(consumer, name, version string) error {
	logger := logging.GetLogger("linker.nested")

	storeDir := s.layout.StorePackageDir(name, version)
	pm, err := manifest.ReadPackageManifest(s.fs, s.layout.PackageManifestPath(storeDir))
	if err != nil {
		return errors.Wrapf(err, errors.ErrManifestParse,
			"staged copy %s@%s has no readable manifest", name, version).
			WithDependency(name)
	}
	if len(pm.Dependencies) == 0 {
		return nil
	}

	root := depgraph.NewLinkedNode(name, version, storeDir)

	for _, depName := range sortedDependencyNames(pm.Dependencies) {
		depVersion := pm.Dependencies[depName]
		child := depgraph.NewLinkedNode(depName, depVersion,
			s.layout.ModuleEntryPath(storeDir, depName))

		// An internal name at any nesting depth links straight to the
		// owning project, never into the store.
		if sibling := s.ws.Project(depName); sibling != nil {
			child.SymlinkTargetFolderPath = sibling.Folder
			if err := root.AddChild(child); err != nil {
				return err
			}
			continue
		}

		childStore := s.layout.StorePackageDir(depName, depVersion)
		if _, err := s.fs.Stat(childStore); err != nil {
			return errors.Newf(errors.ErrMissingDependency,
				"package %s@%s (required by project %q) declares %s@%s but the backend staged no copy at %s",
				name, version, consumer, depName, depVersion, childStore).
				WithProject(consumer).
				WithDependency(depName)
		}
		child.SymlinkTargetFolderPath = childStore
		if err := root.AddChild(child); err != nil {
			return err
		}

		if err := s.ensureStorePackage(consumer, depName, depVersion); err != nil {
			return err
		}
	}

	if err := materializeTree(s.engine, root); err != nil {
		return err
	}

	logger.Trace().
		Str("package", key(name, version)).
		Int("dependencies", len(pm.Dependencies)).
		Msg("store package populated")
	return nil
}

func key(name, version string) string {
	return name + "@" + version
}
