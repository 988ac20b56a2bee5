package linker

import (
	"sort"

	"github.com/arthur-debert/monolink/pkg/depgraph"
	"github.com/arthur-debert/monolink/pkg/manifest"
	"github.com/arthur-debert/monolink/pkg/paths"
	"github.com/arthur-debert/monolink/pkg/projection"
	"github.com/arthur-debert/monolink/pkg/types"
)

// materializeTree projects a dependency tree onto the filesystem. A
// symlink node gets its link created and its subtree is NOT walked: the
// content behind the target is owned by whatever created the target. A
// non-symlink node is a tree root whose directory must already exist;
// a missing root means the workspace or backend output is broken, and
// creating it here would only produce a folder of dangling links.
func materializeTree(engine *projection.Engine, node *depgraph.Node) error {
	if node.IsSymlink() {
		return engine.EnsureSymlink(node.SymlinkTargetFolderPath, node.FolderPath, projection.DirectorySymlink)
	}

	if err := engine.RequireDir(node.FolderPath); err != nil {
		return err
	}
	for _, child := range node.Children() {
		if err := materializeTree(engine, child); err != nil {
			return err
		}
	}
	return nil
}

// addSiblingLinks appends one symlink node per internal dependency,
// pointing straight at the sibling project's live source folder.
// Internal dependencies are never recursed into; their own tree is
// owned by the sibling project. Returns the linked names in order.
func addSiblingLinks(root *depgraph.Node, ws *manifest.Workspace, project *types.ProjectDescriptor, layout paths.Layout) ([]string, error) {
	internals, err := ws.InternalDependencies(project)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(internals))
	for _, dep := range internals {
		node := depgraph.NewLinkedNode(dep.Name, dep.Project.Version,
			layout.ModuleEntryPath(project.Folder, dep.Name))
		node.SymlinkTargetFolderPath = dep.Project.Folder
		if err := root.AddChild(node); err != nil {
			return nil, err
		}
		names = append(names, dep.Name)
	}
	return names, nil
}

// sortedDependencyNames gives map iteration a stable order so repeated
// runs build identical trees.
func sortedDependencyNames(deps map[string]string) []string {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
