// Package depgraph implements the in-memory dependency tree the link
// strategies build before anything touches the filesystem. It is a pure
// tree builder; no I/O happens here.
package depgraph

import (
	"github.com/arthur-debert/monolink/pkg/errors"
	"github.com/arthur-debert/monolink/pkg/types"
)

// Node is one entry in a project's dependency-resolution tree. It
// represents either a real project folder, a staged installed copy, or
// a location that will hold a symlink.
type Node struct {
	// Name is the dependency or project name, possibly scope-prefixed.
	Name string

	// Version is the resolved version, or empty when the strategy has
	// no need to record one.
	Version string

	// FolderPath is the absolute path this node occupies for its
	// parent, i.e. <parent>/node_modules/<Name>.
	FolderPath string

	// SymlinkTargetFolderPath, when set, means a symlink must be
	// created at FolderPath pointing here. FolderPath itself is never
	// written to directly in that case, and Children are not walked
	// for physical creation; the subtree behind the target is owned by
	// whatever created the target.
	SymlinkTargetFolderPath string

	// Manifest is an optional copy of the dependency's own resolved
	// manifest, used by the nested strategy to recurse. Absent for
	// flattened-strategy nodes.
	Manifest *types.PackageManifest

	children []*Node
}

// NewProjectRoot produces the root node for a local project. The
// project's folder already exists and is never recreated, so the root
// carries no symlink target.
func NewProjectRoot(desc *types.ProjectDescriptor) *Node {
	return &Node{
		Name:       desc.Name,
		Version:    desc.Version,
		FolderPath: desc.Folder,
	}
}

// NewLinkedNode produces a node for a location that will hold a
// symlink. Children stay empty until a strategy populates them.
func NewLinkedNode(name, version, folderPath string) *Node {
	return &Node{
		Name:       name,
		Version:    version,
		FolderPath: folderPath,
	}
}

// AddChild appends child to the node's ordered children. A duplicate
// child name under one parent is a strategy bug, not a recoverable
// condition, so it fails fast.
func (n *Node) AddChild(child *Node) error {
	for _, existing := range n.children {
		if existing.Name == child.Name {
			return errors.Newf(errors.ErrDuplicateChild,
				"node %q already has a child named %q", n.Name, child.Name).
				WithDetail("parent", n.Name).
				WithDependency(child.Name)
		}
	}
	n.children = append(n.children, child)
	return nil
}

// Children returns the ordered child nodes.
func (n *Node) Children() []*Node {
	return n.children
}

// Child returns the child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// IsSymlink reports whether this node materializes as a symlink rather
// than a real directory.
func (n *Node) IsSymlink() bool {
	return n.SymlinkTargetFolderPath != ""
}
