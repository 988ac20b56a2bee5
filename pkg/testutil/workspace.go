package testutil

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/monolink/pkg/paths"
	"github.com/arthur-debert/monolink/pkg/types"
)

// WorkspaceBuilder assembles a fake monorepo on a types.FS: local
// project folders, backend staging output, and the workspace.yaml
// inventory. It works against both MemoryFS and a real temp directory.
type WorkspaceBuilder struct {
	t      *testing.T
	fs     types.FS
	layout paths.Layout

	projects []projectSpec
}

type projectSpec struct {
	name   string
	folder string
}

// NewWorkspaceBuilder creates a builder rooted at root.
func NewWorkspaceBuilder(t *testing.T, fs types.FS, root string) *WorkspaceBuilder {
	t.Helper()

	layout, err := paths.New(root, "")
	if err != nil {
		t.Fatalf("failed to create layout: %v", err)
	}
	if err := fs.MkdirAll(layout.CommonDir(), 0755); err != nil {
		t.Fatalf("failed to create common dir: %v", err)
	}
	return &WorkspaceBuilder{t: t, fs: fs, layout: layout}
}

// Layout exposes the builder's path layout for assertions.
func (b *WorkspaceBuilder) Layout() paths.Layout {
	return b.layout
}

// AddProject creates a project folder with its own manifest, plus the
// backend staging manifest listing its resolved and local dependencies.
// folder is relative to the workspace root.
func (b *WorkspaceBuilder) AddProject(name, folder, version string, deps, localDeps map[string]string) *WorkspaceBuilder {
	b.t.Helper()

	abs := filepath.Join(b.layout.WorkspaceRoot(), filepath.FromSlash(folder))
	if err := b.fs.MkdirAll(abs, 0755); err != nil {
		b.t.Fatalf("failed to create project folder %s: %v", abs, err)
	}
	b.writeJSON(b.layout.PackageManifestPath(abs), types.PackageManifest{
		Name:    name,
		Version: version,
	})

	stagingPath := b.layout.StagingManifestPath(name)
	if err := b.fs.MkdirAll(filepath.Dir(stagingPath), 0755); err != nil {
		b.t.Fatalf("failed to create staging dir: %v", err)
	}
	b.writeJSON(stagingPath, types.StagingManifest{
		Name:              name,
		Version:           version,
		Dependencies:      deps,
		LocalDependencies: localDeps,
	})

	b.projects = append(b.projects, projectSpec{name: name, folder: folder})
	return b
}

// AddStorePackage stages a copy of name@version in the nested backend's
// store, with the given resolved dependencies in its manifest.
func (b *WorkspaceBuilder) AddStorePackage(name, version string, deps map[string]string) *WorkspaceBuilder {
	b.t.Helper()

	dir := b.layout.StorePackageDir(name, version)
	if err := b.fs.MkdirAll(dir, 0755); err != nil {
		b.t.Fatalf("failed to create store package %s@%s: %v", name, version, err)
	}
	b.writeJSON(b.layout.PackageManifestPath(dir), types.PackageManifest{
		Name:         name,
		Version:      version,
		Dependencies: deps,
	})
	return b
}

// AddSharedEntry simulates the flattened backend: a physical copy of
// name@version plus the backend-created symlink in the shared
// node_modules folder pointing at it. The physical location is returned.
func (b *WorkspaceBuilder) AddSharedEntry(name, version string) string {
	b.t.Helper()

	physical := filepath.Join(b.layout.CommonDir(), "cas", filepath.FromSlash(name), version)
	if err := b.fs.MkdirAll(physical, 0755); err != nil {
		b.t.Fatalf("failed to create shared physical copy: %v", err)
	}
	b.writeJSON(b.layout.PackageManifestPath(physical), types.PackageManifest{
		Name:    name,
		Version: version,
	})

	entry := b.layout.SharedEntryPath(name, version)
	if err := b.fs.MkdirAll(filepath.Dir(entry), 0755); err != nil {
		b.t.Fatalf("failed to create shared node_modules: %v", err)
	}
	if err := b.fs.Symlink(physical, entry); err != nil {
		b.t.Fatalf("failed to create shared entry symlink: %v", err)
	}
	return physical
}

// AddSharedBinShims creates the flattened backend's executable shims
// folder and returns its path.
func (b *WorkspaceBuilder) AddSharedBinShims() string {
	b.t.Helper()

	dir := b.layout.SharedBinShimsDir()
	if err := b.fs.MkdirAll(dir, 0755); err != nil {
		b.t.Fatalf("failed to create shims folder: %v", err)
	}
	if err := b.fs.WriteFile(filepath.Join(dir, "tsc"), []byte("#!/bin/sh\n"), 0755); err != nil {
		b.t.Fatalf("failed to create shim: %v", err)
	}
	return dir
}

// WriteWorkspaceFile emits workspace.yaml listing every added project.
func (b *WorkspaceBuilder) WriteWorkspaceFile() *WorkspaceBuilder {
	b.t.Helper()

	content := "projects:\n"
	for _, p := range b.projects {
		content += fmt.Sprintf("  - name: %s\n    folder: %s\n", p.name, p.folder)
	}
	if err := b.fs.WriteFile(b.layout.WorkspaceFilePath(), []byte(content), 0644); err != nil {
		b.t.Fatalf("failed to write workspace file: %v", err)
	}
	return b
}

func (b *WorkspaceBuilder) writeJSON(path string, v interface{}) {
	b.t.Helper()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		b.t.Fatalf("failed to marshal %s: %v", path, err)
	}
	if err := b.fs.WriteFile(path, data, 0644); err != nil {
		b.t.Fatalf("failed to write %s: %v", path, err)
	}
}
