package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryFS implements types.FS with in-memory storage. It models
// directories, files, and symlinks well enough for the manifest and
// linking packages to run without touching the real filesystem.
type MemoryFS struct {
	mu    sync.RWMutex
	nodes map[string]*memNode
}

type memNode struct {
	mode     os.FileMode
	modTime  time.Time
	content  []byte
	isDir    bool
	isLink   bool
	linkDest string
}

// NewMemoryFS creates a new in-memory filesystem with a root directory.
func NewMemoryFS() *MemoryFS {
	return &MemoryFS{
		nodes: map[string]*memNode{
			"/": {mode: 0755 | os.ModeDir, modTime: time.Now(), isDir: true},
		},
	}
}

func normalize(path string) string {
	if !filepath.IsAbs(path) {
		path = "/" + path
	}
	return filepath.Clean(path)
}

// resolve follows symlinks in every component of path, returning the
// physical path. Caller must hold the lock.
func (m *MemoryFS) resolve(path string) (string, error) {
	path = normalize(path)
	const maxHops = 40

	resolved := "/"
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, part := range parts {
		if part == "" {
			continue
		}
		resolved = filepath.Join(resolved, part)
		for hops := 0; ; hops++ {
			node, ok := m.nodes[resolved]
			if !ok || !node.isLink {
				break
			}
			if hops >= maxHops {
				return "", &fs.PathError{Op: "open", Path: path, Err: fs.ErrInvalid}
			}
			dest := node.linkDest
			if !filepath.IsAbs(dest) {
				dest = filepath.Join(filepath.Dir(resolved), dest)
			}
			resolved = normalize(dest)
		}
		// Intermediate components must exist as directories.
		if i < len(parts)-1 {
			node, ok := m.nodes[resolved]
			if !ok {
				return "", &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
			}
			if !node.isDir {
				return "", &fs.PathError{Op: "open", Path: path, Err: fs.ErrInvalid}
			}
		}
	}
	return resolved, nil
}

func (m *MemoryFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	resolved, err := m.resolve(name)
	if err != nil {
		return nil, err
	}
	node, ok := m.nodes[resolved]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return &memFileInfo{name: filepath.Base(resolved), node: node}, nil
}

func (m *MemoryFS) Lstat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dir, err := m.resolve(filepath.Dir(normalize(name)))
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, filepath.Base(normalize(name)))
	node, ok := m.nodes[path]
	if !ok {
		return nil, &fs.PathError{Op: "lstat", Path: name, Err: fs.ErrNotExist}
	}
	return &memFileInfo{name: filepath.Base(path), node: node}, nil
}

func (m *MemoryFS) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	resolved, err := m.resolve(name)
	if err != nil {
		return nil, err
	}
	node, ok := m.nodes[resolved]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	if node.isDir {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}
	out := make([]byte, len(node.content))
	copy(out, node.content)
	return out, nil
}

func (m *MemoryFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir, err := m.resolve(filepath.Dir(normalize(name)))
	if err != nil {
		return err
	}
	if node, ok := m.nodes[dir]; !ok || !node.isDir {
		return &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	path := filepath.Join(dir, filepath.Base(normalize(name)))
	content := make([]byte, len(data))
	copy(content, data)
	m.nodes[path] = &memNode{mode: perm, modTime: time.Now(), content: content}
	return nil
}

func (m *MemoryFS) MkdirAll(path string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mkdirAll(normalize(path), perm)
}

func (m *MemoryFS) mkdirAll(path string, perm fs.FileMode) error {
	if node, ok := m.nodes[path]; ok {
		if node.isDir {
			return nil
		}
		if node.isLink {
			resolved, err := m.resolve(path)
			if err != nil {
				return err
			}
			return m.mkdirAll(resolved, perm)
		}
		return &fs.PathError{Op: "mkdir", Path: path, Err: fs.ErrExist}
	}
	if parent := filepath.Dir(path); parent != path {
		if err := m.mkdirAll(parent, perm); err != nil {
			return err
		}
	}
	m.nodes[path] = &memNode{mode: perm | os.ModeDir, modTime: time.Now(), isDir: true}
	return nil
}

func (m *MemoryFS) ReadDir(name string) ([]fs.DirEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	resolved, err := m.resolve(name)
	if err != nil {
		return nil, err
	}
	node, ok := m.nodes[resolved]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	if !node.isDir {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}

	var entries []fs.DirEntry
	prefix := resolved
	if prefix != "/" {
		prefix += "/"
	} else {
		prefix = "/"
	}
	for path, child := range m.nodes {
		if path == resolved || !strings.HasPrefix(path, prefix) {
			continue
		}
		rel := strings.TrimPrefix(path, prefix)
		if strings.Contains(rel, "/") {
			continue
		}
		entries = append(entries, &memDirEntry{name: rel, node: child})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

func (m *MemoryFS) Symlink(oldname, newname string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir, err := m.resolve(filepath.Dir(normalize(newname)))
	if err != nil {
		return err
	}
	path := filepath.Join(dir, filepath.Base(normalize(newname)))
	if _, ok := m.nodes[path]; ok {
		return &fs.PathError{Op: "symlink", Path: newname, Err: fs.ErrExist}
	}
	m.nodes[path] = &memNode{
		mode:     0777 | os.ModeSymlink,
		modTime:  time.Now(),
		isLink:   true,
		linkDest: oldname,
	}
	return nil
}

func (m *MemoryFS) Readlink(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dir, err := m.resolve(filepath.Dir(normalize(name)))
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, filepath.Base(normalize(name)))
	node, ok := m.nodes[path]
	if !ok {
		return "", &fs.PathError{Op: "readlink", Path: name, Err: fs.ErrNotExist}
	}
	if !node.isLink {
		return "", &fs.PathError{Op: "readlink", Path: name, Err: fs.ErrInvalid}
	}
	return node.linkDest, nil
}

func (m *MemoryFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir, err := m.resolve(filepath.Dir(normalize(name)))
	if err != nil {
		return err
	}
	path := filepath.Join(dir, filepath.Base(normalize(name)))
	node, ok := m.nodes[path]
	if !ok {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	if node.isDir {
		prefix := path + "/"
		for other := range m.nodes {
			if strings.HasPrefix(other, prefix) {
				return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrInvalid}
			}
		}
	}
	delete(m.nodes, path)
	return nil
}

func (m *MemoryFS) RemoveAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	target := normalize(path)
	delete(m.nodes, target)
	prefix := target + "/"
	for other := range m.nodes {
		if strings.HasPrefix(other, prefix) {
			delete(m.nodes, other)
		}
	}
	return nil
}

type memFileInfo struct {
	name string
	node *memNode
}

func (fi *memFileInfo) Name() string       { return fi.name }
func (fi *memFileInfo) Size() int64        { return int64(len(fi.node.content)) }
func (fi *memFileInfo) Mode() os.FileMode  { return fi.node.mode }
func (fi *memFileInfo) ModTime() time.Time { return fi.node.modTime }
func (fi *memFileInfo) IsDir() bool        { return fi.node.isDir }
func (fi *memFileInfo) Sys() interface{}   { return nil }

type memDirEntry struct {
	name string
	node *memNode
}

func (de *memDirEntry) Name() string               { return de.name }
func (de *memDirEntry) IsDir() bool                { return de.node.isDir }
func (de *memDirEntry) Type() fs.FileMode          { return de.node.mode.Type() }
func (de *memDirEntry) Info() (fs.FileInfo, error) { return &memFileInfo{de.name, de.node}, nil }
