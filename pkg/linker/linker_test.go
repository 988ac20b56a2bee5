// pkg/linker/linker_test.go
// TEST TYPE: Unit + Filesystem Tests
// DEPENDENCIES: Real filesystem for workspace fixtures, stub strategy for orchestration
// PURPOSE: Test run orchestration: parallelism bounds, failure propagation, manifest gating

package linker_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/arthur-debert/monolink/pkg/errors"
	"github.com/arthur-debert/monolink/pkg/filesystem"
	"github.com/arthur-debert/monolink/pkg/linker"
	"github.com/arthur-debert/monolink/pkg/manifest"
	"github.com/arthur-debert/monolink/pkg/testutil"
	"github.com/arthur-debert/monolink/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStrategy lets orchestration tests control per-project outcomes.
type stubStrategy struct {
	mu       sync.Mutex
	linked   []string
	failFor  map[string]error
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (s *stubStrategy) Name() string { return "stub" }

func (s *stubStrategy) LinkProject(ctx context.Context, project *types.ProjectDescriptor) (types.LinkManifestEntry, error) {
	cur := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		seen := s.maxSeen.Load()
		if cur <= seen || s.maxSeen.CompareAndSwap(seen, cur) {
			break
		}
	}

	if err, ok := s.failFor[project.Name]; ok {
		return types.LinkManifestEntry{}, err
	}

	s.mu.Lock()
	s.linked = append(s.linked, project.Name)
	s.mu.Unlock()
	return types.LinkManifestEntry{Project: project.Name}, nil
}

func buildThreeProjects(t *testing.T) (*testutil.WorkspaceBuilder, *manifest.Workspace) {
	t.Helper()

	fs := filesystem.NewOS()
	builder := testutil.NewWorkspaceBuilder(t, fs, t.TempDir())
	builder.
		AddProject("a", "tools/a", "1.0.0", nil, nil).
		AddProject("b", "tools/b", "1.0.0", nil, nil).
		AddProject("c", "tools/c", "1.0.0", nil, nil).
		WriteWorkspaceFile()
	return builder, loadWorkspace(t, fs, builder.Layout())
}

func TestRun_WritesManifestOnSuccess(t *testing.T) {
	builder, ws := buildThreeProjects(t)
	fs := filesystem.NewOS()

	stub := &stubStrategy{}
	result, err := linker.New(fs, builder.Layout(), stub, 2).Run(context.Background(), ws)
	require.NoError(t, err)

	assert.Len(t, result.LocalLinks, 3)
	assert.LessOrEqual(t, stub.maxSeen.Load(), int32(2), "concurrency limit respected")

	persisted, err := manifest.ReadLinkManifest(fs, builder.Layout().LinkManifestPath())
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Len(t, persisted.LocalLinks, 3)
}

func TestRun_FailureSuppressesManifest(t *testing.T) {
	builder, ws := buildThreeProjects(t)
	fs := filesystem.NewOS()

	stub := &stubStrategy{
		failFor: map[string]error{
			"b": errors.New(errors.ErrMissingDependency, "no staged copy").WithProject("b"),
		},
	}

	_, err := linker.New(fs, builder.Layout(), stub, 1).Run(context.Background(), ws)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMissingDependency))

	persisted, merr := manifest.ReadLinkManifest(fs, builder.Layout().LinkManifestPath())
	require.NoError(t, merr)
	assert.Nil(t, persisted)
}

func TestRun_FailureLeavesCompletedProjectsInPlace(t *testing.T) {
	fs := filesystem.NewOS()
	root := t.TempDir()

	builder := testutil.NewWorkspaceBuilder(t, fs, root)
	builder.
		AddProject("a", "tools/a", "1.0.0", map[string]string{"lodash": "1.0.0"}, nil).
		AddProject("z", "tools/z", "1.0.0", map[string]string{"ghost": "9.9.9"}, nil).
		AddStorePackage("lodash", "1.0.0", nil).
		WriteWorkspaceFile()
	layout := builder.Layout()

	ws := loadWorkspace(t, fs, layout)
	strategy := linker.NewNested(fs, layout, ws)

	// Serial execution links "a" first, then fails on "z".
	_, err := linker.New(fs, layout, strategy, 1).Run(context.Background(), ws)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMissingDependency))

	// a's links survive; linking is idempotent and safe to resume.
	target, rerr := os.Readlink(filepath.Join(root, "tools", "a", "node_modules", "lodash"))
	require.NoError(t, rerr)
	assert.Equal(t, layout.StorePackageDir("lodash", "1.0.0"), target)
}

func TestRun_ConflictRefusesToDestroyRealContent(t *testing.T) {
	fs := filesystem.NewOS()
	root := t.TempDir()

	builder := testutil.NewWorkspaceBuilder(t, fs, root)
	builder.
		AddProject("a", "tools/a", "1.0.0", map[string]string{"lodash": "1.0.0"}, nil).
		AddStorePackage("lodash", "1.0.0", nil).
		WriteWorkspaceFile()
	layout := builder.Layout()

	// A real, populated node_modules/lodash not created by the engine.
	realDir := filepath.Join(root, "tools", "a", "node_modules", "lodash")
	require.NoError(t, os.MkdirAll(realDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(realDir, "index.js"), []byte("local hack"), 0644))

	ws := loadWorkspace(t, fs, layout)
	strategy := linker.NewNested(fs, layout, ws)

	_, err := linker.New(fs, layout, strategy, 1).Run(context.Background(), ws)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFilesystemConflict))

	// The user's content is untouched.
	data, rerr := os.ReadFile(filepath.Join(realDir, "index.js"))
	require.NoError(t, rerr)
	assert.Equal(t, "local hack", string(data))
}

func TestRun_ContextCancellation(t *testing.T) {
	_, ws := buildThreeProjects(t)
	fs := filesystem.NewOS()

	builder := testutil.NewWorkspaceBuilder(t, fs, t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stub := &stubStrategy{}
	_, err := linker.New(fs, builder.Layout(), stub, 2).Run(ctx, ws)
	require.Error(t, err)
	assert.Empty(t, stub.linked, "no project may start after cancellation")
}
