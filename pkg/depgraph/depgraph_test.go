// pkg/depgraph/depgraph_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None (pure tree builder)
// PURPOSE: Test dependency node construction and child bookkeeping

package depgraph_test

import (
	"testing"

	"github.com/arthur-debert/monolink/pkg/depgraph"
	"github.com/arthur-debert/monolink/pkg/errors"
	"github.com/arthur-debert/monolink/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProjectRoot(t *testing.T) {
	desc := &types.ProjectDescriptor{
		Name:    "a",
		Version: "1.2.3",
		Folder:  "/workspace/tools/a",
	}

	root := depgraph.NewProjectRoot(desc)

	assert.Equal(t, "a", root.Name)
	assert.Equal(t, "1.2.3", root.Version)
	assert.Equal(t, "/workspace/tools/a", root.FolderPath)
	assert.False(t, root.IsSymlink(), "project roots are real folders, never symlinks")
	assert.Empty(t, root.Children())
}

func TestNewLinkedNode(t *testing.T) {
	node := depgraph.NewLinkedNode("lodash", "1.0.0", "/workspace/tools/a/node_modules/lodash")
	node.SymlinkTargetFolderPath = "/workspace/common/temp/store/lodash/1.0.0"

	assert.True(t, node.IsSymlink())
	assert.Equal(t, "lodash", node.Name)
	assert.Equal(t, "1.0.0", node.Version)
	assert.Empty(t, node.Children())
}

func TestAddChild_PreservesOrder(t *testing.T) {
	root := depgraph.NewLinkedNode("a", "", "/workspace/tools/a")

	names := []string{"zeta", "alpha", "mid"}
	for _, name := range names {
		require.NoError(t, root.AddChild(depgraph.NewLinkedNode(name, "", "/x/"+name)))
	}

	got := make([]string, 0, len(root.Children()))
	for _, c := range root.Children() {
		got = append(got, c.Name)
	}
	assert.Equal(t, names, got, "children keep insertion order")
}

func TestAddChild_DuplicateNameFailsFast(t *testing.T) {
	root := depgraph.NewLinkedNode("a", "", "/workspace/tools/a")
	require.NoError(t, root.AddChild(depgraph.NewLinkedNode("lodash", "1.0.0", "/x/lodash")))

	err := root.AddChild(depgraph.NewLinkedNode("lodash", "2.0.0", "/y/lodash"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDuplicateChild))
	assert.Contains(t, err.Error(), "lodash")
	assert.Contains(t, err.Error(), `"a"`)

	details := errors.GetErrorDetails(err)
	assert.Equal(t, "a", details["parent"])
	assert.Equal(t, "lodash", details["dependency"])
}

func TestChild_Lookup(t *testing.T) {
	root := depgraph.NewLinkedNode("a", "", "/workspace/tools/a")
	require.NoError(t, root.AddChild(depgraph.NewLinkedNode("b", "", "/x/b")))

	assert.NotNil(t, root.Child("b"))
	assert.Nil(t, root.Child("missing"))
}
