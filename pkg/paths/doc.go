// Package paths provides centralized path handling for monolink.
//
// All on-disk locations used by the linking engine derive from two
// roots: the workspace root (the folder holding workspace.yaml) and
// the common folder where the installation backend keeps its files.
// This package owns the mapping from logical locations to paths:
//
//   - Store copies of third-party packages (nested backend)
//   - Shared content-addressed entries (flattened backend)
//   - Per-project staging manifests written by the backend
//   - Each project's node_modules folder and entries within it
//   - The link manifest recording a successful run
//
// # Environment Variables
//
//   - MONOLINK_WORKSPACE: workspace root override (default: walk up
//     from the current directory until workspace.yaml is found)
//   - MONOLINK_COMMON_DIR: common folder override (default: the
//     workspace's commonFolder setting, or common/temp)
package paths
