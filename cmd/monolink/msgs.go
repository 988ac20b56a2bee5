package main

// User-facing command descriptions and messages.
const (
	MsgRootShort = "Link monorepo projects to their dependencies"
	MsgRootLong  = `monolink wires a monorepo together after the installation backend has
fetched third-party dependencies: sibling projects resolve to each
other's live source folders, third-party dependencies resolve to the
backend's installed copies, and the whole operation is idempotent.`

	MsgLinkShort = "Create dependency symlinks for every project"
	MsgLinkLong  = `Builds each project's dependency-resolution tree and projects it onto
disk as symlinks. Internal dependencies point at sibling project
folders; third-party dependencies point into the backend's install
locations, following either the nested or the flattened topology.`

	MsgUnlinkShort = "Remove the symlinks created by link"
	MsgUnlinkLong  = `Removes every monolink-created symlink under each project's
node_modules folder. Real files and folders are never touched.`

	MsgInitShort = "Write a starter monolink.toml to the workspace root"

	MsgVersionShort = "Print version information"

	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagStrategy = "Override the configured link strategy (nested or flattened)"
)
