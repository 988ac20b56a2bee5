// Package types defines the core types and interfaces used throughout
// monolink. This includes the FS filesystem interface and data structures
// like ProjectDescriptor, StagingManifest, and LinkManifest.
package types
