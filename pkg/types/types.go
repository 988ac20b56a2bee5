package types

// PackageManifest is the parsed form of a package.json-style manifest.
// For staged store copies the dependency versions are exact, already
// resolved by the installation backend.
type PackageManifest struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// StagingManifest is the backend-resolved manifest for one project's
// private build. Dependencies carry exact versions; LocalDependencies
// names dependencies satisfied by sibling local projects.
type StagingManifest struct {
	Name              string            `json:"name"`
	Version           string            `json:"version"`
	Dependencies      map[string]string `json:"dependencies,omitempty"`
	LocalDependencies map[string]string `json:"localDependencies,omitempty"`
}

// ProjectDescriptor describes one local project in the workspace.
// It is supplied by the manifest reader and read-only to the linker.
type ProjectDescriptor struct {
	// Name is the package name, possibly scope-prefixed.
	Name string

	// Version is the version declared in the project's own manifest.
	Version string

	// Folder is the absolute path to the project's source folder.
	// The folder already exists; the linker never creates or removes it.
	Folder string

	// Staging is the backend-resolved staging manifest for this project.
	Staging *StagingManifest
}

// InternalDependency pairs a declared internal dependency name with the
// sibling project that satisfies it.
type InternalDependency struct {
	Name    string
	Project *ProjectDescriptor
}

// ResolvedDependency is an ordinary (third-party) dependency with the
// exact version the backend resolved for a given project.
type ResolvedDependency struct {
	Name    string
	Version string
}

// LinkManifestEntry records, for one project, which dependency names
// were linked to sibling local projects.
type LinkManifestEntry struct {
	Project    string
	LocalLinks []string
}

// LinkManifest is the persisted artifact of a successful linking run.
// It maps project names to the ordered internal dependency names that
// were linked to sibling projects, and is diagnostic only.
type LinkManifest struct {
	LocalLinks map[string][]string `json:"localLinks"`
}

// NewLinkManifest returns an empty manifest ready to accumulate entries.
func NewLinkManifest() *LinkManifest {
	return &LinkManifest{LocalLinks: make(map[string][]string)}
}

// AddEntry records one project's local links in the manifest.
func (m *LinkManifest) AddEntry(entry LinkManifestEntry) {
	if m.LocalLinks == nil {
		m.LocalLinks = make(map[string][]string)
	}
	m.LocalLinks[entry.Project] = entry.LocalLinks
}
