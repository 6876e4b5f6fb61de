// Package pkg defines the dependency entity shared by all lockfile parsers.
package pkg

// A Dependency is a single resolved package extracted from a lockfile or
// manifest. Name keeps any `@scope/` prefix. Version is always a concrete
// version, never a range expression.
type Dependency struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// FallbackVersion is emitted when a lockfile entry names a package but has no
// version field, so consumers never see an empty version for a known name.
const FallbackVersion = "0.0.0"
