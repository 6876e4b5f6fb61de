// Package pnpm parses pnpm-lock.yaml.
//
// pnpm records resolved packages as keys of a top-level `packages` map. Keys
// are slash-delimited path specs rooted at `/`: the final segment is the
// version (optionally suffixed with `_<hash>` for peer-dependency variants),
// and everything before it is the name. Scoped names contain an internal
// slash, so all leading segments are rejoined.
package pnpm

import (
	"strings"

	"github.com/apex/log"

	"github.com/wormwatch/wormwatch-cli/files"
	"github.com/wormwatch/wormwatch-cli/pkg"
)

// LockfileFilename is the filename pnpm writes at the project root.
const LockfileFilename = "pnpm-lock.yaml"

type lockfile struct {
	Packages map[string]interface{} `yaml:"packages"`
}

// FromLockfile extracts every resolved package recorded in the pnpm-lock.yaml
// at the given path. Keys that do not start with `/` or have fewer than two
// segments are skipped. Failures contribute nothing and are logged at debug
// level only.
func FromLockfile(path string) []pkg.Dependency {
	var lock lockfile
	if err := files.ReadYAML(&lock, path); err != nil {
		log.WithError(err).WithField("path", path).Debug("could not parse pnpm lockfile")
		return nil
	}

	var deps []pkg.Dependency
	for pathSpec := range lock.Packages {
		if !strings.HasPrefix(pathSpec, "/") {
			continue
		}
		segments := strings.Split(pathSpec[1:], "/")
		if len(segments) < 2 {
			continue
		}

		name := strings.Join(segments[:len(segments)-1], "/")
		if name == "" {
			continue
		}
		// Trailing `_<hash>` suffixes encode peer-dependency variants, not
		// part of the version itself.
		version := strings.SplitN(segments[len(segments)-1], "_", 2)[0]

		deps = append(deps, pkg.Dependency{Name: name, Version: version})
	}
	return deps
}
