// Package npm parses npm's package-lock.json.
//
// Two schema generations are in the wild. npm v7+ writes a top-level
// `packages` map keyed by install path (`node_modules/<name>`, nested paths
// for hoisting conflicts). npm v6 and earlier writes a recursive top-level
// `dependencies` map keyed by package name. Both are supported; a lockfile
// with a `packages` key is always treated as the newer generation.
package npm

import (
	"strings"

	"github.com/apex/log"

	"github.com/wormwatch/wormwatch-cli/files"
	"github.com/wormwatch/wormwatch-cli/pkg"
)

// LockfileFilename is the filename npm writes at the project root.
const LockfileFilename = "package-lock.json"

const installPathMarker = "node_modules/"

type lockfile struct {
	Packages     map[string]lockEntry `json:"packages"`
	Dependencies dependencies         `json:"dependencies"`
}

type lockEntry struct {
	Version string `json:"version"`
}

type dependencyLockEntry struct {
	Version      string       `json:"version"`
	Dependencies dependencies `json:"dependencies"`
}

type dependencies map[string]*dependencyLockEntry

// FromLockfile extracts every resolved package recorded in the
// package-lock.json at the given path. Decode failures and structurally
// unexpected documents contribute nothing; they are logged at debug level and
// never surfaced, so a broken lockfile cannot abort a wider scan.
func FromLockfile(path string) []pkg.Dependency {
	var lock lockfile
	if err := files.ReadJSON(&lock, path); err != nil {
		log.WithError(err).WithField("path", path).Debug("could not parse npm lockfile")
		return nil
	}

	if lock.Packages != nil {
		return fromInstallPaths(lock.Packages)
	}
	return fromDependencyTree(lock.Dependencies)
}

// fromInstallPaths handles the npm v7+ generation. The package name is the
// substring after the last `node_modules/` marker; the empty-string key is
// the root project itself and is never emitted.
func fromInstallPaths(packages map[string]lockEntry) []pkg.Dependency {
	var deps []pkg.Dependency
	for installPath, entry := range packages {
		if installPath == "" {
			continue
		}

		name := installPath
		if i := strings.LastIndex(installPath, installPathMarker); i != -1 {
			name = installPath[i+len(installPathMarker):]
		}
		if name == "" {
			continue
		}

		version := entry.Version
		if version == "" {
			version = pkg.FallbackVersion
		}
		deps = append(deps, pkg.Dependency{Name: name, Version: version})
	}
	return deps
}

type workItem struct {
	name  string
	entry *dependencyLockEntry
}

// fromDependencyTree handles the npm v6 generation, visiting nested
// `dependencies` maps at every depth. An explicit worklist bounds stack depth
// against adversarially deep lockfiles.
func fromDependencyTree(deps dependencies) []pkg.Dependency {
	var out []pkg.Dependency
	stack := pushEntries(nil, deps)
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if item.name == "" || item.entry == nil {
			continue
		}

		version := item.entry.Version
		if version == "" {
			version = pkg.FallbackVersion
		}
		out = append(out, pkg.Dependency{Name: item.name, Version: version})

		stack = pushEntries(stack, item.entry.Dependencies)
	}
	return out
}

func pushEntries(stack []workItem, deps dependencies) []workItem {
	for name, entry := range deps {
		stack = append(stack, workItem{name: name, entry: entry})
	}
	return stack
}
