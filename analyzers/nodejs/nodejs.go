// Package nodejs analyzes a Node.js project directory for compromised
// dependencies.
//
// A Node.js project is any folder with a `package.json`. Resolved versions
// come from whichever lockfiles are present; the manifest contributes the
// direct dependency declarations, whose range decoration is normalized before
// matching.
package nodejs

import (
	"path/filepath"

	"github.com/apex/log"
	"github.com/blang/semver"
	"github.com/mitchellh/mapstructure"

	"github.com/wormwatch/wormwatch-cli/api/badlist"
	"github.com/wormwatch/wormwatch-cli/buildtools"
	"github.com/wormwatch/wormwatch-cli/buildtools/npm"
	"github.com/wormwatch/wormwatch-cli/buildtools/pnpm"
	"github.com/wormwatch/wormwatch-cli/buildtools/yarn"
	"github.com/wormwatch/wormwatch-cli/files"
	"github.com/wormwatch/wormwatch-cli/pkg"
)

// ManifestFilename is the project manifest read for direct dependencies.
const ManifestFilename = "package.json"

// Lockfiles are checked in this fixed order. Order only affects output
// ordering: every lockfile that exists contributes its entries.
var lockfileParsers = []struct {
	filename string
	parse    func(path string) []pkg.Dependency
}{
	{npm.LockfileFilename, npm.FromLockfile},
	{yarn.LockfileFilename, yarn.FromLockfile},
	{pnpm.LockfileFilename, pnpm.FromLockfile},
}

// LockfileDependencies returns the concatenated dependencies of every
// supported lockfile present in dir. Output is not deduplicated: the same
// package may legitimately appear under several nested scopes. A lockfile
// that is absent, unreadable, or malformed contributes zero entries and never
// prevents the remaining lockfiles from being parsed.
func LockfileDependencies(dir string) []pkg.Dependency {
	var deps []pkg.Dependency
	for _, lf := range lockfileParsers {
		path := filepath.Join(dir, lf.filename)
		exists, err := files.Exists(path)
		if err != nil {
			log.WithError(err).WithField("path", path).Debug("could not stat lockfile")
			continue
		}
		if !exists {
			continue
		}
		deps = append(deps, lf.parse(path)...)
	}
	return deps
}

// Options contains options for the `Analyzer`.
type Options struct {
	// SkipDevDeps leaves the manifest's devDependencies out of the direct
	// dependency check. Lockfile entries are always checked.
	SkipDevDeps bool `mapstructure:"skip-dev-deps"`
}

// An Analyzer matches one project directory against an affected-packages
// list.
type Analyzer struct {
	Dir     string
	Badlist badlist.Badlist
	Options Options
}

// A Result reports the compromised dependencies found in one project.
type Result struct {
	BadDeps      []pkg.Dependency `json:"badDeps"`
	TotalScanned int              `json:"totalScanned"`
}

// New configures an analyzer for the project at dir.
func New(dir string, list badlist.Badlist, options map[string]interface{}) (*Analyzer, error) {
	var opts Options
	if err := mapstructure.Decode(options, &opts); err != nil {
		return nil, err
	}

	log.WithField("dir", dir).Debug("constructed Node.js analyzer")
	return &Analyzer{Dir: dir, Badlist: list, Options: opts}, nil
}

type manifest struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// Analyze checks the manifest's direct dependencies and every lockfile entry
// against the badlist. The lockfile check covers all packages, not just the
// ones declared in the manifest, so transitively pulled compromised versions
// are still caught.
func (a *Analyzer) Analyze() Result {
	result := Result{BadDeps: []pkg.Dependency{}}

	direct := a.directDependencies()
	for name, rawVersion := range direct {
		version := buildtools.NormalizeVersion(rawVersion)
		if _, err := semver.Parse(version); err != nil {
			log.WithFields(log.Fields{
				"package": name,
				"version": rawVersion,
			}).Debug("direct dependency version is not a concrete semver")
		}
		if a.Badlist.Matches(name, version) {
			result.BadDeps = append(result.BadDeps, pkg.Dependency{Name: name, Version: version})
		}
	}

	lockfileDeps := LockfileDependencies(a.Dir)
	uniqueNames := map[string]bool{}
	for _, dep := range lockfileDeps {
		uniqueNames[dep.Name] = true
		if a.Badlist.Matches(dep.Name, dep.Version) && !containsDep(result.BadDeps, dep) {
			result.BadDeps = append(result.BadDeps, dep)
		}
	}

	// Direct deps and lockfile entries overlap heavily; the larger count is
	// the closest honest answer for how many packages were checked.
	result.TotalScanned = len(direct)
	if len(uniqueNames) > result.TotalScanned {
		result.TotalScanned = len(uniqueNames)
	}

	return result
}

func (a *Analyzer) directDependencies() map[string]string {
	var m manifest
	path := filepath.Join(a.Dir, ManifestFilename)
	if err := files.ReadJSON(&m, path); err != nil {
		log.WithError(err).WithField("path", path).Debug("could not read project manifest")
		return nil
	}

	direct := map[string]string{}
	for name, version := range m.Dependencies {
		direct[name] = version
	}
	if !a.Options.SkipDevDeps {
		for name, version := range m.DevDependencies {
			direct[name] = version
		}
	}
	return direct
}

func containsDep(deps []pkg.Dependency, dep pkg.Dependency) bool {
	for _, d := range deps {
		if d == dep {
			return true
		}
	}
	return false
}
