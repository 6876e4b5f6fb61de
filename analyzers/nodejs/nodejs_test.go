package nodejs_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wormwatch/wormwatch-cli/analyzers/nodejs"
	"github.com/wormwatch/wormwatch-cli/api/badlist"
	"github.com/wormwatch/wormwatch-cli/pkg"
)

func TestLockfileDependenciesUnion(t *testing.T) {
	deps := nodejs.LockfileDependencies(filepath.Join("fixtures", "multi"))

	// Fixed precedence: package-lock.json, then yarn.lock, then pnpm-lock.yaml.
	assert.Equal(t, []pkg.Dependency{
		{Name: "left-pad", Version: "1.3.0"},
		{Name: "lodash", Version: "4.17.21"},
		{Name: "chalk", Version: "5.6.1"},
	}, deps)
}

func TestLockfileDependenciesResilience(t *testing.T) {
	// The truncated package-lock.json must not prevent yarn.lock from parsing.
	deps := nodejs.LockfileDependencies(filepath.Join("fixtures", "resilient"))

	assert.Equal(t, []pkg.Dependency{
		{Name: "ms", Version: "2.1.3"},
	}, deps)
}

func TestLockfileDependenciesEmptyDir(t *testing.T) {
	assert.Empty(t, nodejs.LockfileDependencies(filepath.Join("fixtures", "empty")))
}

func TestAnalyze(t *testing.T) {
	list := badlist.Badlist{
		"chalk":    {"5.6.1"},
		"left-pad": {"1.3.0"},
	}

	analyzer, err := nodejs.New(filepath.Join("fixtures", "project"), list, nil)
	assert.NoError(t, err)

	result := analyzer.Analyze()

	assert.Len(t, result.BadDeps, 2)
	assert.Contains(t, result.BadDeps, pkg.Dependency{Name: "chalk", Version: "5.6.1"})
	// left-pad is not in package.json; it is caught from the lockfile alone.
	assert.Contains(t, result.BadDeps, pkg.Dependency{Name: "left-pad", Version: "1.3.0"})

	// 2 direct deps, 3 unique lockfile packages.
	assert.Equal(t, 3, result.TotalScanned)
}

func TestAnalyzeSkipDevDeps(t *testing.T) {
	list := badlist.Badlist{"debug": {"4.3.4"}}

	analyzer, err := nodejs.New(filepath.Join("fixtures", "project"), list, map[string]interface{}{
		"skip-dev-deps": true,
	})
	assert.NoError(t, err)
	assert.True(t, analyzer.Options.SkipDevDeps)

	result := analyzer.Analyze()

	// debug is still caught through the lockfile, with its resolved version.
	assert.Len(t, result.BadDeps, 1)
	assert.Contains(t, result.BadDeps, pkg.Dependency{Name: "debug", Version: "4.3.4"})
}

func TestAnalyzeNoManifest(t *testing.T) {
	analyzer, err := nodejs.New(filepath.Join("fixtures", "empty"), badlist.Badlist{}, nil)
	assert.NoError(t, err)

	result := analyzer.Analyze()
	assert.Empty(t, result.BadDeps)
	assert.Equal(t, 0, result.TotalScanned)
}
