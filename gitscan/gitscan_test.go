package gitscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuspiciousBranches(t *testing.T) {
	found := suspiciousBranches([]string{
		"main",
		"feature/db-migration",
		"shai-hulud-migration",
		"remotes/origin/backdoor-test",
	})
	assert.Equal(t, []string{"shai-hulud-migration", "remotes/origin/backdoor-test"}, found)
}

func TestSuspiciousBranchMigrationHeuristic(t *testing.T) {
	// Plain migration branches are legitimate.
	assert.False(t, suspiciousBranch("user-table-migration"))
	assert.True(t, suspiciousBranch("worm-migration"))
	assert.True(t, suspiciousBranch("hulud-migration"))
}

func TestSuspiciousCommits(t *testing.T) {
	found := suspiciousCommits([]string{
		"a1b2c3d fix typo in README",
		"d4e5f6a add bundle.js payload",
		"d4e5f6a add bundle.js payload",
		"b7c8d9e run trufflehog before release",
	})
	assert.Equal(t, []string{
		"d4e5f6a add bundle.js payload",
		"b7c8d9e run trufflehog before release",
	}, found)
}

func TestSuspiciousAddedFiles(t *testing.T) {
	found := suspiciousAddedFiles([]string{
		"src/index.ts",
		"dist/bundle.js",
		"scripts/postinstall-hook.js",
		"docs/migration.md",
	})
	assert.Equal(t, []string{"dist/bundle.js", "scripts/postinstall-hook.js"}, found)
}

func TestSuspiciousRemotes(t *testing.T) {
	found := suspiciousRemotes([]string{
		"origin\tgit@github.com:acme/widgets.git (fetch)",
		"mirror\tgit@github.com:evil/Shai-Hulud.git (push)",
	})
	assert.Len(t, found, 1)
	assert.Contains(t, found[0], "Shai-Hulud")
}

func TestScanNotARepository(t *testing.T) {
	assert.Empty(t, Scan(t.TempDir()))
}
