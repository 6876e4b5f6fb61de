package config_test

import (
	"flag"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/urfave/cli"

	"github.com/wormwatch/wormwatch-cli/api/badlist"
	"github.com/wormwatch/wormwatch-cli/config"
)

func testContext(t *testing.T, flags map[string]string) *cli.Context {
	set := flag.NewFlagSet("test", 0)
	set.String("dir", "", "")
	set.String("badlist", "", "")
	set.String("org", "", "")
	set.String("github-token", "", "")
	set.Bool("skip-git", false, "")
	set.Bool("json", false, "")
	set.Bool("debug", false, "")
	for name, value := range flags {
		assert.NoError(t, set.Set(name, value))
	}
	return cli.NewContext(nil, set, nil)
}

func TestConfigFileValues(t *testing.T) {
	err := config.SetContext(testContext(t, map[string]string{
		"dir": filepath.Join("fixtures", "project"),
	}))
	assert.NoError(t, err)

	assert.Equal(t, "https://example.com/affected-packages.json", config.BadlistURL())
	assert.True(t, config.SkipGit())
	assert.Equal(t, map[string]interface{}{"skip-dev-deps": true}, config.AnalyzerOptions())
}

func TestFlagsOverrideFile(t *testing.T) {
	err := config.SetContext(testContext(t, map[string]string{
		"dir":     filepath.Join("fixtures", "project"),
		"badlist": "https://flags.example.com/list.json",
	}))
	assert.NoError(t, err)

	assert.Equal(t, "https://flags.example.com/list.json", config.BadlistURL())
}

func TestDefaults(t *testing.T) {
	err := config.SetContext(testContext(t, map[string]string{
		"dir": filepath.Join("fixtures", "bare"),
	}))
	assert.NoError(t, err)

	assert.Equal(t, badlist.DefaultURL, config.BadlistURL())
	assert.False(t, config.SkipGit())
	assert.False(t, config.JSON())
	assert.Empty(t, config.Org())
	assert.Nil(t, config.AnalyzerOptions())
}
