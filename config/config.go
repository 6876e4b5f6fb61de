// Package config implements application-level configuration.
//
// Values come from two sources, CLI flags and an optional `.wormwatch.yml`
// in the scanned directory, with flags taking precedence. Keeping the
// computation of each value in one function makes it easy to see which
// source set it.
package config

import (
	"path/filepath"

	"github.com/apex/log"
	"github.com/urfave/cli"

	"github.com/wormwatch/wormwatch-cli/api/badlist"
	"github.com/wormwatch/wormwatch-cli/files"
)

// Filename is the optional per-project configuration file.
const Filename = ".wormwatch.yml"

// A File is the decoded .wormwatch.yml.
type File struct {
	Badlist string `yaml:"badlist,omitempty"`
	SkipGit bool   `yaml:"skip-git,omitempty"`

	// Options are passed through to the analyzer.
	Options map[string]interface{} `yaml:"options,omitempty"`
}

var (
	ctx  *cli.Context
	file File
)

// SetContext loads configuration for the directory named by the CLI flags.
func SetContext(c *cli.Context) error {
	ctx = c
	file = File{}

	path := filepath.Join(Dir(), Filename)
	exists, err := files.Exists(path)
	if err != nil || !exists {
		return nil
	}
	if err := files.ReadYAML(&file, path); err != nil {
		return err
	}
	log.WithField("filename", path).Debug("loaded configuration file")
	return nil
}

// Dir returns the directory to scan.
func Dir() string {
	if dir := ctx.String("dir"); dir != "" {
		return dir
	}
	return "."
}

// BadlistURL returns the affected-packages list location.
func BadlistURL() string {
	if url := ctx.String("badlist"); url != "" {
		return url
	}
	if file.Badlist != "" {
		return file.Badlist
	}
	return badlist.DefaultURL
}

// SkipGit reports whether the local git repository scan is disabled.
func SkipGit() bool {
	return ctx.Bool("skip-git") || file.SkipGit
}

// Org returns the GitHub organization to scan, if any.
func Org() string {
	return ctx.String("org")
}

// GitHubToken returns the token for the organization scan.
func GitHubToken() string {
	return ctx.String("github-token")
}

// JSON reports whether output should be a machine-readable report.
func JSON() bool {
	return ctx.Bool("json")
}

// Debug reports whether debug logging is enabled.
func Debug() bool {
	return ctx.Bool("debug")
}

// AnalyzerOptions returns the analyzer option map from the config file.
func AnalyzerOptions() map[string]interface{} {
	return file.Options
}
