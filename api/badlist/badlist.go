// Package badlist fetches and queries the affected-packages list: a JSON map
// of package name to the exact versions known to carry worm payloads.
package badlist

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"

	"github.com/wormwatch/wormwatch-cli/api"
	"github.com/wormwatch/wormwatch-cli/files"
)

// DefaultURL is the canonical location of the affected-packages list.
const DefaultURL = "https://raw.githubusercontent.com/wormwatch/affected-packages/main/affected-packages.json"

// LocalFilename is the fallback list looked up in the working directory and
// under ~/.wormwatch when the remote fetch fails.
const LocalFilename = "affected-packages.json"

// A Badlist maps a package name to its known-compromised versions.
type Badlist map[string][]string

// Matches reports whether the exact (name, version) pair is known-compromised.
func (b Badlist) Matches(name, version string) bool {
	for _, bad := range b[name] {
		if bad == version {
			return true
		}
	}
	return false
}

// Packages returns the number of listed packages.
func (b Badlist) Packages() int {
	return len(b)
}

// Parse decodes an affected-packages document. Keys starting with `_` are
// list metadata, and entries whose value is not a version array are skipped
// rather than failing the whole list.
func Parse(data []byte) (Badlist, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "could not parse affected package list")
	}

	list := Badlist{}
	for name, value := range raw {
		if strings.HasPrefix(name, "_") {
			continue
		}
		var versions []string
		if err := json.Unmarshal(value, &versions); err != nil {
			log.WithField("package", name).Debug("skipping malformed affected list entry")
			continue
		}
		list[name] = versions
	}
	return list, nil
}

// Fetch retrieves the affected-packages list from url.
func Fetch(url string) (Badlist, error) {
	res, code, err := api.Get(url, "")
	if err != nil {
		return nil, errors.Wrap(err, "could not fetch affected package list")
	}
	if code != http.StatusOK {
		return nil, errors.Errorf("affected package list request returned status %d", code)
	}
	return Parse(res)
}

// Get fetches a fresh list from url on every run, falling back to a local
// affected-packages.json only when the remote fetch fails.
func Get(url string) (Badlist, error) {
	list, err := Fetch(url)
	if err == nil {
		log.Infof("Fetched latest affected package list from remote (%d packages).", list.Packages())
		return list, nil
	}

	log.WithError(err).Warn("remote fetch failed, falling back to local affected package list")
	for _, path := range localPaths() {
		exists, existsErr := files.Exists(path)
		if existsErr != nil || !exists {
			continue
		}
		data, readErr := files.Read(path)
		if readErr != nil {
			continue
		}
		local, parseErr := Parse(data)
		if parseErr != nil {
			log.WithError(parseErr).WithField("path", path).Debug("could not parse local affected package list")
			continue
		}
		log.Infof("Using local affected package list at %s (%d packages).", path, local.Packages())
		return local, nil
	}

	return nil, errors.New("no affected package list available")
}

func localPaths() []string {
	paths := []string{LocalFilename}
	if home, err := homedir.Dir(); err == nil {
		paths = append(paths, filepath.Join(home, ".wormwatch", LocalFilename))
	}
	return paths
}
