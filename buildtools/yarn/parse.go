// Package yarn parses yarn.lock files.
//
// Yarn has shipped two incompatible generations under the same filename.
// Classic (v1) lockfiles use a custom indentation grammar. Berry (v2+)
// lockfiles are strict YAML and carry a reserved `__metadata` entry. The
// generation is detected by a trial YAML decode: only a document that decodes
// cleanly AND contains the metadata sentinel is treated as berry; everything
// else falls back to the classic line grammar.
package yarn

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/apex/log"
	yaml "gopkg.in/yaml.v2"

	"github.com/wormwatch/wormwatch-cli/files"
	"github.com/wormwatch/wormwatch-cli/pkg"
)

// LockfileFilename is the filename yarn writes at the project root.
const LockfileFilename = "yarn.lock"

// Both spellings of the berry metadata key occur in the wild.
var metadataKeys = []string{"__metadata", "__metadata__"}

// classicEntry matches one block of the classic grammar: a descriptor header
// line ending in a colon, any indented body lines, and the indented
// `version "<semver>"` line.
var classicEntry = regexp.MustCompile(`(?m)^"?([^@\s]+)@[^"]*"?:\s*\n(?:[ \t]+.*\n)*?[ \t]+version\s+"([^"]+)"`)

// berryProtocol matches `<name>@<protocol>:` descriptors. The optional
// `@scope/` group keeps scoped names intact.
var berryProtocol = regexp.MustCompile(`^((?:@[^/@]+/)?[^@/]+)@(?:npm|patch|workspace|link|file|exec|git|http|https):`)

// FromLockfile extracts every resolved package recorded in the yarn.lock at
// the given path, auto-detecting the lockfile generation. Failures contribute
// nothing and are logged at debug level only.
func FromLockfile(path string) []pkg.Dependency {
	content, err := files.Read(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Debug("could not read yarn lockfile")
		return nil
	}

	if doc, ok := decodeBerry(content); ok {
		return fromBerry(doc)
	}
	return fromClassic(content)
}

func decodeBerry(content []byte) (map[string]interface{}, bool) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, false
	}
	for _, key := range metadataKeys {
		if _, ok := doc[key]; ok {
			return doc, true
		}
	}
	return nil, false
}

func isMetadataKey(key string) bool {
	for _, meta := range metadataKeys {
		if key == meta {
			return true
		}
	}
	return false
}

// fromClassic extracts (name, version) pairs from the v1 line grammar. The
// name is the portion of the first descriptor before its first `@`.
func fromClassic(content []byte) []pkg.Dependency {
	var deps []pkg.Dependency
	for _, match := range classicEntry.FindAllSubmatch(content, -1) {
		deps = append(deps, pkg.Dependency{
			Name:    string(match[1]),
			Version: string(match[2]),
		})
	}
	return deps
}

// fromBerry extracts packages from a decoded berry document. Non-object
// entries and entries without a version are skipped; so are descriptors that
// yield no name, rather than aborting the whole parse.
func fromBerry(doc map[string]interface{}) []pkg.Dependency {
	var deps []pkg.Dependency
	for descriptor, value := range doc {
		if isMetadataKey(descriptor) {
			continue
		}
		entry, ok := value.(map[interface{}]interface{})
		if !ok {
			continue
		}
		rawVersion, ok := entry["version"]
		if !ok || rawVersion == nil {
			continue
		}

		name := nameFromDescriptor(descriptor)
		if name == "" {
			continue
		}

		deps = append(deps, pkg.Dependency{
			Name:    name,
			Version: coerceVersion(rawVersion),
		})
	}
	return deps
}

// nameFromDescriptor resolves a berry descriptor key to a package name. A key
// may hold several comma-separated alias descriptors for the same resolved
// package; only the first is used. The precedence below is load-bearing:
// real-world descriptors are ambiguous, and matching a recognized protocol
// suffix before splitting on `@` is what keeps scoped names intact.
func nameFromDescriptor(descriptor string) string {
	first := strings.SplitN(descriptor, ",", 2)[0]
	first = strings.TrimSpace(first)
	first = strings.Trim(first, `"'`)
	first = strings.TrimSpace(first)

	if match := berryProtocol.FindStringSubmatch(first); match != nil {
		return match[1]
	}

	if strings.HasPrefix(first, "@") {
		if i := strings.Index(first[1:], "@"); i != -1 {
			return first[:i+1]
		}
	}

	if i := strings.Index(first, "@"); i != -1 {
		return first[:i]
	}

	return first
}

func coerceVersion(raw interface{}) string {
	if s, ok := raw.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", raw)
}
