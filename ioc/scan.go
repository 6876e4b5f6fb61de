package ioc

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"

	"github.com/wormwatch/wormwatch-cli/files"
)

// A SuspiciousFile is a file whose hash or contents match a known indicator.
type SuspiciousFile struct {
	Type    string `json:"type"`
	Path    string `json:"path"`
	Hash    string `json:"hash,omitempty"`
	Details string `json:"details,omitempty"`
	Package string `json:"packageName,omitempty"`
}

// A SuspiciousScript is an install-time lifecycle script matching a known
// payload launcher.
type SuspiciousScript struct {
	Path   string `json:"path"`
	Script string `json:"script"`
}

// A Result aggregates everything the file scan flagged.
type Result struct {
	SuspiciousFiles   []SuspiciousFile   `json:"suspiciousFiles"`
	SuspiciousScripts []SuspiciousScript `json:"suspiciousScripts"`
}

type manifest struct {
	Name    string            `json:"name"`
	Scripts map[string]string `json:"scripts"`
}

// ScanNodeModules walks dir's node_modules tree, hash-checking known payload
// filenames and inspecting every package.json for suspicious lifecycle
// scripts, IoC strings, and leaked GitHub tokens. A missing node_modules or
// unreadable individual files contribute nothing.
func ScanNodeModules(dir string) Result {
	var result Result

	root := filepath.Join(dir, "node_modules")
	exists, err := files.ExistsFolder(root)
	if err != nil || !exists {
		return result
	}

	walkErr := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.WithError(err).WithField("path", path).Debug("skipping unreadable path")
			return nil
		}
		if info.IsDir() {
			return nil
		}

		switch info.Name() {
		case "bundle.js", "setup_bun.js", "bun_environment.js":
			checkPayloadHash(&result, path, info)
		case "package.json":
			checkManifest(&result, path)
		}
		return nil
	})
	if walkErr != nil {
		log.WithError(walkErr).WithField("dir", root).Debug("node_modules walk aborted")
	}

	return result
}

func checkPayloadHash(result *Result, path string, info os.FileInfo) {
	if info.Size() > MaxFileSize {
		return
	}
	content, err := files.Read(path)
	if err != nil {
		return
	}

	if info.Name() == "bundle.js" {
		sum := sha256.Sum256(content)
		if hash := hex.EncodeToString(sum[:]); hash == BundleHash {
			result.SuspiciousFiles = append(result.SuspiciousFiles, SuspiciousFile{
				Type: "bundle.js",
				Path: path,
				Hash: hash,
			})
		}
		return
	}

	sum := sha1.Sum(content)
	hash := hex.EncodeToString(sum[:])
	for _, known := range SecondWaveBunHashes[info.Name()] {
		if hash == known {
			result.SuspiciousFiles = append(result.SuspiciousFiles, SuspiciousFile{
				Type: info.Name(),
				Path: path,
				Hash: hash,
			})
			return
		}
	}
}

func checkManifest(result *Result, path string) {
	content, err := files.Read(path)
	if err != nil {
		return
	}
	var pkg manifest
	if err := json.Unmarshal(content, &pkg); err != nil {
		return
	}

	for _, hook := range []string{"postinstall", "preinstall"} {
		script := pkg.Scripts[hook]
		if script != "" && SuspiciousInstallScript.MatchString(script) {
			result.SuspiciousScripts = append(result.SuspiciousScripts, SuspiciousScript{
				Path:   path,
				Script: script,
			})
		}
	}

	if match := SuspiciousIoCs.Find(content); match != nil {
		result.SuspiciousFiles = append(result.SuspiciousFiles, SuspiciousFile{
			Type:    "IOC",
			Path:    path,
			Details: string(match),
			Package: pkg.Name,
		})
	}

	if TokenPattern.Match(content) && !looksLikeDocumentation(content) {
		result.SuspiciousFiles = append(result.SuspiciousFiles, SuspiciousFile{
			Type:    "GitHub-Token",
			Path:    path,
			Details: "Potential GitHub token detected",
			Package: pkg.Name,
		})
	}
}

// looksLikeDocumentation suppresses token hits inside manifests that are
// plainly documenting token formats rather than leaking one.
func looksLikeDocumentation(content []byte) bool {
	s := string(content)
	if strings.Contains(s, "description") && strings.Contains(s, "example") {
		return true
	}
	return strings.Contains(s, "readme") || strings.Contains(s, "documentation")
}
