// Package ioc holds the indicator-of-compromise signatures for both
// Shai-Hulud waves and scans project trees for them.
//
// Wave 1 (Sept 2025) shipped an obfuscated bundle.js executed from
// postinstall. Wave 2 ("Sha1-Hulud: The Second Coming", Nov 2025) shipped a
// fake Bun runtime via setup_bun.js / bun_environment.js.
package ioc

import "regexp"

// BundleHash is the SHA-256 of the wave-1 bundle.js payload.
const BundleHash = "46faab8ab153fae6e80e7cca38eab363075bb524edd79e42269217a083628f09"

// SecondWaveBunHashes maps wave-2 payload filenames to their known SHA-1
// hashes, per public research on the fake Bun runtime.
var SecondWaveBunHashes = map[string][]string{
	"bun_environment.js": {
		"d60ec97eea19fffb4809bc35b91033b52490ca11",
		"3d7570d14d34b0ba137d502f042b27b0f37a59fa",
	},
	"setup_bun.js": {
		"d1829b4708126dcc7bea7437c04d1f10eacd4a16",
	},
}

// SuspiciousInstallScript matches install-time lifecycle scripts known to
// launch either wave's payload or its exfiltration tooling.
var SuspiciousInstallScript = regexp.MustCompile(`(?i)(` +
	`node\s+bundle\.js|` +
	`node\s+setup_bun\.js|` +
	`setup_bun\.js|` +
	`bun_environment\.js|` +
	`trufflehog|` +
	`webhook\.site|` +
	`exfiltrat` +
	`)`)

// SuspiciousIoCs matches high-signal strings from both waves: exfil
// endpoints, campaign branding, backdoor workflows, and the JSON files the
// worm writes with stolen data.
var SuspiciousIoCs = regexp.MustCompile(`(?i)(` +
	`webhook\.site|` +
	`bb8ca5f6-4175-45d2-b042-fc9ebb8170b7|` +
	`shai[-_ ]?hulud|` +
	`sha1[-_ ]?hulud|` +
	`Sha1-Hulud:\s*The Second Coming|` +
	`SHA1HULUD|` +
	`shai-hulud-workflow\.ya?ml|` +
	`\.github/workflows/discussion\.ya?ml|` +
	`\.github/workflows/formatter_[0-9]+\.ya?ml|` +
	`actionsSecrets\.json|` +
	`truffleSecrets\.json|` +
	`cloud\.json|` +
	`environment\.json|` +
	`contents\.json|` +
	`trufflehog` +
	`)`)

// TokenPattern matches GitHub personal access and OAuth tokens.
var TokenPattern = regexp.MustCompile(`ghp_[a-zA-Z0-9]{36}|gho_[a-zA-Z0-9]{36}`)

// MaxFileSize bounds how large a payload file the hash check will read.
const MaxFileSize = 10 * 1024 * 1024
