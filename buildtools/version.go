// Package buildtools provides helpers shared by the lockfile parsers.
package buildtools

import "regexp"

var leadingNonDigits = regexp.MustCompile(`^[^\d]+`)

// NormalizeVersion strips range decoration (`^`, `~`, `>=`, ...) from the
// front of a version string, leaving the first digit onward unchanged.
// Already-clean versions pass through untouched.
func NormalizeVersion(version string) string {
	return leadingNonDigits.ReplaceAllString(version, "")
}
