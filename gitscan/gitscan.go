// Package gitscan inspects a local git repository for worm indicators
// without talking to any remote API: branch names, recent commit messages,
// recently added files, and remote URLs.
package gitscan

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/apex/log"

	"github.com/wormwatch/wormwatch-cli/exec"
	"github.com/wormwatch/wormwatch-cli/files"
)

// An Issue is one suspicious finding in the repository.
type Issue struct {
	Type   string   `json:"type"`
	Items  []string `json:"items"`
	Reason string   `json:"reason"`
}

var suspiciousCommitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)shai-hulud`),
	regexp.MustCompile(`(?i)add.*bundle\.js`),
	regexp.MustCompile(`(?i)postinstall.*malicious`),
	regexp.MustCompile(`(?i)trufflehog`),
	regexp.MustCompile(`(?i)webhook\.site`),
	regexp.MustCompile(`(?i)exfiltrat`),
	regexp.MustCompile(`(?i)malicious.*package`),
	regexp.MustCompile(`(?i)backdoor`),
}

// Scan checks the repository at dir. A directory without a .git folder, or
// git invocations that fail, contribute no issues.
func Scan(dir string) []Issue {
	isRepo, err := files.ExistsFolder(filepath.Join(dir, ".git"))
	if err != nil || !isRepo {
		return nil
	}

	var issues []Issue

	if found := suspiciousBranches(gitLines(dir, "branch", "-a")); len(found) > 0 {
		issues = append(issues, Issue{
			Type:   "suspicious-branch",
			Items:  found,
			Reason: "Branch names match Shai-Hulud patterns",
		})
	}

	if found := suspiciousCommits(gitLines(dir, "log", "--oneline", "-20")); len(found) > 0 {
		issues = append(issues, Issue{
			Type:   "suspicious-commits",
			Items:  found,
			Reason: "Commit messages contain suspicious patterns",
		})
	}

	if found := suspiciousAddedFiles(gitLines(dir, "log", "--name-only", "--pretty=format:", "--since=30 days ago")); len(found) > 0 {
		issues = append(issues, Issue{
			Type:   "suspicious-files-added",
			Items:  found,
			Reason: "Suspicious files added in recent commits",
		})
	}

	if found := suspiciousRemotes(gitLines(dir, "remote", "-v")); len(found) > 0 {
		issues = append(issues, Issue{
			Type:   "suspicious-remote",
			Items:  found,
			Reason: "Git remotes point to suspicious repositories",
		})
	}

	return issues
}

func gitLines(dir string, args ...string) []string {
	stdout, stderr, err := exec.Run(exec.Cmd{Name: "git", Argv: args, Dir: dir})
	if err != nil {
		log.WithError(err).WithField("stderr", stderr).Debugf("git %s failed", strings.Join(args, " "))
		return nil
	}

	var lines []string
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(strings.ReplaceAll(line, "*", ""))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func suspiciousBranches(branches []string) []string {
	var found []string
	for _, branch := range branches {
		if suspiciousBranch(branch) {
			found = append(found, branch)
		}
	}
	return found
}

func suspiciousBranch(branch string) bool {
	lower := strings.ToLower(branch)
	switch {
	case strings.Contains(lower, "shai-hulud"),
		strings.Contains(lower, "exfiltrate"),
		strings.Contains(lower, "malware"),
		strings.Contains(lower, "backdoor"):
		return true
	case strings.Contains(lower, "migration"):
		// Legitimate migration branches are common; only flag ones that also
		// carry campaign markers.
		return strings.Contains(lower, "shai") ||
			strings.Contains(lower, "hulud") ||
			strings.Contains(lower, "worm") ||
			strings.Contains(lower, "malicious")
	}
	return false
}

func suspiciousCommits(commits []string) []string {
	var found []string
	seen := map[string]bool{}
	for _, commit := range commits {
		for _, pattern := range suspiciousCommitPatterns {
			if pattern.MatchString(commit) {
				if !seen[commit] {
					found = append(found, commit)
					seen[commit] = true
				}
				break
			}
		}
	}
	return found
}

func suspiciousAddedFiles(names []string) []string {
	var found []string
	seen := map[string]bool{}
	for _, name := range names {
		if suspiciousAddedFile(name) && !seen[name] {
			found = append(found, name)
			seen[name] = true
		}
	}
	return found
}

func suspiciousAddedFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "bundle.js") ||
		strings.Contains(lower, "shai-hulud") ||
		strings.Contains(lower, "malware") ||
		strings.Contains(lower, "backdoor") ||
		(strings.Contains(lower, "postinstall") && strings.Contains(lower, ".js"))
}

func suspiciousRemotes(remotes []string) []string {
	var found []string
	for _, remote := range remotes {
		if strings.Contains(strings.ToLower(remote), "shai-hulud") {
			found = append(found, remote)
		}
	}
	return found
}
