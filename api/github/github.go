// Package github scans a GitHub organization for worm indicators: repository
// names created by the worm's "-migration" forks, shai-hulud branches, and
// backdoor workflow files.
package github

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/wormwatch/wormwatch-cli/api"
)

// BaseURL is the GitHub REST API endpoint.
const BaseURL = "https://api.github.com"

// An Issue is one suspicious finding in the organization.
type Issue struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// A Scanner queries the GitHub API with an access token.
type Scanner struct {
	Token   string
	BaseURL string
}

// NewScanner returns a Scanner against the public GitHub API.
func NewScanner(token string) *Scanner {
	return &Scanner{Token: token, BaseURL: BaseURL}
}

type repository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
}

type branch struct {
	Name string `json:"name"`
}

type workflowList struct {
	Workflows []struct {
		Path string `json:"path"`
	} `json:"workflows"`
}

// ScanOrg checks every repository in org. Repositories whose branches or
// workflows are not accessible are skipped, not fatal; only failing to list
// the organization itself is an error.
func (s *Scanner) ScanOrg(org string) ([]Issue, error) {
	var repos []repository
	code, err := api.GetJSON(fmt.Sprintf("%s/orgs/%s/repos", s.BaseURL, org), s.Token, &repos)
	if err != nil {
		return nil, errors.Wrap(err, "could not list organization repositories")
	}
	if code != http.StatusOK {
		return nil, errors.Errorf("organization repository listing returned status %d", code)
	}

	var issues []Issue
	for _, repo := range repos {
		if strings.Contains(repo.Name, "-migration") || repo.Name == "Shai-Hulud" {
			issues = append(issues, Issue{Type: "repo", Name: repo.FullName})
		}

		var branches []branch
		code, err := api.GetJSON(fmt.Sprintf("%s/repos/%s/%s/branches", s.BaseURL, org, repo.Name), s.Token, &branches)
		if err == nil && code == http.StatusOK {
			for _, b := range branches {
				if b.Name == "shai-hulud" {
					issues = append(issues, Issue{Type: "branch", Name: repo.FullName + " (branch: shai-hulud)"})
				}
			}
		}

		var workflows workflowList
		code, err = api.GetJSON(fmt.Sprintf("%s/repos/%s/%s/actions/workflows", s.BaseURL, org, repo.Name), s.Token, &workflows)
		if err == nil && code == http.StatusOK {
			for _, workflow := range workflows.Workflows {
				if strings.Contains(workflow.Path, "shai-hulud-workflow.yml") {
					issues = append(issues, Issue{Type: "workflow", Name: repo.FullName})
				}
			}
		}
	}

	return issues, nil
}
