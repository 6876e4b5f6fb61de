package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
	clilog "github.com/apex/log/handlers/cli"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mitchellh/go-wordwrap"
	"github.com/urfave/cli"

	"github.com/wormwatch/wormwatch-cli/analyzers/nodejs"
	"github.com/wormwatch/wormwatch-cli/api/badlist"
	"github.com/wormwatch/wormwatch-cli/api/github"
	"github.com/wormwatch/wormwatch-cli/config"
	"github.com/wormwatch/wormwatch-cli/gitscan"
	"github.com/wormwatch/wormwatch-cli/ioc"
	"github.com/wormwatch/wormwatch-cli/pkg"
)

// main.{version,commit} are set by linker flags in Makefile and goreleaser.
var version string
var commit string

const (
	dirUsage     = "directory to scan; defaults to the current directory"
	badlistUsage = "URL of the affected package list; defaults to the canonical list"
	orgUsage     = "GitHub organization to scan (requires --github-token)"
	tokenUsage   = "GitHub token for the organization scan"
	skipGitUsage = "skip the local git repository scan"
	jsonUsage    = "print the report as JSON"
	debugUsage   = "print debug information to stderr"
)

const wrapWidth = 78

func main() {
	app := cli.NewApp()
	app.Name = "wormwatch"
	app.Usage = "scan npm projects for Shai-Hulud worm infections"
	app.Version = version + " (revision " + commit + ")"

	app.Action = scanCmd
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "d, dir", Usage: dirUsage},
		cli.StringFlag{Name: "badlist", Usage: badlistUsage},
		cli.StringFlag{Name: "o, org", Usage: orgUsage},
		cli.StringFlag{Name: "g, github-token", Usage: tokenUsage},
		cli.BoolFlag{Name: "skip-git", Usage: skipGitUsage},
		cli.BoolFlag{Name: "json", Usage: jsonUsage},
		cli.BoolFlag{Name: "debug", Usage: debugUsage},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("%s", err.Error())
	}
}

type report struct {
	ScannedDir        string                 `json:"scannedDir"`
	Timestamp         string                 `json:"timestamp"`
	BadDeps           []pkg.Dependency       `json:"badDeps"`
	TotalScanned      int                    `json:"totalScanned"`
	SuspiciousFiles   []ioc.SuspiciousFile   `json:"suspiciousFiles"`
	SuspiciousScripts []ioc.SuspiciousScript `json:"suspiciousScripts"`
	GitIssues         []gitscan.Issue        `json:"gitIssues"`
	GithubIssues      []github.Issue         `json:"githubIssues"`
	TotalIssues       int                    `json:"totalIssues"`
}

func scanCmd(ctx *cli.Context) error {
	initLogging(ctx.Bool("debug"))
	if err := config.SetContext(ctx); err != nil {
		return err
	}

	dir, err := filepath.Abs(config.Dir())
	if err != nil {
		return err
	}
	interactive := !config.JSON()

	list, err := badlist.Get(config.BadlistURL())
	if err != nil {
		return cli.NewExitError("Cannot proceed without an affected package list: "+err.Error(), 1)
	}

	analyzer, err := nodejs.New(dir, list, config.AnalyzerOptions())
	if err != nil {
		return err
	}

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	if interactive {
		s.Suffix = " Scanning " + dir + "..."
		s.Start()
	}

	depResult := analyzer.Analyze()
	iocResult := ioc.ScanNodeModules(dir)

	var gitIssues []gitscan.Issue
	if !config.SkipGit() {
		gitIssues = gitscan.Scan(dir)
	}

	if interactive {
		s.Stop()
	}

	var githubIssues []github.Issue
	switch {
	case config.Org() != "" && config.GitHubToken() != "":
		githubIssues, err = github.NewScanner(config.GitHubToken()).ScanOrg(config.Org())
		if err != nil {
			log.WithError(err).Warn("GitHub organization scan failed")
		}
	case config.Org() != "" || config.GitHubToken() != "":
		log.Warn("provide both --org and --github-token for the GitHub scan")
	}

	r := report{
		ScannedDir:        dir,
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
		BadDeps:           depResult.BadDeps,
		TotalScanned:      depResult.TotalScanned,
		SuspiciousFiles:   iocResult.SuspiciousFiles,
		SuspiciousScripts: iocResult.SuspiciousScripts,
		GitIssues:         gitIssues,
		GithubIssues:      githubIssues,
	}
	r.TotalIssues = len(r.BadDeps) + len(r.SuspiciousFiles) + len(r.SuspiciousScripts) +
		len(r.GitIssues) + len(r.GithubIssues)

	if config.JSON() {
		return printJSON(r)
	}

	printReport(r)
	if r.TotalIssues > 0 {
		return cli.NewExitError("", 1)
	}
	return nil
}

func initLogging(debug bool) {
	log.SetHandler(clilog.New(os.Stderr))
	if debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

func printJSON(r report) error {
	// Keep the report shape stable: arrays, never null.
	if r.SuspiciousFiles == nil {
		r.SuspiciousFiles = []ioc.SuspiciousFile{}
	}
	if r.SuspiciousScripts == nil {
		r.SuspiciousScripts = []ioc.SuspiciousScript{}
	}
	if r.GitIssues == nil {
		r.GitIssues = []gitscan.Issue{}
	}
	if r.GithubIssues == nil {
		r.GithubIssues = []github.Issue{}
	}

	msg, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(msg))
	return nil
}

func printReport(r report) {
	fmt.Println()
	if r.TotalIssues == 0 {
		fmt.Println(color.GreenString("No Shai-Hulud indicators found."))
		fmt.Printf("Checked %d packages in %s\n", r.TotalScanned, r.ScannedDir)
		return
	}

	fmt.Println(color.RedString("Found %d indicator(s) of compromise in %s", r.TotalIssues, r.ScannedDir))

	if len(r.BadDeps) > 0 {
		fmt.Println(color.HiYellowString("\nCompromised dependencies:"))
		for _, dep := range r.BadDeps {
			fmt.Printf("  %s@%s\n", dep.Name, dep.Version)
		}
	}

	if len(r.SuspiciousScripts) > 0 {
		fmt.Println(color.HiYellowString("\nSuspicious install scripts:"))
		for _, script := range r.SuspiciousScripts {
			fmt.Printf("  %s\n    %s\n", script.Path, script.Script)
		}
	}

	if len(r.SuspiciousFiles) > 0 {
		fmt.Println(color.HiYellowString("\nSuspicious files:"))
		for _, file := range r.SuspiciousFiles {
			fmt.Printf("  [%s] %s", file.Type, file.Path)
			if file.Details != "" {
				fmt.Printf(" (%s)", file.Details)
			}
			fmt.Println()
		}
	}

	if len(r.GitIssues) > 0 {
		fmt.Println(color.HiYellowString("\nGit repository findings:"))
		for _, issue := range r.GitIssues {
			fmt.Printf("  [%s] %s\n", issue.Type, issue.Reason)
			for _, item := range issue.Items {
				fmt.Printf("    %s\n", item)
			}
		}
	}

	if len(r.GithubIssues) > 0 {
		fmt.Println(color.HiYellowString("\nGitHub organization findings:"))
		for _, issue := range r.GithubIssues {
			fmt.Printf("  [%s] %s\n", issue.Type, issue.Name)
		}
	}

	fmt.Println()
	fmt.Println(wordwrap.WrapString("Rotate any credentials that were available to the machines that installed these packages, remove the packages above, and reinstall from a clean lockfile. Treat every token in the environment as leaked.", wrapWidth))
}
