// Package health provides prerequisite checks for relcut. It validates the
// repository and configuration a release run depends on, returning
// structured reports used by the 'relcut doctor' command.
package health

import (
	"fmt"
	"strings"

	"github.com/relcut/relcut/internal/build"
	"github.com/relcut/relcut/internal/config"
	"github.com/relcut/relcut/internal/git"
	"github.com/relcut/relcut/internal/publish"
)

// CheckResult represents the result of a single prerequisite check
type CheckResult struct {
	Name    string
	Passed  bool
	Message string
}

// Report contains all prerequisite check results
type Report struct {
	Checks []CheckResult
	Passed bool
}

// RunChecks runs every release prerequisite against the working directory
// and configuration.
func RunChecks(cfg *config.Configuration, workDir string) *Report {
	return collect(
		CheckRepository(workDir),
		CheckHead(workDir),
		CheckTaggerIdentity(cfg),
		CheckBuildConfiguration(cfg, workDir),
		CheckPublishToken(cfg),
	)
}

// ReleasePreflight runs the checks a release run depends on before any
// stage executes. The repository check is assumed already done by the
// caller, and the publish token is gated separately at publisher
// construction, where a missing token only matters for runs that publish.
func ReleasePreflight(cfg *config.Configuration, workDir string) *Report {
	return collect(
		CheckHead(workDir),
		CheckTaggerIdentity(cfg),
		CheckBuildConfiguration(cfg, workDir),
	)
}

func collect(checks ...CheckResult) *Report {
	report := &Report{Passed: true}
	for _, check := range checks {
		report.Checks = append(report.Checks, check)
		if !check.Passed {
			report.Passed = false
		}
	}
	return report
}

// Failures returns the checks that did not pass.
func (r *Report) Failures() []CheckResult {
	var failed []CheckResult
	for _, check := range r.Checks {
		if !check.Passed {
			failed = append(failed, check)
		}
	}
	return failed
}

// CheckRepository checks that workDir sits inside a git repository.
func CheckRepository(workDir string) CheckResult {
	if !git.IsRepository(workDir) {
		return CheckResult{
			Name:    "Git repository",
			Passed:  false,
			Message: "not inside a git repository",
		}
	}
	return CheckResult{
		Name:    "Git repository",
		Passed:  true,
		Message: "repository detected",
	}
}

// CheckHead checks that HEAD resolves to a commit, which a fresh
// repository without commits does not.
func CheckHead(workDir string) CheckResult {
	repo, err := git.Open(workDir)
	if err != nil {
		return CheckResult{
			Name:    "HEAD commit",
			Passed:  false,
			Message: fmt.Sprintf("cannot open repository: %v", err),
		}
	}

	subject, err := repo.HeadSubject()
	if err != nil {
		return CheckResult{
			Name:    "HEAD commit",
			Passed:  false,
			Message: fmt.Sprintf("cannot resolve HEAD: %v", err),
		}
	}
	return CheckResult{
		Name:    "HEAD commit",
		Passed:  true,
		Message: fmt.Sprintf("at %q", truncate(subject, 60)),
	}
}

// CheckTaggerIdentity checks the identity recorded on annotated tags.
func CheckTaggerIdentity(cfg *config.Configuration) CheckResult {
	if cfg.Tag.TaggerName == "" || cfg.Tag.TaggerEmail == "" {
		return CheckResult{
			Name:    "Tagger identity",
			Passed:  false,
			Message: "set tag.tagger_name and tag.tagger_email",
		}
	}
	return CheckResult{
		Name:    "Tagger identity",
		Passed:  true,
		Message: fmt.Sprintf("%s <%s>", cfg.Tag.TaggerName, cfg.Tag.TaggerEmail),
	}
}

// CheckBuildConfiguration checks that the build command template and the
// target matrix parse.
func CheckBuildConfiguration(cfg *config.Configuration, workDir string) CheckResult {
	builder, err := build.New(cfg, workDir)
	if err != nil {
		return CheckResult{
			Name:    "Build configuration",
			Passed:  false,
			Message: err.Error(),
		}
	}
	return CheckResult{
		Name:    "Build configuration",
		Passed:  true,
		Message: fmt.Sprintf("%d targets, command template parses", len(builder.Targets())),
	}
}

// CheckPublishToken checks for an API token, required only when a
// repository to publish to is configured.
func CheckPublishToken(cfg *config.Configuration) CheckResult {
	if cfg.Repository == "" {
		return CheckResult{
			Name:    "Publish token",
			Passed:  true,
			Message: "publishing not configured, token not required",
		}
	}
	if _, ok := publish.TokenFromEnv(); !ok {
		return CheckResult{
			Name:    "Publish token",
			Passed:  false,
			Message: "set GITHUB_TOKEN or GH_TOKEN to publish to " + cfg.Repository,
		}
	}
	return CheckResult{
		Name:    "Publish token",
		Passed:  true,
		Message: "token found in environment",
	}
}

// FormatReport renders one line per check using the given marks.
func FormatReport(report *Report, pass, fail string) string {
	var b strings.Builder
	for _, check := range report.Checks {
		mark := pass
		if !check.Passed {
			mark = fail
		}
		fmt.Fprintf(&b, "%s %s: %s\n", mark, check.Name, check.Message)
	}
	return b.String()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
