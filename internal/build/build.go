// Package build compiles per-target release binaries and packages them
// for upload.
package build

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"

	"golang.org/x/sync/errgroup"

	"github.com/relcut/relcut/internal/config"
)

// Runner executes an external command and returns its combined output.
// The env slice is appended to the inherited process environment.
type Runner interface {
	Run(ctx context.Context, dir string, env []string, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, dir string, env []string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	return cmd.CombinedOutput()
}

// commandVars are the fields a build command template may reference.
type commandVars struct {
	Version string
	OS      string
	Arch    string
	Output  string
	Project string
}

// Artifact is one compiled binary together with its checksum.
type Artifact struct {
	Target   Target
	Path     string
	Checksum string
}

// Result collects everything one build stage produced.
type Result struct {
	Version     string
	Artifacts   []Artifact
	ArchivePath string
}

// Builder compiles a binary per target, writes a .sha256 file next to
// each, and optionally bundles the lot into a combined tar.gz archive.
type Builder struct {
	project     string
	command     *template.Template
	distDir     string
	workDir     string
	targets     []Target
	parallelism int
	archive     bool

	runner Runner
}

// New builds a Builder from configuration. The command template and the
// target matrix are validated here so a release fails before any compile
// starts. A relative dist dir is resolved against workDir.
func New(cfg *config.Configuration, workDir string) (*Builder, error) {
	targets, err := ParseTargets(cfg.Build.Targets)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New("command").Parse(cfg.Build.Command)
	if err != nil {
		return nil, fmt.Errorf("parsing build command template: %w", err)
	}

	distDir := cfg.Build.DistDir
	if !filepath.IsAbs(distDir) {
		distDir = filepath.Join(workDir, distDir)
	}
	parallelism := cfg.Build.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}

	return &Builder{
		project:     cfg.Project,
		command:     tmpl,
		distDir:     distDir,
		workDir:     workDir,
		targets:     targets,
		parallelism: parallelism,
		archive:     cfg.Build.Archive,
		runner:      execRunner{},
	}, nil
}

// Targets returns the parsed target matrix.
func (b *Builder) Targets() []Target {
	return b.targets
}

// Plan returns the artifact paths a build of the given version would
// produce, without compiling anything. Used to locate previously built
// artifacts when publishing a release after the fact.
func (b *Builder) Plan(version string) []string {
	paths := make([]string, 0, len(b.targets)*2+1)
	for _, target := range b.targets {
		output := b.targetPath(version, target)
		paths = append(paths, output, output+".sha256")
	}
	if b.archive {
		paths = append(paths, b.archivePath(version))
	}
	return paths
}

// Build compiles every target for the given version. Targets fan out up
// to the configured parallelism and the first failure cancels the rest.
func (b *Builder) Build(ctx context.Context, version string) (*Result, error) {
	if err := os.MkdirAll(b.distDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating dist dir: %w", err)
	}

	artifacts := make([]Artifact, len(b.targets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.parallelism)
	for i, target := range b.targets {
		i, target := i, target
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			artifact, err := b.buildTarget(ctx, version, target)
			if err != nil {
				return err
			}
			artifacts[i] = artifact
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Version: version, Artifacts: artifacts}
	if b.archive {
		archivePath, err := b.writeArchive(version, artifacts)
		if err != nil {
			return nil, err
		}
		result.ArchivePath = archivePath
	}
	return result, nil
}

func (b *Builder) buildTarget(ctx context.Context, version string, target Target) (Artifact, error) {
	output := b.targetPath(version, target)
	argv, err := b.renderCommand(version, target, output)
	if err != nil {
		return Artifact{}, err
	}

	env := []string{"GOOS=" + target.OS, "GOARCH=" + target.Arch}
	out, err := b.runner.Run(ctx, b.workDir, env, argv[0], argv[1:]...)
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return Artifact{}, fmt.Errorf("building %s: %w: %s", target, err, msg)
		}
		return Artifact{}, fmt.Errorf("building %s: %w", target, err)
	}

	checksum, err := WriteChecksum(output)
	if err != nil {
		return Artifact{}, fmt.Errorf("checksumming %s: %w", target, err)
	}
	return Artifact{Target: target, Path: output, Checksum: checksum}, nil
}

// renderCommand executes the command template and splits the result on
// whitespace. Shell quoting is not interpreted.
func (b *Builder) renderCommand(version string, target Target, output string) ([]string, error) {
	var buf bytes.Buffer
	vars := commandVars{
		Version: version,
		OS:      target.OS,
		Arch:    target.Arch,
		Output:  output,
		Project: b.project,
	}
	if err := b.command.Execute(&buf, vars); err != nil {
		return nil, fmt.Errorf("rendering build command: %w", err)
	}
	argv := strings.Fields(buf.String())
	if len(argv) == 0 {
		return nil, fmt.Errorf("build command for %s rendered empty", target)
	}
	return argv, nil
}

func (b *Builder) writeArchive(version string, artifacts []Artifact) (string, error) {
	dest := b.archivePath(version)
	files := make([]string, 0, len(artifacts)*2)
	for _, artifact := range artifacts {
		files = append(files, artifact.Path, artifact.Path+".sha256")
	}
	if err := WriteArchive(dest, files); err != nil {
		return "", err
	}
	return dest, nil
}

func (b *Builder) targetPath(version string, target Target) string {
	return filepath.Join(b.distDir, ArtifactName(b.project, version, target))
}

func (b *Builder) archivePath(version string) string {
	return filepath.Join(b.distDir, fmt.Sprintf("%s_%s.tar.gz", b.project, version))
}
