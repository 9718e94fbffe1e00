// Package pipeline runs the release sequence end to end: resolve the
// version, generate notes, build artifacts, tag, publish. Every result
// travels through explicit return values; the pipeline never
// communicates through process state.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/relcut/relcut/internal/build"
	"github.com/relcut/relcut/internal/config"
	"github.com/relcut/relcut/internal/git"
	"github.com/relcut/relcut/internal/history"
	"github.com/relcut/relcut/internal/notes"
	"github.com/relcut/relcut/internal/progress"
	"github.com/relcut/relcut/internal/publish"
	"github.com/relcut/relcut/internal/version"
)

// MarkerStore reads and writes the version markers backing releases.
type MarkerStore interface {
	version.MarkerView
	TagName(version string) string
	LatestBelow(limit string) (string, bool, error)
	Create(version, message string) error
	Delete(version string) error
	Push(ctx context.Context, version string, force bool) error
	PushDeletion(ctx context.Context, version string) error
}

// CommitLog supplies the commit subjects the notes are generated from.
type CommitLog interface {
	HeadSubject() (string, error)
	SubjectsSince(tag string) ([]string, error)
}

// Builder compiles and packages the release artifacts for a version.
type Builder interface {
	Build(ctx context.Context, version string) (*build.Result, error)
}

// Publisher creates the hosted release and uploads its assets.
type Publisher interface {
	ReleaseByTag(ctx context.Context, tag string) (*publish.Release, bool, error)
	DeleteRelease(ctx context.Context, id int64) error
	PublishRelease(ctx context.Context, tag, title, notes string, assets []string) (*publish.Release, error)
}

// Reporter receives stage progress while the pipeline runs.
type Reporter interface {
	StartStage(name string)
	FinishStage(message string)
	FailStage(message string)
	SkipStage(message string)
	PlannedAction(action string)
	Printf(format string, args ...any)
}

// Recorder appends finished runs to the release history.
type Recorder interface {
	Append(entry history.Entry) error
}

// Production implementations of the collaborator interfaces.
var (
	_ MarkerStore = (*git.Markers)(nil)
	_ CommitLog   = (*git.Repo)(nil)
	_ Builder     = (*build.Builder)(nil)
	_ Publisher   = (*publish.Client)(nil)
	_ Reporter    = (*progress.Display)(nil)
	_ Recorder    = (*history.Log)(nil)
)

// nopReporter drops all progress output.
type nopReporter struct{}

func (nopReporter) StartStage(string)     {}
func (nopReporter) FinishStage(string)    {}
func (nopReporter) FailStage(string)      {}
func (nopReporter) SkipStage(string)      {}
func (nopReporter) PlannedAction(string)  {}
func (nopReporter) Printf(string, ...any) {}

// Request carries the trigger inputs for one release run.
type Request struct {
	// Manual is an operator-supplied version, used verbatim when present.
	Manual string
	// PRTitle is the merged pull request title, when the trigger has one.
	PRTitle string
	// Retag re-cuts an existing version, replacing its tag and release.
	Retag bool
	// DryRun resolves the version and generates notes, then prints the
	// plan without building, tagging, or publishing.
	DryRun bool
	// SkipPublish stops the run after the tag stage.
	SkipPublish bool
}

// Outcome reports what a run produced. It is returned non-nil whenever
// a version was resolved, so callers can report partial progress on
// failure.
type Outcome struct {
	Version     string
	Source      version.Source
	Replaces    bool
	Tag         string
	Notes       string
	Artifacts   []build.Artifact
	ArchivePath string
	ReleaseURL  string
	Published   bool
	DryRun      bool
	Duration    time.Duration
}

// Pipeline owns one release run. Stages execute strictly in order:
// resolve, notes, build, tag, publish.
type Pipeline struct {
	cfg       *config.Configuration
	markers   MarkerStore
	log       CommitLog
	builder   Builder
	publisher Publisher
	reporter  Reporter
	recorder  Recorder
	now       func() time.Time
}

// New wires the production collaborators for runs against the
// repository at workDir. publisher may be nil when the run will not
// publish; reporter may be nil for silent runs.
func New(cfg *config.Configuration, workDir string, publisher Publisher, reporter Reporter) (*Pipeline, error) {
	repo, err := git.Open(workDir)
	if err != nil {
		return nil, err
	}
	builder, err := build.New(cfg, workDir)
	if err != nil {
		return nil, fmt.Errorf("configuring builder: %w", err)
	}

	markers := &git.Markers{
		Repo:   repo,
		Prefix: cfg.TagPrefix,
		Tagger: git.Identity{Name: cfg.Tag.TaggerName, Email: cfg.Tag.TaggerEmail},
		Remote: cfg.Tag.Remote,
	}

	return NewWithOptions(cfg, Options{
		Markers:   markers,
		Log:       repo,
		Builder:   builder,
		Publisher: publisher,
		Reporter:  reporter,
		Recorder:  history.New(cfg.StateDir, cfg.Project, cfg.MaxHistory),
	}), nil
}

// Options holds explicit collaborators, used by tests and by commands
// that only need part of the pipeline. A nil Publisher skips
// publishing, a nil Reporter is silent, and a nil Recorder keeps no
// history.
type Options struct {
	Markers   MarkerStore
	Log       CommitLog
	Builder   Builder
	Publisher Publisher
	Reporter  Reporter
	Recorder  Recorder
	Now       func() time.Time
}

// NewWithOptions builds a pipeline from explicit collaborators.
func NewWithOptions(cfg *config.Configuration, opts Options) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		markers:   opts.Markers,
		log:       opts.Log,
		builder:   opts.Builder,
		publisher: opts.Publisher,
		reporter:  opts.Reporter,
		recorder:  opts.Recorder,
		now:       opts.Now,
	}
	if p.reporter == nil {
		p.reporter = nopReporter{}
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// StageCount returns how many stages a run with the given request
// reports, for sizing the progress display.
func StageCount(req Request) int {
	if req.DryRun {
		return 2
	}
	return 5
}

// Run executes the release sequence for one request and appends the
// result to the release history.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Outcome, error) {
	started := p.now()
	out, err := p.run(ctx, req)
	if out != nil {
		out.Duration = p.now().Sub(started)
		p.record(out, err)
	}
	return out, err
}

func (p *Pipeline) run(ctx context.Context, req Request) (*Outcome, error) {
	res, err := p.resolve(req)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Version:  res.Version,
		Source:   res.Source,
		Replaces: res.Replaces,
		Tag:      p.markers.TagName(res.Version),
		DryRun:   req.DryRun,
	}

	if err := p.generateNotes(out); err != nil {
		return out, err
	}

	if req.DryRun {
		p.printPlan(out, req)
		return out, nil
	}

	if err := p.build(ctx, out); err != nil {
		return out, err
	}
	if err := p.tag(ctx, out); err != nil {
		return out, err
	}
	return out, p.publish(ctx, req, out)
}

// resolve runs the version stage. A resolution failure aborts the whole
// run; nothing is built, tagged, or published afterwards.
func (p *Pipeline) resolve(req Request) (*version.Resolution, error) {
	p.reporter.StartStage("Resolve version")

	head, err := p.log.HeadSubject()
	if err != nil {
		p.reporter.FailStage(err.Error())
		return nil, fmt.Errorf("reading HEAD subject: %w", err)
	}

	resolver := &version.Resolver{Baseline: p.cfg.Baseline}
	res, err := resolver.Resolve(version.Inputs{
		Manual:        req.Manual,
		PRTitle:       req.PRTitle,
		CommitSubject: head,
		Retag:         req.Retag,
	}, p.markers)
	if err != nil {
		p.reporter.FailStage(err.Error())
		return nil, err
	}

	msg := fmt.Sprintf("version %s (%s)", res.Version, res.Source)
	if res.Replaces {
		msg += ", replacing existing release"
	}
	p.reporter.FinishStage(msg)
	return res, nil
}

// generateNotes runs the notes stage. The notes cover commits since the
// previous release; when an existing version is re-cut the previous
// release is the marker below it, so the re-cut keeps its full range.
func (p *Pipeline) generateNotes(out *Outcome) error {
	p.reporter.StartStage("Generate notes")

	base, ok, err := p.notesBase(out)
	if err != nil {
		p.reporter.FailStage(err.Error())
		return fmt.Errorf("finding previous release: %w", err)
	}
	baseTag := ""
	if ok {
		baseTag = p.markers.TagName(base)
	}

	subjects, err := p.log.SubjectsSince(baseTag)
	if err != nil {
		p.reporter.FailStage(err.Error())
		return fmt.Errorf("collecting commits since %q: %w", baseTag, err)
	}

	doc := notes.Generate(subjects)
	out.Notes = notes.Render(doc)
	p.reporter.FinishStage(fmt.Sprintf("%d entries from %d commits", doc.Count(), len(subjects)))
	return nil
}

func (p *Pipeline) notesBase(out *Outcome) (string, bool, error) {
	if out.Replaces {
		return p.markers.LatestBelow(out.Version)
	}
	return p.markers.Latest()
}

// printPlan reports the side effects a real run would have taken, one
// planned action per line.
func (p *Pipeline) printPlan(out *Outcome, req Request) {
	r := p.reporter
	r.PlannedAction(fmt.Sprintf("build %d targets into %s", len(p.cfg.Build.Targets), p.cfg.Build.DistDir))
	if out.Replaces {
		r.PlannedAction(fmt.Sprintf("delete existing tag %s and its release", out.Tag))
	}
	r.PlannedAction(fmt.Sprintf("create annotated tag %s", out.Tag))
	if p.cfg.Tag.Push {
		r.PlannedAction(fmt.Sprintf("push %s to %s", out.Tag, p.cfg.Tag.Remote))
	}
	switch {
	case req.SkipPublish:
		r.PlannedAction("skip publishing (--skip-publish)")
	case p.cfg.Repository == "":
		r.PlannedAction("skip publishing (no repository configured)")
	default:
		r.PlannedAction(fmt.Sprintf("publish release %q to %s", p.releaseTitle(out.Version), p.cfg.Repository))
	}
}

// build runs the artifact stage. A build failure aborts before any
// marker is written.
func (p *Pipeline) build(ctx context.Context, out *Outcome) error {
	p.reporter.StartStage("Build artifacts")

	result, err := p.builder.Build(ctx, out.Version)
	if err != nil {
		p.reporter.FailStage(err.Error())
		return err
	}

	out.Artifacts = result.Artifacts
	out.ArchivePath = result.ArchivePath
	p.reporter.FinishStage(fmt.Sprintf("%d artifacts in %s", len(out.Artifacts), p.cfg.Build.DistDir))
	return nil
}

// tag runs the marker stage. On a re-cut the old tag is deleted
// immediately before the new one is created, never earlier.
func (p *Pipeline) tag(ctx context.Context, out *Outcome) error {
	p.reporter.StartStage("Tag release")

	if out.Replaces {
		if err := p.markers.Delete(out.Version); err != nil {
			p.reporter.FailStage(err.Error())
			return err
		}
		if p.cfg.Tag.Push {
			// The forced push below overwrites the remote tag anyway, so
			// a failed remote deletion (tag never pushed) only warns.
			if err := p.markers.PushDeletion(ctx, out.Version); err != nil {
				p.reporter.Printf("warning: removing remote tag %s: %v\n", out.Tag, err)
			}
		}
	}

	if err := p.markers.Create(out.Version, out.Notes); err != nil {
		p.reporter.FailStage(err.Error())
		return err
	}

	if !p.cfg.Tag.Push {
		p.reporter.FinishStage(fmt.Sprintf("tag %s created (push disabled)", out.Tag))
		return nil
	}

	if err := p.markers.Push(ctx, out.Version, out.Replaces); err != nil {
		p.reporter.FailStage(err.Error())
		return err
	}
	p.reporter.FinishStage(fmt.Sprintf("tag %s pushed to %s", out.Tag, p.cfg.Tag.Remote))
	return nil
}

// publish runs the release stage. A publish failure leaves the tag in
// place and fails the run.
func (p *Pipeline) publish(ctx context.Context, req Request, out *Outcome) error {
	if req.SkipPublish {
		p.reporter.SkipStage("publish skipped (--skip-publish)")
		return nil
	}
	if p.publisher == nil {
		p.reporter.SkipStage("publish skipped (not configured)")
		return nil
	}

	p.reporter.StartStage("Publish release")

	if out.Replaces {
		if err := p.deleteExistingRelease(ctx, out.Tag); err != nil {
			p.reporter.FailStage(err.Error())
			return err
		}
	}

	release, err := p.publisher.PublishRelease(ctx, out.Tag, p.releaseTitle(out.Version), out.Notes, publishAssets(out))
	if release != nil {
		out.ReleaseURL = release.HTMLURL
	}
	if err != nil {
		p.reporter.FailStage(err.Error())
		return err
	}

	out.Published = true
	p.reporter.FinishStage(release.HTMLURL)
	return nil
}

// deleteExistingRelease removes the hosted release attached to the old
// tag so the re-cut can recreate it.
func (p *Pipeline) deleteExistingRelease(ctx context.Context, tag string) error {
	existing, found, err := p.publisher.ReleaseByTag(ctx, tag)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	return p.publisher.DeleteRelease(ctx, existing.ID)
}

func (p *Pipeline) releaseTitle(ver string) string {
	return fmt.Sprintf("%s %s", p.cfg.Project, ver)
}

// publishAssets lists the files uploaded with a release: each artifact,
// its checksum file, and the combined archive when one was written.
func publishAssets(out *Outcome) []string {
	var assets []string
	for _, a := range out.Artifacts {
		assets = append(assets, a.Path, a.Path+".sha256")
	}
	if out.ArchivePath != "" {
		assets = append(assets, out.ArchivePath)
	}
	return assets
}

// record appends the run to the release history. Failures only warn;
// history must never fail a release.
func (p *Pipeline) record(out *Outcome, runErr error) {
	if p.recorder == nil {
		return
	}

	status := history.StatusSucceeded
	switch {
	case out.DryRun:
		status = history.StatusDryRun
	case runErr != nil:
		status = history.StatusFailed
	}

	entry := history.Entry{
		Time:       p.now(),
		Version:    out.Version,
		Source:     string(out.Source),
		Status:     status,
		DurationMS: out.Duration.Milliseconds(),
		Artifacts:  len(out.Artifacts),
		ReleaseURL: out.ReleaseURL,
	}
	if err := p.recorder.Append(entry); err != nil {
		p.reporter.Printf("warning: recording history: %v\n", err)
	}
}
