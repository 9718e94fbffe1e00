package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/relcut/relcut/internal/build"
	"github.com/relcut/relcut/internal/history"
	"github.com/relcut/relcut/internal/publish"
)

// journal records collaborator calls across mocks in invocation order,
// letting tests assert how stages interleave.
type journal struct {
	entries []string
}

func (j *journal) add(format string, args ...any) {
	j.entries = append(j.entries, fmt.Sprintf(format, args...))
}

// memMarkers is an in-memory MarkerStore. versions must be kept in
// ascending order by the test.
type memMarkers struct {
	journal  *journal
	versions []string

	messages map[string]string

	createErr     error
	deleteErr     error
	pushErr       error
	pushDeleteErr error
}

func (m *memMarkers) TagName(version string) string { return "v" + version }

func (m *memMarkers) Exists(version string) (bool, error) {
	for _, v := range m.versions {
		if v == version {
			return true, nil
		}
	}
	return false, nil
}

func (m *memMarkers) Latest() (string, bool, error) {
	if len(m.versions) == 0 {
		return "", false, nil
	}
	return m.versions[len(m.versions)-1], true, nil
}

func (m *memMarkers) LatestBelow(limit string) (string, bool, error) {
	for i, v := range m.versions {
		if v == limit {
			if i == 0 {
				return "", false, nil
			}
			return m.versions[i-1], true, nil
		}
	}
	return "", false, nil
}

func (m *memMarkers) Create(version, message string) error {
	m.journal.add("create %s", version)
	if m.createErr != nil {
		return m.createErr
	}
	if m.messages == nil {
		m.messages = make(map[string]string)
	}
	m.messages[version] = message
	return nil
}

func (m *memMarkers) Delete(version string) error {
	m.journal.add("delete %s", version)
	return m.deleteErr
}

func (m *memMarkers) Push(ctx context.Context, version string, force bool) error {
	m.journal.add("push %s force=%t", version, force)
	return m.pushErr
}

func (m *memMarkers) PushDeletion(ctx context.Context, version string) error {
	m.journal.add("push-delete %s", version)
	return m.pushDeleteErr
}

// stubLog serves canned commit subjects keyed by base tag.
type stubLog struct {
	head     string
	headErr  error
	subjects map[string][]string
	sinceErr error
}

func (l *stubLog) HeadSubject() (string, error) {
	return l.head, l.headErr
}

func (l *stubLog) SubjectsSince(tag string) ([]string, error) {
	if l.sinceErr != nil {
		return nil, l.sinceErr
	}
	return l.subjects[tag], nil
}

// stubBuilder returns a canned build result.
type stubBuilder struct {
	journal *journal
	result  *build.Result
	err     error
	calls   []string
}

func (b *stubBuilder) Build(ctx context.Context, version string) (*build.Result, error) {
	b.journal.add("build %s", version)
	b.calls = append(b.calls, version)
	if b.err != nil {
		return nil, b.err
	}
	if b.result != nil {
		return b.result, nil
	}
	return defaultResult(version), nil
}

// defaultResult mirrors a two-target build landing in dist/.
func defaultResult(version string) *build.Result {
	return &build.Result{
		Version: version,
		Artifacts: []build.Artifact{
			{Target: build.Target{OS: "linux", Arch: "amd64"}, Path: "dist/demo_" + version + "_linux_amd64", Checksum: "aaa"},
			{Target: build.Target{OS: "darwin", Arch: "arm64"}, Path: "dist/demo_" + version + "_darwin_arm64", Checksum: "bbb"},
		},
		ArchivePath: "dist/demo_" + version + ".tar.gz",
	}
}

// publishCall records one PublishRelease invocation.
type publishCall struct {
	Tag    string
	Title  string
	Notes  string
	Assets []string
}

// stubPublisher serves an optional pre-existing release and records
// publish calls. On publishErr it returns failWith alongside the error,
// mirroring the real client's partial-upload behavior.
type stubPublisher struct {
	journal    *journal
	existing   *publish.Release
	lookupErr  error
	deleteErr  error
	publishErr error
	failWith   *publish.Release
	published  []publishCall
}

func (p *stubPublisher) ReleaseByTag(ctx context.Context, tag string) (*publish.Release, bool, error) {
	p.journal.add("lookup %s", tag)
	if p.lookupErr != nil {
		return nil, false, p.lookupErr
	}
	if p.existing == nil {
		return nil, false, nil
	}
	return p.existing, true, nil
}

func (p *stubPublisher) DeleteRelease(ctx context.Context, id int64) error {
	p.journal.add("delete-release %d", id)
	return p.deleteErr
}

func (p *stubPublisher) PublishRelease(ctx context.Context, tag, title, notes string, assets []string) (*publish.Release, error) {
	p.journal.add("publish %s", tag)
	p.published = append(p.published, publishCall{Tag: tag, Title: title, Notes: notes, Assets: assets})
	if p.publishErr != nil {
		return p.failWith, p.publishErr
	}
	return &publish.Release{ID: 42, TagName: tag, Name: title, HTMLURL: "https://example.com/releases/" + tag}, nil
}

// memRecorder collects history entries.
type memRecorder struct {
	entries []history.Entry
	err     error
}

func (r *memRecorder) Append(entry history.Entry) error {
	r.entries = append(r.entries, entry)
	return r.err
}

// memReporter records progress calls as labeled lines.
type memReporter struct {
	lines []string
}

func (r *memReporter) StartStage(name string) {
	r.lines = append(r.lines, "start: "+name)
}

func (r *memReporter) FinishStage(message string) {
	r.lines = append(r.lines, "ok: "+message)
}

func (r *memReporter) FailStage(message string) {
	r.lines = append(r.lines, "fail: "+message)
}

func (r *memReporter) SkipStage(message string) {
	r.lines = append(r.lines, "skip: "+message)
}

func (r *memReporter) PlannedAction(action string) {
	r.lines = append(r.lines, "plan: "+action)
}

func (r *memReporter) Printf(format string, args ...any) {
	r.lines = append(r.lines, strings.TrimSuffix(fmt.Sprintf(format, args...), "\n"))
}
