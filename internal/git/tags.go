package git

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Identity names the tagger recorded on annotated tags.
type Identity struct {
	Name  string
	Email string
}

// TagExists reports whether a tag with the given name exists locally.
func (r *Repo) TagExists(name string) (bool, error) {
	_, err := r.repo.Tag(name)
	switch err {
	case nil:
		return true, nil
	case git.ErrTagNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("looking up tag %s: %w", name, err)
	}
}

// CreateTag creates an annotated tag pointing at HEAD. An empty message
// falls back to the tag name, since go-git rejects annotated tags
// without one.
func (r *Repo) CreateTag(name, message string, tagger Identity) error {
	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("resolving HEAD: %w", err)
	}

	if message == "" {
		message = name
	}

	_, err = r.repo.CreateTag(name, head.Hash(), &git.CreateTagOptions{
		Tagger: &object.Signature{
			Name:  tagger.Name,
			Email: tagger.Email,
			When:  time.Now(),
		},
		Message: message,
	})
	if err != nil {
		return fmt.Errorf("creating tag %s: %w", name, err)
	}

	logDebug("[git] created tag %s at %s", name, head.Hash())
	return nil
}

// DeleteTag removes a local tag. Deleting a tag that does not exist is
// an error.
func (r *Repo) DeleteTag(name string) error {
	if err := r.repo.DeleteTag(name); err != nil {
		return fmt.Errorf("deleting tag %s: %w", name, err)
	}

	logDebug("[git] deleted tag %s", name)
	return nil
}

// TagMessage returns the message stored on an annotated tag. ok is
// false for lightweight tags, which carry no message.
func (r *Repo) TagMessage(name string) (string, bool, error) {
	ref, err := r.repo.Tag(name)
	if err != nil {
		return "", false, fmt.Errorf("resolving tag %s: %w", name, err)
	}

	tag, err := r.repo.TagObject(ref.Hash())
	switch err {
	case nil:
		return tag.Message, true, nil
	case plumbing.ErrObjectNotFound:
		return "", false, nil
	default:
		return "", false, fmt.Errorf("reading tag object %s: %w", name, err)
	}
}

// VersionTags returns the versions recorded as prefixed tags, sorted
// ascending by semantic version. The prefix is stripped from the
// returned values. Tags whose remainder is not a plain X.Y.Z version
// (prereleases, build metadata, unrelated tags) are ignored.
func (r *Repo) VersionTags(prefix string) ([]string, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer iter.Close()

	var parsed semver.Collection
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if !strings.HasPrefix(name, prefix) {
			return nil
		}
		v, err := semver.StrictNewVersion(strings.TrimPrefix(name, prefix))
		if err != nil || v.Prerelease() != "" || v.Metadata() != "" {
			return nil
		}
		parsed = append(parsed, v)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking tags: %w", err)
	}

	sort.Sort(parsed)

	versions := make([]string, len(parsed))
	for i, v := range parsed {
		versions[i] = v.String()
	}
	return versions, nil
}

// LatestVersion returns the highest version among the prefixed tags.
// ok is false when the repository has no version tags.
func (r *Repo) LatestVersion(prefix string) (string, bool, error) {
	versions, err := r.VersionTags(prefix)
	if err != nil {
		return "", false, err
	}
	if len(versions) == 0 {
		return "", false, nil
	}
	return versions[len(versions)-1], true, nil
}

// tagCommitHash resolves a tag name to the commit it marks, peeling
// annotated tag objects to their target commit.
func (r *Repo) tagCommitHash(name string) (plumbing.Hash, error) {
	ref, err := r.repo.Tag(name)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolving tag %s: %w", name, err)
	}

	tag, err := r.repo.TagObject(ref.Hash())
	switch err {
	case nil:
		return tag.Target, nil
	case plumbing.ErrObjectNotFound:
		// Lightweight tag, the ref points straight at the commit.
		return ref.Hash(), nil
	default:
		return plumbing.ZeroHash, fmt.Errorf("reading tag object %s: %w", name, err)
	}
}

// Markers exposes a repository's prefixed version tags as the marker
// store consumed by the version resolver and the release pipeline.
// Tagger and Remote only matter for the write operations.
type Markers struct {
	Repo   *Repo
	Prefix string
	Tagger Identity
	Remote string
}

// TagName returns the tag name that records the given version.
func (m *Markers) TagName(version string) string {
	return m.Prefix + version
}

// Exists reports whether the version is already recorded as a tag.
func (m *Markers) Exists(version string) (bool, error) {
	return m.Repo.TagExists(m.TagName(version))
}

// Latest returns the highest recorded version. ok is false when the
// repository has no version tags yet.
func (m *Markers) Latest() (string, bool, error) {
	return m.Repo.LatestVersion(m.Prefix)
}

// LatestBelow returns the highest recorded version strictly below limit.
// ok is false when no such version exists. Used to find the previous
// release when an existing version is re-cut.
func (m *Markers) LatestBelow(limit string) (string, bool, error) {
	limitV, err := semver.StrictNewVersion(limit)
	if err != nil {
		return "", false, fmt.Errorf("parsing version %q: %w", limit, err)
	}

	versions, err := m.Repo.VersionTags(m.Prefix)
	if err != nil {
		return "", false, err
	}

	// VersionTags sorts ascending, so the last version below the limit
	// wins.
	found := ""
	for _, v := range versions {
		if semver.MustParse(v).LessThan(limitV) {
			found = v
		}
	}
	return found, found != "", nil
}

// Message returns the message stored on the version's tag annotation.
// ok is false when the tag is lightweight.
func (m *Markers) Message(version string) (string, bool, error) {
	return m.Repo.TagMessage(m.TagName(version))
}

// Create records the version as an annotated tag at HEAD carrying the
// given message.
func (m *Markers) Create(version, message string) error {
	return m.Repo.CreateTag(m.TagName(version), message, m.Tagger)
}

// Delete removes the local tag recording the version.
func (m *Markers) Delete(version string) error {
	return m.Repo.DeleteTag(m.TagName(version))
}

// Push uploads the version tag to the configured remote.
func (m *Markers) Push(ctx context.Context, version string, force bool) error {
	return m.Repo.PushTag(ctx, m.Remote, m.TagName(version), force)
}

// PushDeletion removes the version tag from the configured remote.
func (m *Markers) PushDeletion(ctx context.Context, version string) error {
	return m.Repo.PushTagDeletion(ctx, m.Remote, m.TagName(version))
}
