// Package publish creates GitHub releases and uploads build artifacts.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/relcut/relcut/internal/config"
)

// DefaultTimeout bounds each GitHub API call.
const DefaultTimeout = 60 * time.Second

// Client is a minimal GitHub Releases client. The API and upload hosts
// come from configuration so tests and GitHub Enterprise installs can
// point it elsewhere.
type Client struct {
	apiBase    string
	uploadBase string
	repo       string
	token      string
	draft      bool
	prerelease bool
	httpClient *http.Client
}

// Release is the subset of the GitHub release payload relcut consumes.
type Release struct {
	ID         int64  `json:"id"`
	TagName    string `json:"tag_name"`
	Name       string `json:"name"`
	HTMLURL    string `json:"html_url"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

type releaseRequest struct {
	TagName    string `json:"tag_name"`
	Name       string `json:"name"`
	Body       string `json:"body"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

// apiError mirrors GitHub's structured error payload.
type apiError struct {
	Message string `json:"message"`
	Errors  []struct {
		Resource string `json:"resource"`
		Field    string `json:"field"`
		Code     string `json:"code"`
	} `json:"errors"`
}

// TokenFromEnv returns the API token from GITHUB_TOKEN or GH_TOKEN.
func TokenFromEnv() (string, bool) {
	for _, key := range []string{"GITHUB_TOKEN", "GH_TOKEN"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v, true
		}
	}
	return "", false
}

// New builds a Client from configuration.
func New(cfg *config.Configuration) (*Client, error) {
	if cfg.Repository == "" {
		return nil, errors.New("publishing requires a repository in owner/repo form")
	}
	token, ok := TokenFromEnv()
	if !ok {
		return nil, errors.New("no GITHUB_TOKEN or GH_TOKEN in environment")
	}
	return &Client{
		apiBase:    strings.TrimSuffix(cfg.Publish.APIBase, "/"),
		uploadBase: strings.TrimSuffix(cfg.Publish.UploadBase, "/"),
		repo:       cfg.Repository,
		token:      token,
		draft:      cfg.Publish.Draft,
		prerelease: cfg.Publish.Prerelease,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}, nil
}

// CreateRelease creates a release for an already pushed tag.
func (c *Client) CreateRelease(ctx context.Context, tag, title, notes string) (*Release, error) {
	payload := releaseRequest{
		TagName:    tag,
		Name:       title,
		Body:       notes,
		Draft:      c.draft,
		Prerelease: c.prerelease,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling release payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/repos/%s/releases", c.apiBase, c.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("creating release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, decodeAPIError(resp, "creating release")
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decoding release response: %w", err)
	}
	return &release, nil
}

// UploadAsset attaches one artifact file to an existing release.
func (c *Client) UploadAsset(ctx context.Context, releaseID int64, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening asset: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("sizing asset: %w", err)
	}

	name := filepath.Base(path)
	endpoint := fmt.Sprintf("%s/repos/%s/releases/%d/assets?name=%s",
		c.uploadBase, c.repo, releaseID, url.QueryEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, f)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.ContentLength = info.Size()
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return decodeAPIError(resp, "uploading "+name)
	}
	return nil
}

// ReleaseByTag looks up an existing release, reporting found=false on 404.
func (c *Client) ReleaseByTag(ctx context.Context, tag string) (*Release, bool, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/releases/tags/%s", c.apiBase, c.repo, url.PathEscape(tag))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("looking up release for %s: %w", tag, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var release Release
		if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
			return nil, false, fmt.Errorf("decoding release response: %w", err)
		}
		return &release, true, nil
	case http.StatusNotFound:
		return nil, false, nil
	default:
		return nil, false, decodeAPIError(resp, "looking up release for "+tag)
	}
}

// DeleteRelease removes a release, used before re-publishing a retag.
func (c *Client) DeleteRelease(ctx context.Context, releaseID int64) error {
	endpoint := fmt.Sprintf("%s/repos/%s/releases/%d", c.apiBase, c.repo, releaseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deleting release %d: %w", releaseID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return decodeAPIError(resp, fmt.Sprintf("deleting release %d", releaseID))
	}
	return nil
}

// PublishRelease creates the release and uploads every asset. The release
// is returned even when an upload fails so callers can report its URL.
func (c *Client) PublishRelease(ctx context.Context, tag, title, notes string, assets []string) (*Release, error) {
	release, err := c.CreateRelease(ctx, tag, title, notes)
	if err != nil {
		return nil, err
	}
	for _, asset := range assets {
		if err := c.UploadAsset(ctx, release.ID, asset); err != nil {
			return release, err
		}
	}
	return release, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
}

// decodeAPIError turns GitHub's error payload into a diagnostic message,
// falling back to the raw body when it is not the documented shape.
func decodeAPIError(resp *http.Response, doing string) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s: status %s: reading response: %w", doing, resp.Status, err)
	}

	var payload apiError
	if err := json.Unmarshal(body, &payload); err != nil || payload.Message == "" {
		return fmt.Errorf("%s: status %s: %s", doing, resp.Status, strings.TrimSpace(string(body)))
	}

	msg := payload.Message
	for _, detail := range payload.Errors {
		msg += fmt.Sprintf("; %s.%s %s", detail.Resource, detail.Field, detail.Code)
	}
	return fmt.Errorf("%s: status %s: %s", doing, resp.Status, msg)
}
