package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v57/github"
)

// ErrStaleVersion is returned by Write when the supplied version token no
// longer matches the file's current revision (another writer got there first).
var ErrStaleVersion = errors.New("stale version token, file was modified concurrently")

// Client reads and writes files in a GitHub repository through the contents
// API. Writes against existing files use optimistic concurrency keyed on the
// blob SHA returned by Read.
type Client struct {
	gh     *github.Client
	owner  string
	repo   string
	branch string
}

// New creates a store client for owner/repo on the given branch.
// Calls are bounded so a hung store API cannot stall a message handler forever.
func New(token, owner, repo, branch string) *Client {
	gh := github.NewClient(&http.Client{Timeout: 30 * time.Second})
	if token != "" {
		gh = gh.WithAuthToken(token)
	}
	return &Client{gh: gh, owner: owner, repo: repo, branch: branch}
}

// NewWithClient creates a store client around a pre-built GitHub client.
// Tests use this to point the store at a local fake API.
func NewWithClient(gh *github.Client, owner, repo, branch string) *Client {
	return &Client{gh: gh, owner: owner, repo: repo, branch: branch}
}

// Read fetches a file's decoded content and version token (blob SHA).
// A missing file is not an error: it returns (nil, "", nil).
func (c *Client) Read(ctx context.Context, path string) ([]byte, string, error) {
	file, _, resp, err := c.gh.Repositories.GetContents(ctx, c.owner, c.repo, path,
		&github.RepositoryContentGetOptions{Ref: c.branch})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if file == nil {
		return nil, "", fmt.Errorf("%s is a directory, not a file", path)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return []byte(content), file.GetSHA(), nil
}

// Write creates or updates a file. An empty sha creates the file; a non-empty
// sha updates it conditioned on the prior revision still matching, returning
// ErrStaleVersion when it does not. The new blob SHA is returned on success.
func (c *Client) Write(ctx context.Context, path string, content []byte, message, sha string) (string, error) {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
		Branch:  github.String(c.branch),
	}

	var (
		res  *github.RepositoryContentResponse
		resp *github.Response
		err  error
	)
	if sha == "" {
		res, resp, err = c.gh.Repositories.CreateFile(ctx, c.owner, c.repo, path, opts)
	} else {
		opts.SHA = github.String(sha)
		res, resp, err = c.gh.Repositories.UpdateFile(ctx, c.owner, c.repo, path, opts)
	}
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusConflict {
			return "", fmt.Errorf("failed to write %s: %w", path, ErrStaleVersion)
		}
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	if res != nil && res.Content != nil {
		return res.Content.GetSHA(), nil
	}
	return "", nil
}

// UploadMedia stores a binary blob at path without an optimistic lock. Media
// paths are unique enough (time-based names) that collisions are not expected;
// for documents the original filename is kept and the last write wins.
func (c *Client) UploadMedia(ctx context.Context, path string, data []byte) (string, error) {
	// An existing file at the same path needs its SHA or GitHub rejects the PUT.
	_, sha, err := c.Read(ctx, path)
	if err != nil {
		return "", err
	}
	if _, err := c.Write(ctx, path, data, fmt.Sprintf("Upload %s", path), sha); err != nil {
		return "", err
	}
	return path, nil
}

// RepoInfo summarizes the content repository for status reporting.
type RepoInfo struct {
	FullName      string
	DefaultBranch string
	UpdatedAt     string
}

// Info fetches repository metadata from the store.
func (c *Client) Info(ctx context.Context) (RepoInfo, error) {
	repo, _, err := c.gh.Repositories.Get(ctx, c.owner, c.repo)
	if err != nil {
		return RepoInfo{}, fmt.Errorf("failed to fetch repository info: %w", err)
	}
	info := RepoInfo{
		FullName:      repo.GetFullName(),
		DefaultBranch: repo.GetDefaultBranch(),
	}
	if ts := repo.GetUpdatedAt(); !ts.IsZero() {
		info.UpdatedAt = ts.Format("2006-01-02 15:04")
	}
	return info, nil
}
