package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultGitHubAPI is the public GitHub REST endpoint.
const DefaultGitHubAPI = "https://api.github.com"

// GitHubReleaser checks for releases via the GitHub API
type GitHubReleaser struct {
	githubToken string // Optional, for rate limiting
	client      *http.Client
	baseURL     string // Base URL for GitHub API (for testing)
}

// githubRelease represents a GitHub release response
type githubRelease struct {
	TagName    string `json:"tag_name"`
	Name       string `json:"name"`
	HTMLURL    string `json:"html_url"`
	Prerelease bool   `json:"prerelease"`
	Assets     []struct {
		Name               string `json:"name"`
		State              string `json:"state"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// NewGitHubReleaser creates a new GitHub releaser
func NewGitHubReleaser() *GitHubReleaser {
	return &GitHubReleaser{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: DefaultGitHubAPI,
	}
}

// WithToken sets an optional GitHub token for authentication
func (g *GitHubReleaser) WithToken(token string) *GitHubReleaser {
	g.githubToken = token
	return g
}

// WithBaseURL points the releaser at another GitHub-compatible API.
func (g *GitHubReleaser) WithBaseURL(baseURL string) *GitHubReleaser {
	if baseURL != "" {
		g.baseURL = strings.TrimRight(baseURL, "/")
	}
	return g
}

// WithHTTPClient replaces the HTTP client used for metadata requests.
func (g *GitHubReleaser) WithHTTPClient(client *http.Client) *GitHubReleaser {
	if client != nil {
		g.client = client
	}
	return g
}

// Latest fetches the latest release of project ("owner/repo").
func (g *GitHubReleaser) Latest(ctx context.Context, project string) (*Release, error) {
	project = strings.Trim(project, "/")
	if project == "" {
		return nil, &Error{Kind: ErrConfigMissing, Op: "latest release", Err: fmt.Errorf("empty repository name")}
	}

	url := fmt.Sprintf("%s/repos/%s/releases/latest", g.baseURL, project)
	op := "latest release " + project

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Kind: ErrNetwork, Op: op, Err: err}
	}

	// Set headers
	req.Header.Set("Accept", "application/vnd.github+json")
	if g.githubToken != "" {
		req.Header.Set("Authorization", "Bearer "+g.githubToken)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &Error{Kind: ErrNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: ErrNetwork, Op: op, Err: fmt.Errorf("GitHub API returned status %d", resp.StatusCode)}
	}

	var raw githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &Error{Kind: ErrSerialization, Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	version, err := ParseTag(raw.TagName)
	if err != nil {
		return nil, &Error{Kind: ErrVersionParse, Op: op, Err: fmt.Errorf("tag %q: %w", raw.TagName, err)}
	}

	release := &Release{
		Tag:     raw.TagName,
		Version: version,
		Assets:  make([]Asset, 0, len(raw.Assets)),
	}
	for _, a := range raw.Assets {
		release.Assets = append(release.Assets, Asset{
			Name:  a.Name,
			URL:   a.BrowserDownloadURL,
			State: a.State,
		})
	}

	return release, nil
}
