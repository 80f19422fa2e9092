package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// AuthenticatedUser returns the account that owns the token.
func (client *Client) AuthenticatedUser(ctx context.Context) (*User, error) {
	var user User
	if err := client.get(ctx, "/user", &user); err != nil {
		return nil, fmt.Errorf("github: getting authenticated user: %w", err)
	}
	return &user, nil
}

// CreateRepository creates a repository owned by the authenticated user.
func (client *Client) CreateRepository(ctx context.Context, request CreateRepositoryRequest) (*Repository, error) {
	if request.Name == "" {
		return nil, fmt.Errorf("github: repository name is required")
	}
	var repository Repository
	if err := client.post(ctx, "/user/repos", request, &repository); err != nil {
		return nil, fmt.Errorf("github: creating repository %q: %w", request.Name, err)
	}
	return &repository, nil
}

// GetRepository returns owner/repo.
func (client *Client) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("github: owner and repo are required")
	}
	var repository Repository
	if err := client.get(ctx, repositoryPath(owner, repo), &repository); err != nil {
		return nil, fmt.Errorf("github: getting repository %s/%s: %w", owner, repo, err)
	}
	return &repository, nil
}

// ListContents lists the directory at path in owner/repo. An empty path is
// the repository root. GitHub answers 404 for a repository with no commits.
func (client *Client) ListContents(ctx context.Context, owner, repo, path string) ([]ContentFile, error) {
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("github: owner and repo are required")
	}
	var entries []ContentFile
	if err := client.get(ctx, contentsPath(owner, repo, path), &entries); err != nil {
		return nil, fmt.Errorf("github: listing %s/%s/%s: %w", owner, repo, path, err)
	}
	return entries, nil
}

// GetContents returns the file at path in owner/repo on ref, without its
// content. An empty ref is the default branch.
func (client *Client) GetContents(ctx context.Context, owner, repo, path, ref string) (*ContentFile, error) {
	if owner == "" || repo == "" || path == "" {
		return nil, fmt.Errorf("github: owner, repo, and path are required")
	}
	endpoint := contentsPath(owner, repo, path)
	if ref != "" {
		endpoint += "?ref=" + url.QueryEscape(ref)
	}
	var file ContentFile
	if err := client.get(ctx, endpoint, &file); err != nil {
		return nil, fmt.Errorf("github: reading %s from %s/%s: %w", path, owner, repo, err)
	}
	return &file, nil
}

// PutContents creates a file at path in owner/repo with one commit. An
// existing file is replaced when request.SHA names its current blob.
func (client *Client) PutContents(ctx context.Context, owner, repo, path string, request PutContentsRequest) (*ContentResponse, error) {
	if owner == "" || repo == "" || path == "" {
		return nil, fmt.Errorf("github: owner, repo, and path are required")
	}

	body := struct {
		Message string `json:"message"`
		Content string `json:"content"`
		Branch  string `json:"branch,omitempty"`
		SHA     string `json:"sha,omitempty"`
	}{
		Message: request.Message,
		Content: base64.StdEncoding.EncodeToString(request.Content),
		Branch:  request.Branch,
		SHA:     request.SHA,
	}

	var response ContentResponse
	if err := client.put(ctx, contentsPath(owner, repo, path), body, &response); err != nil {
		return nil, fmt.Errorf("github: writing %s to %s/%s: %w", path, owner, repo, err)
	}
	return &response, nil
}

func repositoryPath(owner, repo string) string {
	return fmt.Sprintf("/repos/%s/%s", url.PathEscape(owner), url.PathEscape(repo))
}

func contentsPath(owner, repo, path string) string {
	return repositoryPath(owner, repo) + "/contents/" + escapePath(path)
}

// escapePath escapes each segment of a slash-separated repository path.
func escapePath(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
