package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/codedrop/internal/engine"
	"github.com/roach88/codedrop/internal/github"
)

// DefaultBranch is the branch artifacts are committed to.
const DefaultBranch = "main"

// RepositoryAPI is the subset of github.Client used by GitHub.
type RepositoryAPI interface {
	AuthenticatedUser(ctx context.Context) (*github.User, error)
	CreateRepository(ctx context.Context, request github.CreateRepositoryRequest) (*github.Repository, error)
	GetRepository(ctx context.Context, owner, repo string) (*github.Repository, error)
	ListContents(ctx context.Context, owner, repo, path string) ([]github.ContentFile, error)
	GetContents(ctx context.Context, owner, repo, path, ref string) (*github.ContentFile, error)
	PutContents(ctx context.Context, owner, repo, path string, request github.PutContentsRequest) (*github.ContentResponse, error)
}

// GitHubOptions configures repository creation.
type GitHubOptions struct {
	// Private creates private repositories. Repositories are public by
	// default.
	Private bool

	// Branch defaults to DefaultBranch.
	Branch string
}

// GitHub publishes each container as a repository of the token's owner.
type GitHub struct {
	api     RepositoryAPI
	options GitHubOptions
	logger  *slog.Logger
}

// NewGitHub returns a GitHub target over api.
func NewGitHub(api RepositoryAPI, options GitHubOptions, logger *slog.Logger) *GitHub {
	if options.Branch == "" {
		options.Branch = DefaultBranch
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GitHub{api: api, options: options, logger: logger}
}

// CreateContainer creates a repository named name. A name already taken on
// the account fails with engine.ErrContainerExists.
func (g *GitHub) CreateContainer(ctx context.Context, name string) (engine.Container, error) {
	repository, err := g.api.CreateRepository(ctx, github.CreateRepositoryRequest{
		Name:    name,
		Private: g.options.Private,
	})
	if err != nil {
		if github.IsAlreadyExists(err) {
			return engine.Container{}, fmt.Errorf("repository %s: %w: %w", name, engine.ErrContainerExists, err)
		}
		return engine.Container{}, err
	}
	g.logger.Info("repository created", "container", repository.FullName, "private", repository.Private)
	return containerOf(repository), nil
}

// OpenContainer returns the token owner's repository name and the files at
// its root. A repository without commits holds none.
func (g *GitHub) OpenContainer(ctx context.Context, name string) (engine.Container, []string, error) {
	user, err := g.api.AuthenticatedUser(ctx)
	if err != nil {
		return engine.Container{}, nil, err
	}
	repository, err := g.api.GetRepository(ctx, user.Login, name)
	if err != nil {
		return engine.Container{}, nil, err
	}

	entries, err := g.api.ListContents(ctx, repository.Owner.Login, repository.Name, "")
	if err != nil && !github.IsNotFound(err) {
		return engine.Container{}, nil, err
	}
	var artifacts []string
	for _, entry := range entries {
		if entry.Type == "file" {
			artifacts = append(artifacts, entry.Name)
		}
	}

	g.logger.Info("repository opened", "container", repository.FullName, "artifacts", len(artifacts))
	return containerOf(repository), artifacts, nil
}

func containerOf(repository *github.Repository) engine.Container {
	return engine.Container{
		Name:  repository.Name,
		Owner: repository.Owner.Login,
		URL:   repository.HTMLURL,
	}
}

// AddArtifact commits content as name on the configured branch. GitHub
// rejects a write over an existing file without its blob SHA, so that case
// is retried with the SHA of the current file.
func (g *GitHub) AddArtifact(ctx context.Context, container engine.Container, name, content, message string) error {
	if container.Owner == "" {
		return fmt.Errorf("container %s has no owner", container.Name)
	}
	request := github.PutContentsRequest{
		Message: message,
		Content: []byte(content),
		Branch:  g.options.Branch,
	}
	response, err := g.api.PutContents(ctx, container.Owner, container.Name, name, request)
	if github.IsValidationFailed(err) {
		current, getErr := g.api.GetContents(ctx, container.Owner, container.Name, name, g.options.Branch)
		if getErr != nil {
			return errors.Join(err, getErr)
		}
		request.SHA = current.SHA
		response, err = g.api.PutContents(ctx, container.Owner, container.Name, name, request)
	}
	if err != nil {
		return err
	}
	g.logger.Debug("artifact committed", "container", container.Name, "artifact", name, "commit", response.Commit.SHA)
	return nil
}
