package engine

import (
	"context"

	"github.com/roach88/codedrop/internal/corpus"
	"github.com/roach88/codedrop/internal/redact"
)

// Lister enumerates candidates in a stable order.
type Lister interface {
	List(ctx context.Context) ([]corpus.Candidate, error)
}

// Redactor replaces sensitive literals in source text.
type Redactor interface {
	Scan(text string) redact.Result
}

// Annotator adds explanatory comments to source text.
type Annotator interface {
	Annotate(ctx context.Context, source string) (string, error)
}

// Describer summarizes source text.
type Describer interface {
	Describe(ctx context.Context, source string) (string, error)
}

// Container is a remote destination created for one publication.
type Container struct {
	Name  string `json:"name"`
	Owner string `json:"owner,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Publisher creates containers and writes artifacts into them.
//
// CreateContainer fails with an error wrapping ErrContainerExists when the
// name is taken. OpenContainer returns such a container with the names of
// the artifacts it holds. AddArtifact replaces an artifact of the same name.
type Publisher interface {
	CreateContainer(ctx context.Context, name string) (Container, error)
	OpenContainer(ctx context.Context, name string) (Container, []string, error)
	AddArtifact(ctx context.Context, container Container, name, content, message string) error
}
