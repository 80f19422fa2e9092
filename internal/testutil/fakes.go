package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/codedrop/internal/corpus"
	"github.com/roach88/codedrop/internal/engine"
	"github.com/roach88/codedrop/internal/store"
)

// Candidate builds a corpus.Candidate whose Name is the base of id.
func Candidate(id, content string) corpus.Candidate {
	name := id
	for i := len(id) - 1; i >= 0; i-- {
		if id[i] == '/' {
			name = id[i+1:]
			break
		}
	}
	return corpus.Candidate{ID: id, Name: name, Content: []byte(content)}
}

// FakeCorpus returns a fixed candidate list.
type FakeCorpus struct {
	mu         sync.Mutex
	Candidates []corpus.Candidate
	Err        error
	Calls      int
}

func (f *FakeCorpus) List(ctx context.Context) ([]corpus.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	out := make([]corpus.Candidate, len(f.Candidates))
	copy(out, f.Candidates)
	return out, nil
}

// FakeAnnotator prefixes its input with Prefix, or fails with Err.
type FakeAnnotator struct {
	mu     sync.Mutex
	Prefix string
	Output string
	Err    error
	Inputs []string
}

func (f *FakeAnnotator) Annotate(ctx context.Context, source string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Inputs = append(f.Inputs, source)
	if f.Err != nil {
		return "", f.Err
	}
	if f.Output != "" {
		return f.Output, nil
	}
	prefix := f.Prefix
	if prefix == "" {
		prefix = "# annotated\n"
	}
	return prefix + source, nil
}

// Calls returns how many times Annotate was invoked.
func (f *FakeAnnotator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Inputs)
}

// FakeDescriber returns Description, or fails with Err.
type FakeDescriber struct {
	mu          sync.Mutex
	Description string
	Err         error
	Inputs      []string
}

func (f *FakeDescriber) Describe(ctx context.Context, source string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Inputs = append(f.Inputs, source)
	if f.Err != nil {
		return "", f.Err
	}
	if f.Description == "" {
		return "A test program.", nil
	}
	return f.Description, nil
}

// Calls returns how many times Describe was invoked.
func (f *FakeDescriber) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Inputs)
}

// Artifact is one AddArtifact call seen by FakePublisher.
type Artifact struct {
	Container string
	Name      string
	Content   string
	Message   string
}

// FakePublisher records containers and artifacts in call order and, like
// the real targets, refuses to create a container name twice. CreateErr
// fails CreateContainer; ArtifactErrs fails AddArtifact by artifact name.
type FakePublisher struct {
	mu           sync.Mutex
	Owner        string
	CreateErr    error
	ArtifactErrs map[string]error
	Containers   []string
	Opened       []string
	Artifacts    []Artifact

	held map[string][]string
}

// Seed adds an existing container holding the named artifacts.
func (f *FakePublisher) Seed(container string, artifacts ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held == nil {
		f.held = map[string][]string{}
	}
	f.held[container] = append([]string{}, artifacts...)
}

// Held returns the artifacts of container and whether it exists.
func (f *FakePublisher) Held(container string) ([]string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	artifacts, ok := f.held[container]
	return slices.Clone(artifacts), ok
}

func (f *FakePublisher) CreateContainer(ctx context.Context, name string) (engine.Container, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Containers = append(f.Containers, name)
	if f.CreateErr != nil {
		return engine.Container{}, f.CreateErr
	}
	if _, ok := f.held[name]; ok {
		return engine.Container{}, fmt.Errorf("container %s: %w", name, engine.ErrContainerExists)
	}
	if f.held == nil {
		f.held = map[string][]string{}
	}
	f.held[name] = []string{}
	return f.container(name), nil
}

func (f *FakePublisher) OpenContainer(ctx context.Context, name string) (engine.Container, []string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Opened = append(f.Opened, name)
	artifacts, ok := f.held[name]
	if !ok {
		return engine.Container{}, nil, fmt.Errorf("container %s not found", name)
	}
	return f.container(name), slices.Clone(artifacts), nil
}

func (f *FakePublisher) container(name string) engine.Container {
	owner := f.Owner
	if owner == "" {
		owner = "tester"
	}
	return engine.Container{
		Name:  name,
		Owner: owner,
		URL:   fmt.Sprintf("https://example.test/%s/%s", owner, name),
	}
}

func (f *FakePublisher) AddArtifact(ctx context.Context, container engine.Container, name, content, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Artifacts = append(f.Artifacts, Artifact{
		Container: container.Name,
		Name:      name,
		Content:   content,
		Message:   message,
	})
	if err, ok := f.ArtifactErrs[name]; ok {
		return err
	}
	if held, ok := f.held[container.Name]; ok && !slices.Contains(held, name) {
		f.held[container.Name] = append(held, name)
	}
	return nil
}

// Calls returns the total number of publisher calls.
func (f *FakePublisher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Containers) + len(f.Opened) + len(f.Artifacts)
}

// MemoryStore is an in-memory store.Store that counts calls.
type MemoryStore struct {
	mu      sync.Mutex
	History store.History
	LoadErr error
	SaveErr error
	Loads   int
	Saves   int
}

// NewMemoryStore returns a MemoryStore holding h.
func NewMemoryStore(h store.History) *MemoryStore {
	return &MemoryStore{History: h.Clone()}
}

func (m *MemoryStore) Load(ctx context.Context) (store.History, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Loads++
	if m.LoadErr != nil {
		return store.History{}, m.LoadErr
	}
	return m.History.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, h store.History) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.History = h.Clone()
	return nil
}

func (m *MemoryStore) Path() string { return ":memory:" }

func (m *MemoryStore) Close() error { return nil }
