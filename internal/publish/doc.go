// Package publish provides the publication targets: a GitHub account, where
// each container is a new repository, and a local directory, where each
// container is a subdirectory.
//
// Neither target deletes anything. Creating a container that already exists
// fails with engine.ErrContainerExists; the engine then opens it and decides
// whether to write into it. Writing an artifact replaces one of the same
// name.
package publish
