// Package github is a small typed client for the GitHub REST API covering
// the endpoints needed to publish a file as a repository: creating or
// looking up a repository of the authenticated user, listing and reading its
// contents, and writing files.
//
// Authentication is a personal access token sent as a bearer token. The
// client refuses non-HTTPS base URLs so the token is never sent in the
// clear. Non-2xx responses are returned as *APIError.
package github
