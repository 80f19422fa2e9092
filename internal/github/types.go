package github

// User is the subset of a GitHub account used here.
type User struct {
	Login   string `json:"login"`
	ID      int64  `json:"id"`
	HTMLURL string `json:"html_url"`
}

// Repository is the subset of a repository resource used here.
type Repository struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Owner         User   `json:"owner"`
	Private       bool   `json:"private"`
	HTMLURL       string `json:"html_url"`
	DefaultBranch string `json:"default_branch"`
}

// CreateRepositoryRequest is the body of POST /user/repos.
type CreateRepositoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Private     bool   `json:"private"`
	AutoInit    bool   `json:"auto_init,omitempty"`
}

// PutContentsRequest describes a file to create. Content is raw bytes; the
// client base64-encodes it on the wire. SHA is required to replace an
// existing file.
type PutContentsRequest struct {
	Message string
	Content []byte
	Branch  string
	SHA     string
}

// ContentFile is a file or directory entry of the contents API.
type ContentFile struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Path    string `json:"path"`
	SHA     string `json:"sha"`
	HTMLURL string `json:"html_url"`
}

// Commit is the commit half of a contents API response.
type Commit struct {
	SHA     string `json:"sha"`
	HTMLURL string `json:"html_url"`
	Message string `json:"message"`
}

// ContentResponse is returned by PUT /repos/{owner}/{repo}/contents/{path}.
type ContentResponse struct {
	Content ContentFile `json:"content"`
	Commit  Commit      `json:"commit"`
}
