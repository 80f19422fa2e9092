package engine

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/codedrop/internal/digest"
)

// ReadmeName is the artifact written before the file itself.
const ReadmeName = "README.md"

// Commit messages.
const (
	ReadmeMessage = "Initial commit"
	fileMessage   = "Add "
)

var lower = cases.Lower(language.Und)

// ContainerName derives a container name from a file name: directory and
// extension dropped, NFC-normalized, lower-cased, spaces replaced by
// underscores. A dot-file keeps its whole name as the stem.
func ContainerName(filename string) string {
	base := filepath.Base(filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	stem = norm.NFC.String(stem)
	return strings.ReplaceAll(lower.String(stem), " ", "_")
}

// QualifiedContainerName is the container used when ContainerName is taken
// by other content: the name followed by the short content digest.
func QualifiedContainerName(filename string, d digest.Digest) string {
	return ContainerName(filename) + "-" + d.Short()
}

// ReadmeContent renders the README for a published file.
func ReadmeContent(filename, description string) string {
	return "# " + filename + "\n\n" + description
}

// ArtifactMessage is the commit message for the published file.
func ArtifactMessage(filename string) string {
	return fileMessage + filename
}
