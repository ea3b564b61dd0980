// Package submission unpacks and validates graded submission archives.
package submission

import (
	"bufio"
	"os"
	"strings"

	appErr "github.com/amitnovick/compilation-ex3-testers/pkg/errors"
)

// Fixed names inside an extracted submission workspace.
const (
	ManifestName        = "ids.txt"
	BuildRootName       = "ex3"
	BuildDescriptorName = "Makefile"
)

// Submission is an extracted archive awaiting grading. Immutable once
// validated; the workspace is destroyed via Cleanup on every exit path.
type Submission struct {
	ArchivePath string
	Root        string
	RunID       string
	IDs         []string
}

// Cleanup removes the extraction workspace. Safe to call more than once.
func (s *Submission) Cleanup() {
	if s.Root != "" {
		_ = os.RemoveAll(s.Root)
	}
}

// ParseManifest reads submitter identifiers, one per line, skipping blanks.
func ParseManifest(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.ManifestMissing, "open manifest failed")
	}
	defer file.Close()

	var ids []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id == "" {
			continue
		}
		ids = append(ids, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, appErr.Wrapf(err, appErr.ManifestInvalid, "read manifest failed")
	}
	if len(ids) == 0 {
		return nil, appErr.New(appErr.ManifestInvalid).WithMessage("manifest contains no identifiers")
	}
	return ids, nil
}
