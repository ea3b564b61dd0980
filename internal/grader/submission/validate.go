package submission

import (
	"os"
	"path/filepath"

	appErr "github.com/amitnovick/compilation-ex3-testers/pkg/errors"
)

// BuildRoot returns the submission's build root directory path.
func (s *Submission) BuildRoot() string {
	return filepath.Join(s.Root, BuildRootName)
}

// Validate checks the required structure in order: manifest at the workspace
// root, build root subtree, build descriptor inside the build root. Any
// missing item is fatal; no build is attempted. On success the manifest
// identifiers are attached to the submission.
func Validate(s *Submission) error {
	manifestPath := filepath.Join(s.Root, ManifestName)
	if _, err := os.Stat(manifestPath); err != nil {
		return appErr.Newf(appErr.ManifestMissing, "submission has no %s at its root", ManifestName)
	}

	buildRoot := s.BuildRoot()
	info, err := os.Stat(buildRoot)
	if err != nil || !info.IsDir() {
		return appErr.Newf(appErr.BuildRootMissing, "submission has no %s/ directory", BuildRootName)
	}

	descriptorPath := filepath.Join(buildRoot, BuildDescriptorName)
	if _, err := os.Stat(descriptorPath); err != nil {
		return appErr.Newf(appErr.BuildDescriptorMissing, "%s/ has no %s", BuildRootName, BuildDescriptorName)
	}

	ids, err := ParseManifest(manifestPath)
	if err != nil {
		return err
	}
	s.IDs = ids
	return nil
}
