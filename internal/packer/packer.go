// Package packer assembles a gradable submission archive from a source tree.
package packer

import (
	"archive/tar"
	"context"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/amitnovick/compilation-ex3-testers/internal/grader/build"
	"github.com/amitnovick/compilation-ex3-testers/internal/grader/submission"
	appErr "github.com/amitnovick/compilation-ex3-testers/pkg/errors"
)

// Packer assembles an archive containing exactly the manifest and the build
// root, with build artifacts stripped so grading rebuilds from scratch. A
// pre-flight build verifies the Makefile works before stripping.
type Packer struct {
	// SourceDir contains the build root subtree (ex3/).
	SourceDir string
	// IDs are the submitter identifiers written to the manifest.
	IDs []string
	// Builder runs the pre-flight build inside the staged build root.
	Builder build.Invoker
}

// Pack stages a copy of the build root, pre-flight builds it, strips build
// outputs and writes the final .tar.gz archive at outPath. The source tree
// is never modified.
func (p Packer) Pack(ctx context.Context, outPath string) error {
	if len(p.IDs) == 0 {
		return appErr.ValidationError("ids", "required")
	}
	srcBuildRoot := filepath.Join(p.SourceDir, submission.BuildRootName)
	if _, err := os.Stat(filepath.Join(srcBuildRoot, submission.BuildDescriptorName)); err != nil {
		return appErr.Newf(appErr.BuildDescriptorMissing, "%s has no %s",
			srcBuildRoot, submission.BuildDescriptorName)
	}

	stage, err := os.MkdirTemp("", "ex3-pack-")
	if err != nil {
		return appErr.Wrapf(err, appErr.PackagingFailed, "create staging dir failed")
	}
	defer func() {
		_ = os.RemoveAll(stage)
	}()

	stagedBuildRoot := filepath.Join(stage, submission.BuildRootName)
	if err := copyTree(srcBuildRoot, stagedBuildRoot); err != nil {
		return err
	}

	manifest := strings.Join(p.IDs, "\n") + "\n"
	manifestPath := filepath.Join(stage, submission.ManifestName)
	if err := os.WriteFile(manifestPath, []byte(manifest), 0644); err != nil {
		return appErr.Wrapf(err, appErr.PackagingFailed, "write manifest failed")
	}

	// Pre-flight: the Makefile must actually produce the artifact before
	// we ship an archive that claims it will.
	if _, err := p.Builder.Invoke(ctx, stagedBuildRoot); err != nil {
		return err
	}

	if err := p.strip(ctx, stagedBuildRoot); err != nil {
		return err
	}

	return writeTarGz(stage, outPath)
}

// strip removes build outputs from the staged build root: make clean when
// the Makefile offers it, then the artifact and object files regardless.
func (p Packer) strip(ctx context.Context, buildRoot string) error {
	clean := exec.CommandContext(ctx, "make", "clean")
	clean.Dir = buildRoot
	_ = clean.Run() // best effort; not every Makefile has a clean target

	if p.Builder.ArtifactName != "" {
		_ = os.Remove(filepath.Join(buildRoot, p.Builder.ArtifactName))
	}
	return filepath.WalkDir(buildRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if strings.HasSuffix(d.Name(), ".o") {
			return os.Remove(path)
		}
		return nil
	})
}

func copyTree(srcDir, dstDir string) error {
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dstDir, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return copyFile(path, target, info.Mode().Perm())
	})
	if err != nil {
		return appErr.Wrapf(err, appErr.PackagingFailed, "copy source tree failed")
	}
	return nil
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func writeTarGz(srcDir, outPath string) error {
	out, err := os.Create(outPath)
	if err != nil {
		return appErr.Wrapf(err, appErr.PackagingFailed, "create archive failed")
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	err = filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		_, copyErr := io.Copy(tw, file)
		_ = file.Close()
		return copyErr
	})
	if err != nil {
		return appErr.Wrapf(err, appErr.PackagingFailed, "write archive failed")
	}

	if err := tw.Close(); err != nil {
		return appErr.Wrapf(err, appErr.PackagingFailed, "finalize tar failed")
	}
	if err := gz.Close(); err != nil {
		return appErr.Wrapf(err, appErr.PackagingFailed, "finalize gzip failed")
	}
	return nil
}
