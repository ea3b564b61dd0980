package submission

import (
	"archive/tar"
	"archive/zip"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	appErr "github.com/amitnovick/compilation-ex3-testers/pkg/errors"
)

const workspacePrefix = "ex3-grade-"

// Extract unpacks the archive into a freshly created, uniquely named
// workspace under workRoot (the system temp dir when empty). The caller owns
// the returned Submission and must arrange Cleanup on every exit path.
func Extract(ctx context.Context, archivePath, workRoot string) (*Submission, error) {
	if archivePath == "" {
		return nil, appErr.ValidationError("archive_path", "required")
	}
	if _, err := os.Stat(archivePath); err != nil {
		return nil, appErr.Wrapf(err, appErr.ArchiveOpenFailed, "stat archive failed")
	}
	if workRoot == "" {
		workRoot = os.TempDir()
	}

	runID := uuid.NewString()
	root := filepath.Join(workRoot, workspacePrefix+runID)
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, appErr.Wrapf(err, appErr.InternalError, "create workspace failed")
	}

	if err := extractArchive(ctx, archivePath, root); err != nil {
		_ = os.RemoveAll(root)
		return nil, err
	}

	return &Submission{
		ArchivePath: archivePath,
		Root:        root,
		RunID:       runID,
	}, nil
}

func extractArchive(ctx context.Context, archivePath, dstDir string) error {
	name := strings.ToLower(archivePath)
	switch {
	case strings.HasSuffix(name, ".zip"):
		return extractZip(archivePath, dstDir)
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return extractCompressedTar(ctx, archivePath, dstDir, newGzipReader)
	case strings.HasSuffix(name, ".tar.zst"):
		return extractCompressedTar(ctx, archivePath, dstDir, newZstdReader)
	default:
		return appErr.Newf(appErr.ArchiveFormatUnknown, "unsupported archive: %s", filepath.Base(archivePath))
	}
}

type decompressor func(io.Reader) (io.ReadCloser, error)

func newGzipReader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

func newZstdReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return dec.IOReadCloser(), nil
}

func extractCompressedTar(ctx context.Context, srcPath, dstDir string, open decompressor) error {
	file, err := os.Open(srcPath)
	if err != nil {
		return appErr.Wrapf(err, appErr.ArchiveOpenFailed, "open archive failed")
	}
	defer file.Close()

	decoded, err := open(file)
	if err != nil {
		return appErr.Wrapf(err, appErr.ArchiveOpenFailed, "decode archive failed")
	}
	defer decoded.Close()

	tr := tar.NewReader(decoded)
	for {
		if err := ctx.Err(); err != nil {
			return appErr.Wrap(err, appErr.ArchiveExtractFailed)
		}
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return appErr.Wrapf(err, appErr.ArchiveExtractFailed, "read tar entry failed")
		}
		if hdr.Name == "" {
			continue
		}
		target, err := safeTarget(dstDir, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return appErr.Wrapf(err, appErr.ArchiveExtractFailed, "create dir failed")
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr, fs.FileMode(hdr.Mode)); err != nil {
				return err
			}
		default:
			// symlinks and specials are never part of a submission; skip
		}
	}
	return nil
}

func extractZip(srcPath, dstDir string) error {
	reader, err := zip.OpenReader(srcPath)
	if err != nil {
		return appErr.Wrapf(err, appErr.ArchiveOpenFailed, "open zip failed")
	}
	defer reader.Close()

	for _, entry := range reader.File {
		target, err := safeTarget(dstDir, entry.Name)
		if err != nil {
			return err
		}
		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return appErr.Wrapf(err, appErr.ArchiveExtractFailed, "create dir failed")
			}
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return appErr.Wrapf(err, appErr.ArchiveExtractFailed, "open zip entry failed")
		}
		err = writeEntry(target, rc, entry.Mode())
		_ = rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// safeTarget joins an archive entry name under dstDir, rejecting absolute
// paths and any escape above the workspace.
func safeTarget(dstDir, name string) (string, error) {
	clean := filepath.Clean(name)
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", appErr.Newf(appErr.ArchiveEntryUnsafe, "invalid entry path: %s", name)
	}
	target := filepath.Join(dstDir, clean)
	if !strings.HasPrefix(target, filepath.Clean(dstDir)+string(filepath.Separator)) {
		return "", appErr.Newf(appErr.ArchiveEntryUnsafe, "entry escapes workspace: %s", name)
	}
	return target, nil
}

func writeEntry(target string, src io.Reader, mode fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return appErr.Wrapf(err, appErr.ArchiveExtractFailed, "create parent dir failed")
	}
	perm := mode.Perm()
	if perm == 0 {
		perm = 0644
	}
	file, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return appErr.Wrapf(err, appErr.ArchiveExtractFailed, "create file failed")
	}
	if _, err := io.Copy(file, src); err != nil {
		_ = file.Close()
		return appErr.Wrapf(err, appErr.ArchiveExtractFailed, "write file failed")
	}
	return file.Close()
}
