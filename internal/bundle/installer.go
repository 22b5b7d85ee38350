package bundle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"runtime"
)

// Options describes one bundle installation: download the archive, find the
// marker directory inside it and copy the required files into TargetDir.
type Options struct {
	ArchiveURL    string
	RequiredFiles []string
	MarkerDir     string
	TargetDir     string
	WorkDir       string
}

// FetchFunc downloads url into dest with bounded retry, reporting success.
type FetchFunc func(ctx context.Context, url, dest string, maxAttempts int) bool

// Installer installs tool bundles from downloaded archives. Re-running after
// a partial failure is safe: the scratch directory is wiped before use and
// all temporary artifacts are removed on every exit path.
type Installer struct {
	Fetch       FetchFunc
	MaxAttempts int
	Logger      *log.Logger
}

// Install runs the full download/extract/copy sequence. It returns true iff
// at least one required file was copied into the target directory.
func (i *Installer) Install(ctx context.Context, opts Options) bool {
	if err := os.MkdirAll(opts.WorkDir, 0o755); err != nil {
		i.logf("prepare work dir: %v", err)
		return false
	}

	archivePath, err := archivePathFor(opts.WorkDir, opts.ArchiveURL)
	if err != nil {
		i.logf("resolve archive path: %v", err)
		return false
	}
	scratchDir := filepath.Join(opts.WorkDir, "extract")

	defer func() {
		if err := os.RemoveAll(scratchDir); err != nil {
			i.logf("remove scratch dir: %v", err)
		}
		if err := os.Remove(archivePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			i.logf("remove archive: %v", err)
		}
	}()

	if !i.Fetch(ctx, opts.ArchiveURL, archivePath, i.maxAttempts()) {
		i.logf("bundle download failed: %s", opts.ArchiveURL)
		return false
	}

	if err := os.RemoveAll(scratchDir); err != nil {
		i.logf("reset scratch dir: %v", err)
		return false
	}
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		i.logf("create scratch dir: %v", err)
		return false
	}

	if err := extractArchive(ctx, archivePath, scratchDir); err != nil {
		i.logf("extract %s: %v", archivePath, err)
		return false
	}

	markerDir, err := findMarkerDir(scratchDir, opts.MarkerDir)
	if err != nil {
		i.logf("search marker dir: %v", err)
		return false
	}
	if markerDir == "" {
		i.logf("no %q directory found in extracted bundle", opts.MarkerDir)
		return false
	}

	if err := os.MkdirAll(opts.TargetDir, 0o755); err != nil {
		i.logf("create target dir: %v", err)
		return false
	}

	copied := 0
	for _, name := range opts.RequiredFiles {
		src := filepath.Join(markerDir, name)
		if ok, err := regularFile(src); err != nil || !ok {
			i.logf("bundle is missing %s, skipping", name)
			continue
		}
		dest := filepath.Join(opts.TargetDir, name)
		if err := copyFile(src, dest); err != nil {
			i.logf("copy %s: %v", name, err)
			continue
		}
		if runtime.GOOS != "windows" {
			if err := os.Chmod(dest, 0o755); err != nil {
				i.logf("chmod %s: %v", name, err)
			}
		}
		copied++
	}

	return copied > 0
}

func (i *Installer) maxAttempts() int {
	if i.MaxAttempts > 0 {
		return i.MaxAttempts
	}
	return 3
}

func (i *Installer) logf(format string, args ...any) {
	if i.Logger != nil {
		i.Logger.Printf(format, args...)
	}
}

func archivePathFor(workDir, downloadURL string) (string, error) {
	parsed, err := url.Parse(downloadURL)
	if err != nil {
		return "", fmt.Errorf("parse download url: %w", err)
	}
	base := path.Base(parsed.Path)
	if base == "." || base == "" || base == "/" {
		return "", fmt.Errorf("infer archive name from url: %s", downloadURL)
	}
	return filepath.Join(workDir, base), nil
}

// findMarkerDir walks the extracted tree looking for the first directory
// literally named markerName. WalkDir visits entries in lexical order, so
// the match is deterministic for a given tree.
func findMarkerDir(root, markerName string) (string, error) {
	var match string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == markerName {
			match = p
			return io.EOF
		}
		return nil
	})
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return match, nil
}

func regularFile(p string) (bool, error) {
	info, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer source.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	dest, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dest, source); err != nil {
		dest.Close()
		return err
	}
	return dest.Close()
}
