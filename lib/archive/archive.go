// Package archive handles the zip packaging the IRS wraps most of its
// bulk downloads in.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Extract unpacks zipPath into destDir.
func Extract(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", zipPath, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if err := extractOne(f, destDir); err != nil {
			return err
		}
	}
	return nil
}

func extractOne(f *zip.File, destDir string) error {
	dest := filepath.Join(destDir, f.Name)
	// reject entries that escape the destination directory
	if !strings.HasPrefix(dest, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return fmt.Errorf("zip entry %q escapes destination", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(dest, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

// FindByExt returns the single file in dir (non-recursive) with the given
// extension. Zero matches is an error; more than one is also an error, the
// caller cannot know which file the publisher intended.
func FindByExt(dir, ext string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no %s file found in %s", ext, dir)
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("ambiguous extraction: %d %s files in %s: %v", len(matches), ext, dir, matches)
	}
	return matches[0], nil
}

// FindAllByExt walks dir recursively and returns every file with the given
// extension, in lexical walk order.
func FindAllByExt(dir, ext string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ext) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CompressFile writes a sibling <name>.zip containing just the named file
// and returns its path.
func CompressFile(path string) (string, error) {
	base := filepath.Base(path)
	zipPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".zip"

	out, err := os.Create(zipPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := zip.NewWriter(out)
	entry, err := w.Create(base)
	if err != nil {
		w.Close()
		return "", err
	}

	src, err := os.Open(path)
	if err != nil {
		w.Close()
		return "", err
	}
	defer src.Close()

	if _, err := io.Copy(entry, src); err != nil {
		w.Close()
		os.Remove(zipPath)
		return "", err
	}
	if err := w.Close(); err != nil {
		os.Remove(zipPath)
		return "", err
	}
	return zipPath, nil
}

// Cleanup removes the given files or directories. Failures are logged, not
// returned: cleanup runs on every exit path and must never mask the error
// that got us there.
func Cleanup(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.RemoveAll(p); err != nil {
			slog.Warn("failed to clean up", "path", p, "err", err)
			continue
		}
		slog.Debug("cleaned up", "path", p)
	}
}
