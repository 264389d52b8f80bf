// Package source locates the dataset database and images inside an
// unpacked source package.
package source

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ImageExtensions are the file extensions counted as images (lower case).
var ImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
}

// Extract unpacks a zip archive into workDir, which is emptied first.
// Backslash separators in member names are treated as '/'. Members that
// would land outside workDir are rejected.
func Extract(zipPath, workDir string) error {
	if err := os.RemoveAll(workDir); err != nil {
		return fmt.Errorf("failed to clear work dir: %w", err)
	}
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("failed to create work dir: %w", err)
	}

	archive, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", zipPath, err)
	}
	defer archive.Close()

	root, err := filepath.Abs(workDir)
	if err != nil {
		return fmt.Errorf("failed to resolve work dir: %w", err)
	}

	for _, member := range archive.File {
		name := strings.ReplaceAll(member.Name, `\`, "/")
		isDir := member.FileInfo().IsDir() || strings.HasSuffix(name, "/")
		name = strings.Trim(name, "/")
		if name == "" {
			continue
		}

		target := filepath.Join(root, filepath.FromSlash(name))
		if target != root && !strings.HasPrefix(target, root+string(filepath.Separator)) {
			return fmt.Errorf("archive member %q escapes the work dir", member.Name)
		}

		if isDir {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
			continue
		}

		if err := extractFile(member, target); err != nil {
			return err
		}
	}

	return nil
}

func extractFile(member *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", target, err)
	}

	src, err := member.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive member %s: %w", member.Name, err)
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to extract %s: %w", member.Name, err)
	}
	return dst.Close()
}

// SQLiteFiles returns every *.sqlite file under root, sorted. It fails when
// there is none; callers use the first.
func SQLiteFiles(root string) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".sqlite") {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no .sqlite file found under %s", root)
	}
	sort.Strings(matches)
	return matches, nil
}

// ImagesDir returns the directory under root (root included) holding the
// most images as direct children. Ties keep the first directory in walk
// order. Unreadable directories are skipped.
func ImagesDir(root string) (string, error) {
	best := ""
	bestCount := 0

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}

		count, err := countImages(path)
		if err != nil {
			return nil
		}
		if count > bestCount {
			best, bestCount = path, count
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to scan %s: %w", root, err)
	}
	if bestCount == 0 {
		return "", fmt.Errorf("no images directory found under %s", root)
	}
	return best, nil
}

func countImages(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, e := range entries {
		if e.Type().IsRegular() && ImageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			count++
		}
	}
	return count, nil
}
