// Package attach materializes the dataset's attachment images into the
// application's resource folder.
// Images live flat under images_dir/<filename>; category icons are
// images_dir/<category_id>.png.
package attach

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/lherron/datasetprep/internal/domain"
)

// GuideFile is the stray HTML guide some source packages ship next to the images.
const GuideFile = "guide.html"

// CopyFile copies a file from src to dst, keeping src's permission bits
// and returning size and checksum. Parent directories of dst are created.
func CopyFile(src, dst string) (size int64, checksum string, err error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return 0, "", fmt.Errorf("failed to open source: %w", err)
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return 0, "", fmt.Errorf("failed to stat source: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return 0, "", fmt.Errorf("failed to create destination directory: %w", err)
	}
	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, "", fmt.Errorf("failed to create destination: %w", err)
	}
	defer dstFile.Close()

	// Copy with checksum computation
	hasher := sha256.New()
	size, err = io.Copy(io.MultiWriter(dstFile, hasher), srcFile)
	if err != nil {
		return 0, "", fmt.Errorf("failed to copy file: %w", err)
	}
	if err := dstFile.Close(); err != nil {
		return 0, "", fmt.Errorf("failed to write destination: %w", err)
	}

	// Preserve modification time like a metadata-preserving copy.
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return 0, "", fmt.Errorf("failed to set times on destination: %w", err)
	}

	return size, hex.EncodeToString(hasher.Sum(nil)), nil
}

// CopyDatabase copies a SQLite file to dst, replacing any previous output
// together with its journal sidecars.
func CopyDatabase(src, dst string) (checksum string, err error) {
	same, err := samePath(src, dst)
	if err != nil {
		return "", err
	}
	if same {
		return "", fmt.Errorf("output db must differ from source db (%s)", src)
	}

	for _, suffix := range []string{"", "-journal", "-wal", "-shm"} {
		if err := os.Remove(dst + suffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to remove previous output %s: %w", dst+suffix, err)
		}
	}

	_, checksum, err = CopyFile(src, dst)
	if err != nil {
		return "", err
	}
	return checksum, nil
}

// CopyTree replaces dst with a recursive copy of src. It refuses to run
// when both resolve to the same directory.
func CopyTree(src, dst string) (files int, err error) {
	same, err := samePath(src, dst)
	if err != nil {
		return 0, err
	}
	if same {
		return 0, fmt.Errorf("output images dir must differ from source images dir (%s)", src)
	}

	if err := os.RemoveAll(dst); err != nil {
		return 0, fmt.Errorf("failed to clear %s: %w", dst, err)
	}

	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if _, _, err := CopyFile(path, target); err != nil {
			return fmt.Errorf("%s: %w", rel, err)
		}
		files++
		return nil
	})
	if err != nil {
		return files, fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	return files, nil
}

func samePath(a, b string) (bool, error) {
	absA, err := resolve(a)
	if err != nil {
		return false, err
	}
	absB, err := resolve(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}

// resolve makes path absolute and follows symlinks when it exists.
func resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}

// IconPath returns the icon file for a category id or code.
func IconPath(imagesDir string, name any) string {
	return filepath.Join(imagesDir, fmt.Sprintf("%v.png", name))
}

// EnsureIconAliases gives every remapped category an icon under its new id.
// When <new_id>.png is absent, the first existing of <old_id>.png and
// <code>.png is copied to it. Returns the number of aliases created.
func EnsureIconAliases(imagesDir string, remaps []domain.Remap) (int, error) {
	created := 0
	for _, r := range remaps {
		target := IconPath(imagesDir, r.NewID)
		if exists(target) {
			continue
		}

		for _, candidate := range []string{IconPath(imagesDir, r.OldID), IconPath(imagesDir, r.Code)} {
			if !exists(candidate) {
				continue
			}
			if _, _, err := CopyFile(candidate, target); err != nil {
				return created, fmt.Errorf("failed to alias icon for category %d: %w", r.NewID, err)
			}
			created++
			break
		}
	}
	return created, nil
}

// StripGuide deletes guide.html from imagesDir. It reports whether a file
// was removed.
func StripGuide(imagesDir string) (bool, error) {
	err := os.Remove(filepath.Join(imagesDir, GuideFile))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to remove %s: %w", GuideFile, err)
	}
	return true, nil
}

// MissingFiles returns the non-empty filenames that have no file in imagesDir,
// in input order.
func MissingFiles(imagesDir string, filenames []string) []string {
	missing := []string{}
	for _, name := range filenames {
		if name == "" {
			continue
		}
		if !exists(filepath.Join(imagesDir, name)) {
			missing = append(missing, name)
		}
	}
	return missing
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
