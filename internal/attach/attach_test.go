package attach

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/lherron/datasetprep/internal/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestCopyFile(t *testing.T) {
	tmpDir := t.TempDir()

	// Create source file
	srcPath := filepath.Join(tmpDir, "source.png")
	content := []byte("test content for attachment")
	if err := os.WriteFile(srcPath, content, 0644); err != nil {
		t.Fatal(err)
	}

	// Copy file
	dstPath := filepath.Join(tmpDir, "subdir", "dest.png")
	size, checksum, err := CopyFile(srcPath, dstPath)
	if err != nil {
		t.Fatalf("CopyFile() error = %v", err)
	}

	if size != int64(len(content)) {
		t.Errorf("CopyFile() size = %d, want %d", size, len(content))
	}

	// sha256 of the content above
	if len(checksum) != 64 {
		t.Errorf("CopyFile() checksum = %q, want 64 hex chars", checksum)
	}

	if got := readFile(t, dstPath); got != string(content) {
		t.Errorf("destination content = %q, want %q", got, content)
	}
}

func TestCopyDatabase(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "source.sqlite")
	dst := filepath.Join(tmpDir, "out", "app.sqlite")
	writeFile(t, src, "fresh")
	writeFile(t, dst, "stale")
	writeFile(t, dst+"-journal", "stale journal")

	if _, err := CopyDatabase(src, dst); err != nil {
		t.Fatalf("CopyDatabase() error = %v", err)
	}
	if got := readFile(t, dst); got != "fresh" {
		t.Errorf("output db = %q, want %q", got, "fresh")
	}
	if _, err := os.Stat(dst + "-journal"); !os.IsNotExist(err) {
		t.Error("stale journal should be removed")
	}

	if _, err := CopyDatabase(src, src); err == nil {
		t.Error("CopyDatabase() onto itself should fail")
	}
}

func TestCopyTree(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "images")
	dst := filepath.Join(tmpDir, "Resources", "images")
	writeFile(t, filepath.Join(src, "1.png"), "one")
	writeFile(t, filepath.Join(src, "nested", "2.png"), "two")
	writeFile(t, filepath.Join(dst, "old.png"), "left over")

	files, err := CopyTree(src, dst)
	if err != nil {
		t.Fatalf("CopyTree() error = %v", err)
	}
	if files != 2 {
		t.Errorf("CopyTree() files = %d, want 2", files)
	}
	if got := readFile(t, filepath.Join(dst, "nested", "2.png")); got != "two" {
		t.Errorf("nested copy = %q, want %q", got, "two")
	}
	if _, err := os.Stat(filepath.Join(dst, "old.png")); !os.IsNotExist(err) {
		t.Error("destination should be replaced, not merged")
	}
}

func TestCopyTreeRefusesSameDir(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "1.png"), "one")

	_, err := CopyTree(src, filepath.Join(src, ".", "sub", ".."))
	if err == nil || !strings.Contains(err.Error(), "must differ") {
		t.Fatalf("CopyTree() error = %v, want same-dir refusal", err)
	}
	if got := readFile(t, filepath.Join(src, "1.png")); got != "one" {
		t.Error("source must be untouched")
	}
}

func TestEnsureIconAliases(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "100.png"), "by old id")
	writeFile(t, filepath.Join(dir, "21.png"), "by code")
	writeFile(t, filepath.Join(dir, "40.png"), "ignored code icon")
	writeFile(t, filepath.Join(dir, "552.png"), "existing")

	remaps := []domain.Remap{
		{OldID: 100, NewID: 551, Code: "10"},
		{OldID: 101, NewID: 560, Code: "21"},
		{OldID: 102, NewID: 552, Code: "40"},
		{OldID: 103, NewID: 553, Code: "50"},
	}

	created, err := EnsureIconAliases(dir, remaps)
	if err != nil {
		t.Fatalf("EnsureIconAliases() error = %v", err)
	}
	if created != 2 {
		t.Errorf("EnsureIconAliases() = %d, want 2", created)
	}

	tests := map[string]string{
		"551.png": "by old id",
		"560.png": "by code",
		"552.png": "existing",
	}
	for name, want := range tests {
		if got := readFile(t, filepath.Join(dir, name)); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "553.png")); !os.IsNotExist(err) {
		t.Error("no alias should be made without a candidate icon")
	}

	// Second run finds every target in place.
	created, err = EnsureIconAliases(dir, remaps)
	if err != nil {
		t.Fatalf("EnsureIconAliases() second call error = %v", err)
	}
	if created != 0 {
		t.Errorf("EnsureIconAliases() second call = %d, want 0", created)
	}
}

func TestStripGuide(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, GuideFile), "<html>")

	removed, err := StripGuide(dir)
	if err != nil || !removed {
		t.Fatalf("StripGuide() = %v, %v; want true, nil", removed, err)
	}

	removed, err = StripGuide(dir)
	if err != nil || removed {
		t.Errorf("StripGuide() on missing guide = %v, %v; want false, nil", removed, err)
	}
}

func TestMissingFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "present.png"), "")

	got := MissingFiles(dir, []string{"present.png", "", "b.png", "a.png"})
	want := []string{"b.png", "a.png"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MissingFiles() = %v, want %v", got, want)
	}

	if got := MissingFiles(dir, nil); len(got) != 0 {
		t.Errorf("MissingFiles(nil) = %v, want empty", got)
	}
}
