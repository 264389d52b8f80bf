package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindEnvLocal_InCurrentDir(t *testing.T) {
	// Create temp directory structure
	tmpDir := t.TempDir()
	envPath := filepath.Join(tmpDir, ".env.local")
	if err := os.WriteFile(envPath, []byte("TEST=value"), 0644); err != nil {
		t.Fatal(err)
	}

	// Change to temp dir
	oldCwd, _ := os.Getwd()
	defer os.Chdir(oldCwd)
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}

	result := findEnvLocal()
	if result == "" {
		t.Error("expected to find .env.local in current directory")
	}
}

func TestFindEnvLocal_InParentDir(t *testing.T) {
	// Create temp directory structure: parent/.env.local, parent/child/
	tmpDir := t.TempDir()
	childDir := filepath.Join(tmpDir, "child")
	if err := os.Mkdir(childDir, 0755); err != nil {
		t.Fatal(err)
	}
	envPath := filepath.Join(tmpDir, ".env.local")
	if err := os.WriteFile(envPath, []byte("TEST=parent"), 0644); err != nil {
		t.Fatal(err)
	}

	// Change to child dir
	oldCwd, _ := os.Getwd()
	defer os.Chdir(oldCwd)
	if err := os.Chdir(childDir); err != nil {
		t.Fatal(err)
	}

	result := findEnvLocal()
	if result == "" {
		t.Error("expected to find .env.local in parent directory")
	}
	// Resolve symlinks for comparison (macOS /var -> /private/var)
	expectedResolved, _ := filepath.EvalSymlinks(envPath)
	resultResolved, _ := filepath.EvalSymlinks(result)
	if resultResolved != expectedResolved {
		t.Errorf("expected %s, got %s", expectedResolved, resultResolved)
	}
}

func TestFindEnvLocal_InGrandparentDir(t *testing.T) {
	// Create: grandparent/.env.local, grandparent/parent/child/
	tmpDir := t.TempDir()
	parentDir := filepath.Join(tmpDir, "parent")
	childDir := filepath.Join(parentDir, "child")
	if err := os.MkdirAll(childDir, 0755); err != nil {
		t.Fatal(err)
	}
	envPath := filepath.Join(tmpDir, ".env.local")
	if err := os.WriteFile(envPath, []byte("TEST=grandparent"), 0644); err != nil {
		t.Fatal(err)
	}

	// Change to grandchild dir
	oldCwd, _ := os.Getwd()
	defer os.Chdir(oldCwd)
	if err := os.Chdir(childDir); err != nil {
		t.Fatal(err)
	}

	result := findEnvLocal()
	if result == "" {
		t.Error("expected to find .env.local in grandparent directory")
	}
	// Resolve symlinks for comparison (macOS /var -> /private/var)
	expectedResolved, _ := filepath.EvalSymlinks(envPath)
	resultResolved, _ := filepath.EvalSymlinks(result)
	if resultResolved != expectedResolved {
		t.Errorf("expected %s, got %s", expectedResolved, resultResolved)
	}
}

func TestFindEnvLocal_ClosestWins(t *testing.T) {
	// Create: grandparent/.env.local, grandparent/parent/.env.local, grandparent/parent/child/
	tmpDir := t.TempDir()
	parentDir := filepath.Join(tmpDir, "parent")
	childDir := filepath.Join(parentDir, "child")
	if err := os.MkdirAll(childDir, 0755); err != nil {
		t.Fatal(err)
	}

	// Create .env.local in both grandparent and parent
	if err := os.WriteFile(filepath.Join(tmpDir, ".env.local"), []byte("TEST=grandparent"), 0644); err != nil {
		t.Fatal(err)
	}
	parentEnvPath := filepath.Join(parentDir, ".env.local")
	if err := os.WriteFile(parentEnvPath, []byte("TEST=parent"), 0644); err != nil {
		t.Fatal(err)
	}

	// Change to child dir
	oldCwd, _ := os.Getwd()
	defer os.Chdir(oldCwd)
	if err := os.Chdir(childDir); err != nil {
		t.Fatal(err)
	}

	result := findEnvLocal()
	// Resolve symlinks for comparison (macOS /var -> /private/var)
	expectedResolved, _ := filepath.EvalSymlinks(parentEnvPath)
	resultResolved, _ := filepath.EvalSymlinks(result)
	if resultResolved != expectedResolved {
		t.Errorf("expected closest .env.local (%s), got %s", expectedResolved, resultResolved)
	}
}

func TestFindEnvLocal_NotFound(t *testing.T) {
	// Create temp directory with no .env.local
	tmpDir := t.TempDir()

	// Change to temp dir
	oldCwd, _ := os.Getwd()
	defer os.Chdir(oldCwd)
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}

	result := findEnvLocal()
	if result != "" {
		t.Errorf("expected empty string when no .env.local found, got %s", result)
	}
}

// isolate points HOME and cwd at empty temp dirs so no real config leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{
		"DATASETPREP_WORK_DIR", "DATASETPREP_SQLITE_DRIVER", "DATASETPREP_LOG_LEVEL",
		"DATASETPREP_LOG_FORMAT", "DATASETPREP_OUTPUT", "DATASETPREP_METRICS_FILE",
		"DATASETPREP_S3_REGION", "DATASETPREP_S3_ENDPOINT", "DATASETPREP_S3_PATH_STYLE",
		"DATASETPREP_S3_ACCESS_KEY_ID", "DATASETPREP_S3_SECRET_ACCESS_KEY",
	} {
		t.Setenv(key, "")
	}

	oldCwd, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(oldCwd) })
	if err := os.Chdir(home); err != nil {
		t.Fatal(err)
	}
	return home
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.WorkDir != DefaultWorkDir {
		t.Errorf("WorkDir = %q, want %q", cfg.WorkDir, DefaultWorkDir)
	}
	if cfg.SQLiteDriver != "sqlite3" {
		t.Errorf("SQLiteDriver = %q, want sqlite3", cfg.SQLiteDriver)
	}
	if cfg.Output != "json" || cfg.LogFormat != "console" || cfg.LogLevel != "info" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	home := isolate(t)

	configDir := filepath.Join(home, ".config", "datasetprep")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	yamlConfig := "work_dir: /srv/import\noutput: yaml\ns3_region: eu-west-1\ns3_path_style: true\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(yamlConfig), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("DATASETPREP_S3_REGION", "eu-central-1")
	secretFile := filepath.Join(home, "secret")
	if err := os.WriteFile(secretFile, []byte("s3cr3t\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DATASETPREP_S3_SECRET_ACCESS_KEY_FILE", secretFile)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.WorkDir != "/srv/import" {
		t.Errorf("WorkDir = %q, want /srv/import", cfg.WorkDir)
	}
	if cfg.Output != "yaml" {
		t.Errorf("Output = %q, want yaml", cfg.Output)
	}
	if !cfg.S3PathStyle {
		t.Error("S3PathStyle should come from YAML")
	}
	if cfg.S3Region != "eu-central-1" {
		t.Errorf("S3Region = %q, env should win over YAML", cfg.S3Region)
	}
	if cfg.S3SecretAccessKey != "s3cr3t" {
		t.Errorf("S3SecretAccessKey = %q, want value read from _FILE", cfg.S3SecretAccessKey)
	}
}

func TestLoad_EnvLocal(t *testing.T) {
	home := isolate(t)
	if err := os.WriteFile(filepath.Join(home, ".env.local"), []byte("DATASETPREP_LOG_LEVEL=debug\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// godotenv never overrides variables that are already set, even to "".
	os.Unsetenv("DATASETPREP_LOG_LEVEL")
	t.Cleanup(func() { os.Unsetenv("DATASETPREP_LOG_LEVEL") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug from .env.local", cfg.LogLevel)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"output", "DATASETPREP_OUTPUT", "table"},
		{"log format", "DATASETPREP_LOG_FORMAT", "xml"},
		{"path style", "DATASETPREP_S3_PATH_STYLE", "sometimes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q should fail", tt.key, tt.value)
			}
		})
	}
}
