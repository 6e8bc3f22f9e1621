package migrate

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/cinecart/pkg/config"
	_ "github.com/mattn/go-sqlite3"
)

func TestStorageEntriesMigrationContainsSchema(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_storage_entries.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no storage entries migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS storage_entries",
		"entry_key VARCHAR(255) PRIMARY KEY",
		"entry_value TEXT NOT NULL",
		"DROP TABLE IF EXISTS storage_entries",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename error")
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Index!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(path, "_add_index.sql") {
		t.Fatalf("unexpected file name %s", path)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}
}

func TestGooseDialect(t *testing.T) {
	if d, err := GooseDialect(config.StorageDriverSQLite); err != nil || d != "sqlite3" {
		t.Fatalf("unexpected sqlite dialect %q err=%v", d, err)
	}
	if d, err := GooseDialect(config.StorageDriverPostgres); err != nil || d != "postgres" {
		t.Fatalf("unexpected postgres dialect %q err=%v", d, err)
	}
	if _, err := GooseDialect(config.StorageDriverRedis); err == nil {
		t.Fatal("expected error for redis driver")
	}
}

func TestRunUpOnSQLite(t *testing.T) {
	db, err := sql.Open("sqlite3", "file::memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	runner, err := NewRunner(db, config.StorageDriverSQLite, "migrations")
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	if err := runner.Up(context.Background()); err != nil {
		t.Fatalf("goose up failed: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO storage_entries (entry_key, entry_value) VALUES ('k', '[]')`); err != nil {
		t.Fatalf("insert after migration failed: %v", err)
	}

	latest, err := LatestVersion("migrations")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if current, err := runner.Version(); err != nil || current != latest {
		t.Fatalf("expected db at %d, got %d err=%v", latest, current, err)
	}
}

func TestNewRunnerRejectsNonSQLDrivers(t *testing.T) {
	db, err := sql.Open("sqlite3", "file::memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	if _, err := NewRunner(db, config.StorageDriverMemory, "migrations"); err == nil {
		t.Fatal("expected error for memory driver")
	}
	if _, err := NewRunner(nil, config.StorageDriverSQLite, "migrations"); err == nil {
		t.Fatal("expected error for nil db")
	}
}

func TestParseVersion(t *testing.T) {
	if v, err := ParseVersion("20240101000000"); err != nil || v != 20240101000000 {
		t.Fatalf("unexpected version %d err=%v", v, err)
	}
	for _, raw := range []string{"", "2024", "abc"} {
		if _, err := ParseVersion(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestListFilesOrdersAndRejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	body := []byte("-- +goose Up\n-- +goose Down\n")
	for _, name := range []string{"20240102000000_second.sql", "20240101000000_first.sql", "README.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), body, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	files, err := ListFiles(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 || files[0].Name != "first" || files[1].Version != 20240102000000 {
		t.Fatalf("unexpected files %+v", files)
	}

	latest, err := LatestVersion(dir)
	if err != nil || latest != 20240102000000 {
		t.Fatalf("unexpected latest %d err=%v", latest, err)
	}

	if err := os.WriteFile(filepath.Join(dir, "20240102000000_again.sql"), body, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ListFiles(dir); err == nil {
		t.Fatal("expected duplicate version error")
	}
}

func TestValidateDirRejectsDownBeforeUp(t *testing.T) {
	dir := t.TempDir()
	body := []byte("-- +goose Down\nSELECT 1;\n-- +goose Up\nSELECT 1;\n")
	if err := os.WriteFile(filepath.Join(dir, "20240101000000_flipped.sql"), body, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected ordering error")
	}
}

func TestCreateSQLMigrationRejectsEmptyName(t *testing.T) {
	if _, err := CreateSQLMigration(t.TempDir(), " !! "); err == nil {
		t.Fatal("expected error for empty sanitized name")
	}
}
