package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpungsan/stf2json/internal/config"
	"github.com/hpungsan/stf2json/internal/db"
	"github.com/hpungsan/stf2json/internal/ops"
	"github.com/hpungsan/stf2json/internal/stf"
)

const sampleSTF = "{STF}10/05/20;08:00:00;002" +
	"{C}Errands\\{r}P{;}{.}" +
	"{I}{T}buy milk{C}Errands\\{!}"

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	cleanup := func() {
		database.Close()
	}
	return database, cleanup
}

// writeSampleFile writes STF text to a temp file and returns its path.
func writeSampleFile(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.stf")
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatalf("failed to write input file: %v", err)
	}
	return path
}

// runApp runs the CLI app capturing stdout.
func runApp(t *testing.T, database *sql.DB, cfg *config.Config, args ...string) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	app := newCLIApp(database, cfg)
	err := app.Run(append([]string{"stf2json"}, args...))

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout

	return buf.String(), err
}

// TestCLIConvert tests the convert command with a file argument.
func TestCLIConvert(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	path := writeSampleFile(t, sampleSTF)
	out, err := runApp(t, database, config.DefaultConfig(), "convert", path)
	if err != nil {
		t.Fatalf("convert command failed: %v", err)
	}

	var files []*stf.FileRecord
	if err := json.Unmarshal([]byte(out), &files); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
	if files[0].Timestamp != "2020-10-05T08:00:00Z" {
		t.Errorf("timestamp = %s, want 2020-10-05T08:00:00Z", files[0].Timestamp)
	}
	if len(files[0].Items) != 1 {
		t.Errorf("expected 1 item, got %d", len(files[0].Items))
	}
}

// TestCLIConvert_Counts tests the --counts flag.
func TestCLIConvert_Counts(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	path := writeSampleFile(t, sampleSTF)
	out, err := runApp(t, database, config.DefaultConfig(), "convert", "--counts", path)
	if err != nil {
		t.Fatalf("convert command failed: %v", err)
	}

	var output ops.ConvertOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if output.FileCount != 1 || output.CategoryCount != 1 || output.ItemCount != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/1/1",
			output.FileCount, output.CategoryCount, output.ItemCount)
	}
}

// TestCLIConvert_Compact tests the --compact flag.
func TestCLIConvert_Compact(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	path := writeSampleFile(t, sampleSTF)
	out, err := runApp(t, database, config.DefaultConfig(), "convert", "--compact", path)
	if err != nil {
		t.Fatalf("convert command failed: %v", err)
	}
	if strings.Count(strings.TrimSpace(out), "\n") != 0 {
		t.Errorf("expected single-line compact output, got:\n%s", out)
	}
}

// TestCLIConvert_BadGrammar tests error reporting for invalid input.
func TestCLIConvert_BadGrammar(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	path := writeSampleFile(t, "{I}{T}no header{!}")
	_, err := runApp(t, database, config.DefaultConfig(), "convert", path)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "[GRAMMAR_ERROR]") {
		t.Errorf("error = %v, want GRAMMAR_ERROR code", err)
	}
}

// TestCLIConvert_MissingFile tests error reporting for a bad path.
func TestCLIConvert_MissingFile(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := runApp(t, database, config.DefaultConfig(), "convert", "/no/such/file.stf")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "[INVALID_REQUEST]") {
		t.Errorf("error = %v, want INVALID_REQUEST code", err)
	}
}

// TestCLIRender tests the render command.
func TestCLIRender(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	path := writeSampleFile(t, sampleSTF)

	t.Run("markdown", func(t *testing.T) {
		out, err := runApp(t, database, config.DefaultConfig(), "render", path)
		if err != nil {
			t.Fatalf("render command failed: %v", err)
		}
		if !strings.Contains(out, "# File 1 (2020-10-05T08:00:00Z)") {
			t.Errorf("missing outline heading in output:\n%s", out)
		}
		if !strings.Contains(out, "- buy milk") {
			t.Errorf("missing item line in output:\n%s", out)
		}
	})

	t.Run("html", func(t *testing.T) {
		out, err := runApp(t, database, config.DefaultConfig(), "render", "--format=html", path)
		if err != nil {
			t.Fatalf("render command failed: %v", err)
		}
		if !strings.Contains(out, "<h1") {
			t.Errorf("expected HTML output, got:\n%s", out)
		}
	})
}

// TestCLIArchiveRoundTrip tests archive, retrieve, and list together.
func TestCLIArchiveRoundTrip(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := config.DefaultConfig()

	path := writeSampleFile(t, sampleSTF)

	// Archive
	out, err := runApp(t, database, cfg, "archive", "--label=test import", path)
	if err != nil {
		t.Fatalf("archive command failed: %v", err)
	}
	var archived ops.ArchiveOutput
	if err := json.Unmarshal([]byte(out), &archived); err != nil {
		t.Fatalf("failed to parse archive output: %v", err)
	}
	if archived.ImportID == "" {
		t.Fatal("expected non-empty import_id")
	}

	// Retrieve
	out, err = runApp(t, database, cfg, "retrieve", archived.ImportID)
	if err != nil {
		t.Fatalf("retrieve command failed: %v", err)
	}
	var retrieved ops.RetrieveOutput
	if err := json.Unmarshal([]byte(out), &retrieved); err != nil {
		t.Fatalf("failed to parse retrieve output: %v", err)
	}
	if len(retrieved.Files) != 1 {
		t.Errorf("expected 1 file, got %d", len(retrieved.Files))
	}

	// List
	out, err = runApp(t, database, cfg, "list")
	if err != nil {
		t.Fatalf("list command failed: %v", err)
	}
	var listed ops.ListArchiveOutput
	if err := json.Unmarshal([]byte(out), &listed); err != nil {
		t.Fatalf("failed to parse list output: %v", err)
	}
	if listed.Total != 1 {
		t.Errorf("expected 1 import, got %d", listed.Total)
	}
}

// TestCLIRetrieve_NotFound tests retrieve with an unknown ID.
func TestCLIRetrieve_NotFound(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := runApp(t, database, config.DefaultConfig(), "retrieve", "01MISSING")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "[NOT_FOUND]") {
		t.Errorf("error = %v, want NOT_FOUND code", err)
	}
}

// TestCLIDate tests the date command.
func TestCLIDate(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := config.DefaultConfig()

	t.Run("default format", func(t *testing.T) {
		out, err := runApp(t, database, cfg, "date", "10/5/2020", "14:30")
		if err != nil {
			t.Fatalf("date command failed: %v", err)
		}
		var output ops.NormalizeDateOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if output.Normalized != "2020-10-05T14:30:00Z" {
			t.Errorf("normalized = %s, want 2020-10-05T14:30:00Z", output.Normalized)
		}
	})

	t.Run("explicit format", func(t *testing.T) {
		out, err := runApp(t, database, cfg, "date", "--format=3", "5.10.2020", "14:30")
		if err != nil {
			t.Fatalf("date command failed: %v", err)
		}
		var output ops.NormalizeDateOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if output.Normalized != "2020-10-05T14:30:00Z" {
			t.Errorf("normalized = %s, want 2020-10-05T14:30:00Z", output.Normalized)
		}
	})

	t.Run("missing argument", func(t *testing.T) {
		_, err := runApp(t, database, cfg, "date")
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "[INVALID_REQUEST]") {
			t.Errorf("error = %v, want INVALID_REQUEST code", err)
		}
	})

	t.Run("out of range format", func(t *testing.T) {
		_, err := runApp(t, database, cfg, "date", "--format=13", "10/5/2020 14:30")
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "[CONFIG_ERROR]") {
			t.Errorf("error = %v, want CONFIG_ERROR code", err)
		}
	})
}

// TestIsCLIMode tests command detection.
func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{"no args", []string{"stf2json"}, false},
		{"known command", []string{"stf2json", "convert"}, true},
		{"help flag", []string{"stf2json", "--help"}, true},
		{"version flag", []string{"stf2json", "-v"}, true},
		{"unknown arg", []string{"stf2json", "bogus"}, false},
	}

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			if got := isCLIMode(); got != tt.want {
				t.Errorf("isCLIMode() = %v, want %v", got, tt.want)
			}
		})
	}
}
