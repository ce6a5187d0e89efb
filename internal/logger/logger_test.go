package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileRotation(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "viewer.log")

	err := InitWithOptions(Options{
		Level: "debug",
		File: FileConfig{
			Path:       logFile,
			MaxSizeMB:  1,
			MaxBackups: 2,
			MaxAgeDays: 1,
		},
	})
	if err != nil {
		t.Fatalf("InitWithOptions: %v", err)
	}
	defer func() { _ = InitWithOptions(Options{}) }()

	payload := strings.Repeat("f", 200)
	for i := 0; i < 15000; i++ {
		Sugar.Infof("frame %d: %s", i, payload)
	}
	Sync()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var logs []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "viewer") {
			logs = append(logs, e.Name())
		}
	}
	if len(logs) < 2 {
		t.Fatalf("expected rotated files, got %v", logs)
	}
	for _, name := range logs {
		if name != "viewer.log" && !strings.Contains(name, "-20") {
			t.Errorf("rotated file %s lacks timestamp", name)
		}
	}
}

func TestLevels(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		level    string
		present  []string
		excluded []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warning", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"INFO", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{"debug", []string{"ERROR", "WARN", "INFO", "DEBUG"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			path := filepath.Join(dir, tt.level+".log")
			if err := InitWithOptions(Options{Level: tt.level, File: FileConfig{Path: path, MaxSizeMB: 1}}); err != nil {
				t.Fatalf("InitWithOptions: %v", err)
			}
			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")
			Sync()

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			out := string(data)
			for _, want := range tt.present {
				if !strings.Contains(out, want) {
					t.Errorf("missing %s in output", want)
				}
			}
			for _, bad := range tt.excluded {
				if strings.Contains(out, bad) {
					t.Errorf("unexpected %s in output", bad)
				}
			}
		})
	}
	_ = InitWithOptions(Options{})
}

func TestNamedIncludesComponent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "named.log")
	if err := InitWithOptions(Options{Level: "info", File: FileConfig{Path: path, MaxSizeMB: 1}}); err != nil {
		t.Fatalf("InitWithOptions: %v", err)
	}
	defer func() { _ = InitWithOptions(Options{}) }()

	Named("capture").Info("saved")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "capture") {
		t.Errorf("component name missing from %q", data)
	}
}

func TestNopBeforeInit(t *testing.T) {
	// Must not panic with no sinks configured.
	if err := InitWithOptions(Options{}); err != nil {
		t.Fatal(err)
	}
	Info("dropped")
	Named("x").Warn("dropped")
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("logs/viewer.log")
	if cfg.Path != "logs/viewer.log" {
		t.Errorf("Path = %s", cfg.Path)
	}
	if cfg.MaxSizeMB != 10 || cfg.MaxBackups != 3 || cfg.MaxAgeDays != 14 || !cfg.Compress {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}
