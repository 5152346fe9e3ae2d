package sandbox

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	return string(data)
}

func TestNewAuditLogger(t *testing.T) {
	t.Run("creates log file and parent directories", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "logs", "audit.log")

		logger, err := NewAuditLogger(logPath)
		if err != nil {
			t.Fatalf("NewAuditLogger() error = %v", err)
		}
		defer logger.Close()

		if _, err := os.Stat(logPath); os.IsNotExist(err) {
			t.Error("Log file was not created")
		}
	})

	t.Run("appends to existing log file", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "audit.log")

		existing := "previous log entry\n"
		if err := os.WriteFile(logPath, []byte(existing), 0644); err != nil {
			t.Fatalf("Failed to create existing log: %v", err)
		}

		logger, err := NewAuditLogger(logPath)
		if err != nil {
			t.Fatalf("NewAuditLogger() error = %v", err)
		}
		logger.Log("s1", "open", "docs/a.txt", true, "")
		logger.Close()

		content := readLog(t, logPath)
		if !strings.HasPrefix(content, existing) {
			t.Error("Existing content should be preserved")
		}
		if !strings.Contains(content, "session:s1") {
			t.Error("New log entry should be appended")
		}
	})

	t.Run("fails when path is a directory", func(t *testing.T) {
		_, err := NewAuditLogger(t.TempDir())
		if err == nil {
			t.Fatal("NewAuditLogger() expected error for directory path")
		}
		if !strings.Contains(err.Error(), "could not open audit log") {
			t.Errorf("Error message should contain 'could not open audit log', got: %v", err)
		}
	})
}

func TestAuditLogger_LogFormat(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "audit.log")

	logger, err := NewAuditLogger(logPath)
	if err != nil {
		t.Fatalf("NewAuditLogger() error = %v", err)
	}
	logger.Log("sess123", "save", "docs/a.txt", true, "chars:42")
	logger.Log("sess123", "save", "docs/a.txt", false, "PERSIST_ERROR: could not save docs/a.txt")
	logger.Close()

	lines := strings.Split(strings.TrimSpace(readLog(t, logPath)), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log lines, got %d", len(lines))
	}

	// timestamp|session:ID|command|argument|status|message
	parts := strings.Split(lines[0], "|")
	if len(parts) != 6 {
		t.Fatalf("Log line should have 6 parts separated by |, got %d: %q", len(parts), lines[0])
	}
	if _, err := time.Parse(time.RFC3339, parts[0]); err != nil {
		t.Errorf("First part should be RFC3339 timestamp, got %q", parts[0])
	}
	want := []string{"session:sess123", "save", "docs/a.txt", "success", "chars:42"}
	for i, w := range want {
		if parts[i+1] != w {
			t.Errorf("part %d = %q, want %q", i+1, parts[i+1], w)
		}
	}

	if !strings.Contains(lines[1], "|failed|PERSIST_ERROR") {
		t.Errorf("Failed entry not recorded: %q", lines[1])
	}
}

func TestAuditLogger_Close(t *testing.T) {
	logger, err := NewAuditLogger(filepath.Join(t.TempDir(), "audit.log"))
	if err != nil {
		t.Fatalf("NewAuditLogger() error = %v", err)
	}

	if err := logger.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	// Logging after close is a no-op
	logger.Log("s", "open", "a.txt", true, "")

	var nilLogger *AuditLogger
	nilLogger.Log("s", "open", "a.txt", true, "")
	if err := nilLogger.Close(); err != nil {
		t.Errorf("Close() on nil logger = %v", err)
	}
}

func TestAuditLogger_Concurrent(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "audit.log")

	logger, err := NewAuditLogger(logPath)
	if err != nil {
		t.Fatalf("NewAuditLogger() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				logger.Log("session", "next", "", true, "")
			}
		}()
	}
	wg.Wait()
	logger.Close()

	lines := strings.Split(strings.TrimSpace(readLog(t, logPath)), "\n")
	if len(lines) != 100 {
		t.Errorf("Expected 100 log lines, got %d", len(lines))
	}
}
