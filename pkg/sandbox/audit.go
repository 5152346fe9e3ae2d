package sandbox

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditLogger appends one pipe-separated line per editor operation
type AuditLogger struct {
	mu     sync.Mutex
	logger *log.Logger
	file   *os.File
}

// NewAuditLogger opens (or creates) the audit log at logPath
func NewAuditLogger(logPath string) (*AuditLogger, error) {
	if dir := filepath.Dir(logPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("could not open audit log: %w", err)
		}
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("could not open audit log: %w", err)
	}

	return &AuditLogger{
		logger: log.New(file, "", 0),
		file:   file,
	}, nil
}

// Log writes an audit log entry
func (a *AuditLogger) Log(sessionID, command, argument string, success bool, errorMsg string) {
	if a == nil || a.logger == nil {
		return
	}

	status := "success"
	if !success {
		status = "failed"
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.logger.Printf("%s|session:%s|%s|%s|%s|%s",
		time.Now().Format(time.RFC3339),
		sessionID,
		command,
		argument,
		status,
		errorMsg,
	)
}

// Close closes the audit log file
func (a *AuditLogger) Close() error {
	if a == nil || a.file == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	err := a.file.Close()
	a.file = nil
	a.logger = nil
	return err
}
