package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileAdapter appends log entries to a file
type FileAdapter struct {
	name     string
	format   string
	filePath string
	file     *os.File
	mu       sync.Mutex
}

// NewFileAdapter creates a new file adapter, creating parent directories as
// needed
func NewFileAdapter(name, filePath, format string) (*FileAdapter, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file_path is required for file adapter")
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &FileAdapter{
		name:     name,
		format:   format,
		filePath: filePath,
		file:     file,
	}, nil
}

// Write writes a log entry to the file
func (a *FileAdapter) Write(entry *LogEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var output string
	var err error

	if a.format == "text" {
		output = FormatText(entry)
	} else {
		output, err = formatJSON(entry)
		if err != nil {
			return fmt.Errorf("failed to format log entry: %w", err)
		}
	}

	_, err = fmt.Fprintln(a.file, output)
	return err
}

// Close closes the underlying file
func (a *FileAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	return err
}

// Name returns the name of the adapter
func (a *FileAdapter) Name() string {
	return a.name
}
