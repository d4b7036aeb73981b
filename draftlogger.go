package testgen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DraftLogger handles logging of all LLM interactions during a drafting run
type DraftLogger struct {
	file  *os.File
	mu    sync.Mutex
	runID string
}

// NewDraftLogger creates a new draft logger for a specific run
func NewDraftLogger(runID string, req DraftRequest) (*DraftLogger, error) {
	// Ensure log directory exists
	if err := os.MkdirAll("log", 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Create log file
	filename := filepath.Join("log", fmt.Sprintf("%s.log", runID))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := &DraftLogger{
		file:  file,
		runID: runID,
	}

	// Write header with run parameters
	logger.Logf("=== Item Drafting Log ===\n")
	logger.Logf("Run ID: %s\n", runID)
	logger.Logf("Topic: %s\n", req.Topic)
	logger.Logf("Number of Items: %d\n", req.NumItems)
	logger.Logf("Tags: %s\n", strings.Join(req.Tags, ", "))
	logger.Logf("Difficulty: %s\n", req.Difficulty)
	if req.SourceMaterial != "" {
		logger.Logf("Source Material Length: %d characters\n", len(req.SourceMaterial))
	}
	logger.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	logger.Logf("========================\n\n")

	return logger, nil
}

// Logf writes a formatted log entry with timestamp
func (dl *DraftLogger) Logf(format string, args ...interface{}) {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	timestamp := time.Now().Format("15:04:05.000")
	message := fmt.Sprintf(format, args...)

	// Write to file
	fmt.Fprintf(dl.file, "[%s] %s", timestamp, message)

	// Also flush to ensure it's written immediately
	dl.file.Sync()
}

// LogLLMRequest logs an LLM request
func (dl *DraftLogger) LogLLMRequest(module, prompt string) {
	dl.Logf("=== LLM REQUEST (%s) ===\n", module)
	dl.Logf("Prompt:\n%s\n", prompt)
	dl.Logf("=====================\n\n")
}

// LogLLMResponse logs an LLM response
func (dl *DraftLogger) LogLLMResponse(module, response string) {
	dl.Logf("=== LLM RESPONSE (%s) ===\n", module)
	dl.Logf("Response:\n%s\n", response)
	dl.Logf("======================\n\n")
}

// LogItemResult logs the result of processing a drafted item
func (dl *DraftLogger) LogItemResult(itemID, action, reason string) {
	dl.Logf("Item %s: %s - %s\n", itemID, action, reason)
}

// LogDedupResult logs the result of deduplication
func (dl *DraftLogger) LogDedupResult(itemID string, isDuplicate bool, reason, duplicateID string) {
	if isDuplicate {
		dl.Logf("Item %s: DUPLICATE of %s - %s\n", itemID, duplicateID, reason)
	} else {
		dl.Logf("Item %s: UNIQUE - %s\n", itemID, reason)
	}
}

// Close closes the log file
func (dl *DraftLogger) Close() error {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	if dl.file != nil {
		fmt.Fprintf(dl.file, "[%s] === Item Drafting Complete ===\n", time.Now().Format("15:04:05.000"))
		return dl.file.Close()
	}
	return nil
}
