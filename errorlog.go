package dbmove

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/arikos/dbmove/dblog"
)

// errorLogRelativePath is where the append-only critical-failure audit trail lives,
// per spec §4.8/§6.4.
const errorLogRelativePath = "logs/migration-error.log"

// ErrorLogSink appends a single-line timestamp, the formatted message, and
// a "---" separator to <cwd>/logs/migration-error.log for every critical
// migration failure. It is a best-effort audit trail, not part of error
// propagation: a write failure here must never mask the original migration
// error, so Append only logs its own failures through logger.
type ErrorLogSink struct {
	logger *dblog.Logger
}

// NewErrorLogSink returns a sink that logs its own write failures to
// logger.
func NewErrorLogSink(logger *dblog.Logger) *ErrorLogSink {
	return &ErrorLogSink{logger: logger}
}

// Append writes message to the error log file, creating the logs/
// directory if needed. Failures are logged but swallowed — the caller
// already has the real error to return.
func (s *ErrorLogSink) Append(message string) {
	dir := filepath.Dir(errorLogRelativePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logFailure(err)
		return
	}

	f, err := os.OpenFile(errorLogRelativePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		s.logFailure(err)
		return
	}
	defer f.Close()

	line := fmt.Sprintf("%s %s\n---\n", time.Now().UTC().Format("2006-01-02 15:04:05"), message)
	if _, err := f.WriteString(line); err != nil {
		s.logFailure(err)
	}
}

func (s *ErrorLogSink) logFailure(err error) {
	if s.logger != nil {
		s.logger.Error(fmt.Sprintf("failed to write error log: %v", err))
	}
}
