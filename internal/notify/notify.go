// Package notify holds the error notifiers handed to search controllers.
package notify

import (
	"errors"
	"sync"

	"audit-log-search/internal/client"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Message normalises an error into the text shown to a user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// Logger writes every notified error to a zerolog logger.
type Logger struct {
	logger zerolog.Logger
}

func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger}
}

// NewGlobalLogger uses the global zerolog logger.
func NewGlobalLogger() *Logger {
	return &Logger{logger: log.Logger}
}

func (l *Logger) NotifyError(err error) {
	l.logger.Error().Err(err).Str("detail", Message(err)).Msg("Audit log search error")
}

// Recorder keeps the last notified error, for views that poll.
type Recorder struct {
	mu   sync.Mutex
	last error
}

func (r *Recorder) NotifyError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = err
}

func (r *Recorder) Last() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Clear drops the recorded error.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = nil
}
