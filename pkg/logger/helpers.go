package logger

import (
	"net/http"
	"time"
)

// LogRequest logs a completed HTTP request at a level matching its status.
// A nil logger falls back to the global one.
func LogRequest(l Logger, method, url string, statusCode int, duration time.Duration) {
	if l == nil {
		l = GetLogger()
	}
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": float64(duration.Microseconds()) / 1000,
	}

	switch {
	case statusCode >= http.StatusInternalServerError:
		l.ErrorWithFields("HTTP request server error", fields)
	case statusCode == http.StatusNotFound:
		l.DebugWithFields("HTTP request not found", fields)
	case statusCode >= http.StatusBadRequest:
		l.WarnWithFields("HTTP request client error", fields)
	default:
		l.DebugWithFields("HTTP request completed", fields)
	}
}

// LogRetry logs a retried network operation.
func LogRetry(l Logger, operation string, attempt int, delay time.Duration, err error) {
	if l == nil {
		l = GetLogger()
	}
	l.WithError(err).WarnWithFields("Retrying network operation", map[string]interface{}{
		"operation": operation,
		"attempt":   attempt,
		"delay":     delay,
	})
}

// LogComponentStart logs when a component starts
func LogComponentStart(l Logger, component string, config map[string]interface{}) {
	if l == nil {
		l = GetLogger()
	}
	l = l.WithField("component", component)
	if len(config) > 0 {
		l = l.WithFields(config)
	}
	l.Debug("Component started")
}
