// Package logger provides a structured logging interface for xkcd-fetch.
//
// It wraps zerolog behind the Logger interface so components receive a logger
// through their constructors and tests can substitute a TestLogger.
//
// Console output always goes to stderr; stdout is reserved for comic records.
// Setting logging.file redirects logs to an append-only file instead.
//
//	log, err := logger.New(&cfg.Logging)
//	if err != nil {
//	    return err
//	}
//	log.WithField("number", 614).Debug("Cache hit")
package logger
