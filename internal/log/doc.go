// Package log builds the slog loggers used by atlasharvest.
//
// Every logger is wrapped in a ScrubHandler which:
//   - masks values of credential-bearing keys (cookie, authorization,
//     token, session) and values that look like bearer, basic or session
//     cookie credentials
//   - clips long string values, such as raw row markup attached to parse
//     errors, to DefaultMaxValueLength bytes
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Debug("fetcher configured", "cookie", "PHPSESSID=abc") // cookie=***REDACTED***
package log
