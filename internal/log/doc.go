// Package log provides slog loggers that never write wiki credentials.
//
// SecureHandler wraps any slog.Handler and masks:
//   - login and edit tokens (lgtoken, csrftoken, the "<hex>+\" token shape)
//   - bot passwords and session cookies
//   - Authorization headers (bearer, basic, OAuth JWTs)
//
// SanitizeValues applies the same rules to url.Values so API request
// parameters can be logged in debug mode:
//
//	logger := log.New(os.Stderr, log.Options{Verbose: true})
//	logger.Debug("api request", "params", log.SanitizeValues(params).Encode())
package log
