// Package log provides logging for the crawler, built on top of the
// standard slog package.
//
// The TruncateHandler caps oversized attribute values before they reach the
// log stream. The crawler logs page fragments and extracted cell sequences
// at debug level while diagnosing parser misbehavior on irregular pages;
// truncation keeps those lines useful without flooding the terminal or
// log files with whole HTML documents.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
package log
