// Package pipeline sequences the phases of a full catalog build: the
// crawl traversal, diagram image download, and the post-crawl repair
// passes. Each phase is a Step; the Pipeline runs them in order with
// structured logging and optional continue-on-error semantics.
package pipeline
