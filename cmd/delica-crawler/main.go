// Package main provides the entry point for the delica-crawler CLI.
//
// delica-crawler builds a local SQLite parts catalog for the Mitsubishi
// Delica Space Gear by crawling the online EPC mirror. The resulting
// database is browsed with the companion delica-tui application.
//
// Usage:
//
//	delica-crawler crawl
//	delica-crawler search "front bumper"
//
// See --help for all available options.
package main

// main is the entry point for delica-crawler.
func main() {
	Execute()
}
