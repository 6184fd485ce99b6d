// Package main provides the entry point for the citronspam CLI.
//
// citronspam reviews the daily Citron/Spam reports published on
// Wikimedia wikis. It renders a report, records GOOD/BAD feedback on the
// reported hostnames and syncs that feedback back into the report.
//
// Usage:
//
//	citronspam show --date 2025-03-01
//	citronspam feedback spam.example bad
//	citronspam review
//	citronspam sync
//
// See --help for all available options.
package main

// main is the entry point for citronspam.
func main() {
	Execute()
}
