// Package report renders Citron/Spam reports.
//
// Writers:
//   - SimpleWriter: plain text for the terminal
//   - JSONWriter: the report document itself, compact or indented
//   - MarkdownWriter: GitHub flavored Markdown with tables and alerts
//
// MultiWriter fans a report out to several writers, e.g. stdout and a file.
package report
