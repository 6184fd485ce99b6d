// Package database stores Citron/Spam data locally in SQLite
// (modernc.org/sqlite, no cgo).
//
// FeedbackDB keeps three tables:
//   - feedbacks: every synced feedback entry, unique per wiki, report date and hash
//   - ignored_hostnames: hostnames judged legitimate, unique per wiki
//   - report_snapshots: the last fetched copy of each report page, for offline viewing
package database
