package database

import "errors"

// ErrSnapshotNotFound is returned when no snapshot exists for a report page.
var ErrSnapshotNotFound = errors.New("report snapshot not found")
