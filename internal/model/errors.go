package model

import "errors"

var (
	// ErrInvalidStatus is returned when a feedback status cannot be parsed.
	ErrInvalidStatus = errors.New("invalid feedback status")

	// ErrDanglingRevision is returned by Report.Validate when a hostname
	// record references a revision ID that is missing from revisions.
	ErrDanglingRevision = errors.New("hostname references unknown revision")
)
