package model

import "fmt"

// FeedbackStatus is the verdict a user gives for a reported hostname.
type FeedbackStatus int

const (
	// FeedbackGood marks a hostname as legitimate (not spam).
	FeedbackGood FeedbackStatus = 0

	// FeedbackBad confirms a hostname as spam.
	FeedbackBad FeedbackStatus = 1
)

// String returns the lowercase name of the status.
func (s FeedbackStatus) String() string {
	switch s {
	case FeedbackGood:
		return "good"
	case FeedbackBad:
		return "bad"
	default:
		return "unknown"
	}
}

// ParseFeedbackStatus parses "good" or "bad" (also "0" and "1").
func ParseFeedbackStatus(s string) (FeedbackStatus, error) {
	switch s {
	case "good", "0":
		return FeedbackGood, nil
	case "bad", "1":
		return FeedbackBad, nil
	default:
		return 0, fmt.Errorf("%w: %q (want good or bad)", ErrInvalidStatus, s)
	}
}
