package spam

import "errors"

var (
	// ErrPageMissing is returned when the report page does not exist.
	// Its message is the literal "missing".
	ErrPageMissing = errors.New("missing")

	// ErrEmptyPage is returned when the page exists but has no revisions.
	ErrEmptyPage = errors.New("report page has no revisions")

	// ErrMalformedReport is returned when the page content is not a report.
	ErrMalformedReport = errors.New("malformed report")

	// ErrAnonymousUser is returned when feedback is submitted without login.
	ErrAnonymousUser = errors.New("feedback requires a logged-in user")

	// ErrUnknownHostname is returned for feedback on a hostname that is not
	// in the report.
	ErrUnknownHostname = errors.New("hostname not in report")

	// ErrNoDecisions is returned when SubmitFeedback gets no decisions.
	ErrNoDecisions = errors.New("no feedback to submit")
)
