package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"
)

// DefaultReportPrefix is the title prefix of daily report pages.
const DefaultReportPrefix = "Project:Citron/Spam/"

// SyncTimeLayout is the layout of updatedAt written by the feedback sync.
const SyncTimeLayout = "2006-01-02T15:04:05Z"

// Report is the Citron/Spam report document stored on a wiki page.
//
// A report is produced by a separate reporting process. This tool only reads
// it, appends or updates feedback entries, and writes the whole document back.
type Report struct {
	// Version identifies the schema shape of the document.
	Version int `json:"version"`

	// UpdatedAt is the time the document was last rewritten by a process.
	UpdatedAt string `json:"updatedAt"`

	// Hostnames are the reported hostnames with their spam score.
	Hostnames []Hostname `json:"hostnames"`

	// Revisions maps revision IDs referenced by Hostnames to page and user.
	Revisions Revisions `json:"revisions"`

	// Feedbacks are the verdicts submitted by users.
	Feedbacks []Feedback `json:"feedbacks"`
}

// Hostname is a single reported hostname.
type Hostname struct {
	Hostname    string  `json:"hostname"`
	Time        string  `json:"time"`
	Score       float64 `json:"score"`
	RevisionIDs []int64 `json:"revisionIds"`
}

// Revision identifies the page and the user of a revision adding a link.
type Revision struct {
	Page string `json:"page"`
	User string `json:"user"`
}

// Feedback is a verdict of one user on one hostname.
type Feedback struct {
	CreatedAt string         `json:"createdAt"`
	CreatedBy int64          `json:"createdBy"`
	Hostname  string         `json:"hostname"`
	Status    FeedbackStatus `json:"status"`
	Hash      string         `json:"hash"`
	User      string         `json:"user"`
	Synced    bool           `json:"synced"`
}

// Revisions maps revision IDs to revision details.
// It marshals with keys in ascending numeric order.
type Revisions map[int64]Revision

// MarshalJSON implements json.Marshaler.
func (r Revisions) MarshalJSON() ([]byte, error) {
	ids := make([]int64, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		value, err := json.Marshal(r[id])
		if err != nil {
			return nil, err
		}
		buf.WriteString(strconv.Quote(strconv.FormatInt(id, 10)))
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DefaultReport returns the empty report used when a page has no content yet.
func DefaultReport() *Report {
	return &Report{
		Version:   0,
		UpdatedAt: "2025-01-01T00:00:00.000Z",
		Hostnames: []Hostname{},
		Revisions: Revisions{},
		Feedbacks: []Feedback{},
	}
}

// ReportTitle returns the title of the report page for the given day.
// An empty prefix means DefaultReportPrefix.
func ReportTitle(prefix string, day time.Time) string {
	if prefix == "" {
		prefix = DefaultReportPrefix
	}
	return prefix + day.Format(time.DateOnly) + ".json"
}

// ParseReport decodes report JSON. Missing collections are replaced by empty
// ones so callers can append without nil checks.
func ParseReport(content []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(content, &r); err != nil {
		return nil, err
	}
	r.normalize()
	return &r, nil
}

func (r *Report) normalize() {
	if r.Hostnames == nil {
		r.Hostnames = []Hostname{}
	}
	if r.Revisions == nil {
		r.Revisions = Revisions{}
	}
	if r.Feedbacks == nil {
		r.Feedbacks = []Feedback{}
	}
}

// Clone returns a deep copy of the report.
func (r *Report) Clone() *Report {
	c := &Report{
		Version:   r.Version,
		UpdatedAt: r.UpdatedAt,
		Hostnames: make([]Hostname, len(r.Hostnames)),
		Revisions: make(Revisions, len(r.Revisions)),
		Feedbacks: slices.Clone(r.Feedbacks),
	}
	for i, h := range r.Hostnames {
		h.RevisionIDs = slices.Clone(h.RevisionIDs)
		c.Hostnames[i] = h
	}
	for id, rev := range r.Revisions {
		c.Revisions[id] = rev
	}
	if c.Feedbacks == nil {
		c.Feedbacks = []Feedback{}
	}
	return c
}

// Hostname returns the record for name, or nil.
func (r *Report) Hostname(name string) *Hostname {
	for i := range r.Hostnames {
		if r.Hostnames[i].Hostname == name {
			return &r.Hostnames[i]
		}
	}
	return nil
}

// DanglingRevisionIDs returns revision IDs referenced by hostname records
// that are not present in Revisions, in order of first reference.
func (r *Report) DanglingRevisionIDs() []int64 {
	var missing []int64
	seen := make(map[int64]bool)
	for _, h := range r.Hostnames {
		for _, id := range h.RevisionIDs {
			if _, ok := r.Revisions[id]; ok || seen[id] {
				continue
			}
			seen[id] = true
			missing = append(missing, id)
		}
	}
	return missing
}

// Validate checks that every referenced revision exists.
func (r *Report) Validate() error {
	if missing := r.DanglingRevisionIDs(); len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrDanglingRevision, missing)
	}
	return nil
}

// UpsertFeedback records f. An unsynced entry of the same user for the same
// hostname is replaced; otherwise f is appended. It reports whether f was
// appended.
func (r *Report) UpsertFeedback(f Feedback) bool {
	for i, existing := range r.Feedbacks {
		if existing.CreatedBy == f.CreatedBy && existing.Hostname == f.Hostname && !existing.Synced {
			r.Feedbacks[i] = f
			return false
		}
	}
	r.Feedbacks = append(r.Feedbacks, f)
	return true
}

// FeedbackFor returns the latest status given by userID for each hostname.
func (r *Report) FeedbackFor(userID int64) map[string]FeedbackStatus {
	out := make(map[string]FeedbackStatus)
	for _, f := range r.Feedbacks {
		if f.CreatedBy == userID {
			out[f.Hostname] = f.Status
		}
	}
	return out
}

// UnsyncedCount returns the number of feedback entries not yet synced.
func (r *Report) UnsyncedCount() int {
	n := 0
	for _, f := range r.Feedbacks {
		if !f.Synced {
			n++
		}
	}
	return n
}

// MarkSynced flags every feedback entry as synced and sets UpdatedAt.
func (r *Report) MarkSynced(updatedAt time.Time) {
	for i := range r.Feedbacks {
		r.Feedbacks[i].Synced = true
	}
	r.UpdatedAt = updatedAt.UTC().Format(SyncTimeLayout)
}

// IgnoredHostnames returns hostnames that received at least one GOOD verdict
// and no BAD verdict, in order of first feedback.
func (r *Report) IgnoredHostnames() []string {
	statuses := make(map[string]map[FeedbackStatus]bool)
	var order []string
	for _, f := range r.Feedbacks {
		if statuses[f.Hostname] == nil {
			statuses[f.Hostname] = make(map[FeedbackStatus]bool)
			order = append(order, f.Hostname)
		}
		statuses[f.Hostname][f.Status] = true
	}

	var ignored []string
	for _, hostname := range order {
		s := statuses[hostname]
		if s[FeedbackGood] && !s[FeedbackBad] {
			ignored = append(ignored, hostname)
		}
	}
	return ignored
}
