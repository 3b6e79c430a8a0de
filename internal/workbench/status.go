package workbench

import (
	"fmt"
	"strings"
)

// Status is the progress state of a feature.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusBlocked    Status = "blocked"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusNotStarted, StatusInProgress, StatusDone, StatusBlocked}

var statusLabels = map[Status]string{
	StatusNotStarted: "Not started",
	StatusInProgress: "In progress",
	StatusDone:       "Done",
	StatusBlocked:    "Blocked",
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the display label for the status.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Next returns the status following s in display order, wrapping around.
func (s Status) Next() Status {
	for i, st := range Statuses {
		if st == s {
			return Statuses[(i+1)%len(Statuses)]
		}
	}
	return StatusNotStarted
}

// ParseStatus accepts either the stored value ("in_progress") or the display
// label ("In progress"), case-insensitively.
func ParseStatus(s string) (Status, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, st := range Statuses {
		if needle == string(st) || needle == strings.ToLower(st.Label()) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want one of not_started, in_progress, done, blocked)", ErrInvalidStatus, s)
}
