// Package calendar models compliance deadlines: recurring obligations from a
// cron schedule plus one-off tasks, merged into a date-ordered event list.
//
// Dates are calendar days in UTC, formatted YYYY-MM-DD so they also compare
// correctly as strings.
package calendar

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// DateLayout is the wire and storage format of a calendar day.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned for a date that is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date")

// EventType classifies an event.
type EventType string

const (
	TypeDeadline   EventType = "deadline"
	TypeRenewal    EventType = "renewal"
	TypeFiling     EventType = "filing"
	TypeInspection EventType = "inspection"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case TypeDeadline, TypeRenewal, TypeFiling, TypeInspection:
		return true
	}
	return false
}

// Status of an event relative to today.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
)

// Event is one dated entry on the calendar.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Date        string    `json:"date"`
	Type        EventType `json:"type"`
	Status      Status    `json:"status"`
	Description string    `json:"description"`
	Priority    string    `json:"priority,omitempty"`
	Recurring   bool      `json:"recurring"`
}

// ParseDate parses a YYYY-MM-DD day as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDate returns the UTC calendar day of t.
func FormatDate(t time.Time) string { return t.UTC().Format(DateLayout) }

// StatusOn derives the status of an event due on date as seen on today.
func StatusOn(date string, completed bool, today string) Status {
	switch {
	case completed:
		return StatusCompleted
	case date < today:
		return StatusOverdue
	default:
		return StatusPending
	}
}

// Sort orders events by date, then title, then ID.
func Sort(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})
}

// DueIn describes how far date is from now in words: "today",
// "3 days from now", "2 weeks ago".
func DueIn(date string, now time.Time) string {
	d, err := ParseDate(date)
	if err != nil {
		return ""
	}
	today, _ := ParseDate(FormatDate(now))
	if d.Equal(today) {
		return "today"
	}
	return humanize.RelTime(d, today, "ago", "from now")
}
