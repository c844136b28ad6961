package calendar

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/adhocore/gronx"
	"gopkg.in/yaml.v3"
)

//go:embed schedule.yaml
var defaultScheduleYAML []byte

// ErrInvalidSchedule wraps every schedule validation failure.
var ErrInvalidSchedule = errors.New("invalid compliance schedule")

// maxOccurrences caps how many ticks one obligation may yield per query.
const maxOccurrences = 1000

// Obligation is a recurring compliance duty.
type Obligation struct {
	ID          string    `yaml:"id"`
	Title       string    `yaml:"title"`
	Type        EventType `yaml:"type"`
	Cron        string    `yaml:"cron"`
	Description string    `yaml:"description"`
}

// Schedule is an immutable set of obligations. Safe for concurrent use.
type Schedule struct {
	obligations []Obligation
}

// DefaultSchedule returns the built-in obligations.
func DefaultSchedule() *Schedule {
	s, err := ParseSchedule(defaultScheduleYAML)
	if err != nil {
		panic(fmt.Sprintf("calendar: embedded schedule: %v", err))
	}
	return s
}

// LoadSchedule reads a schedule from a YAML file; an empty path yields the
// built-in one.
func LoadSchedule(path string) (*Schedule, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultSchedule(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schedule %q: %w", path, err)
	}
	return ParseSchedule(data)
}

// ParseSchedule decodes and validates a YAML schedule.
func ParseSchedule(data []byte) (*Schedule, error) {
	var f struct {
		Obligations []Obligation `yaml:"obligations"`
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	return NewSchedule(f.Obligations)
}

// NewSchedule validates obligations. An empty schedule is allowed.
func NewSchedule(obligations []Obligation) (*Schedule, error) {
	seen := make(map[string]struct{}, len(obligations))
	out := make([]Obligation, 0, len(obligations))
	for i, o := range obligations {
		o.ID = strings.TrimSpace(o.ID)
		o.Title = strings.TrimSpace(o.Title)
		o.Cron = strings.TrimSpace(o.Cron)
		switch {
		case o.ID == "":
			return nil, fmt.Errorf("%w: obligation #%d has no id", ErrInvalidSchedule, i+1)
		case o.Title == "":
			return nil, fmt.Errorf("%w: obligation %q has no title", ErrInvalidSchedule, o.ID)
		case !o.Type.Valid():
			return nil, fmt.Errorf("%w: obligation %q has unknown type %q", ErrInvalidSchedule, o.ID, o.Type)
		case !gronx.IsValid(o.Cron):
			return nil, fmt.Errorf("%w: obligation %q has invalid cron %q", ErrInvalidSchedule, o.ID, o.Cron)
		}
		if _, dup := seen[o.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate obligation id %q", ErrInvalidSchedule, o.ID)
		}
		seen[o.ID] = struct{}{}
		out = append(out, o)
	}
	return &Schedule{obligations: out}, nil
}

// Obligations returns a copy of the schedule.
func (s *Schedule) Obligations() []Obligation {
	return append([]Obligation(nil), s.obligations...)
}

// Occurrences expands every obligation into the events due on days in
// [from, to] (inclusive, UTC days). Status is judged against today.
// The result is sorted.
func (s *Schedule) Occurrences(from, to time.Time, today string) ([]Event, error) {
	start := dayStart(from)
	end := dayStart(to).Add(24 * time.Hour)
	if end.Before(start) {
		return nil, nil
	}

	var out []Event
	for _, o := range s.obligations {
		ref, incl := start, true
		for n := 0; n < maxOccurrences; n++ {
			next, err := gronx.NextTickAfter(o.Cron, ref, incl)
			if err != nil {
				return nil, fmt.Errorf("obligation %q: %w", o.ID, err)
			}
			if !next.Before(end) {
				break
			}
			date := FormatDate(next)
			out = append(out, Event{
				ID:          o.ID + ":" + date,
				Title:       o.Title,
				Date:        date,
				Type:        o.Type,
				Status:      StatusOn(date, false, today),
				Description: o.Description,
				Recurring:   true,
			})
			ref, incl = next, false
		}
	}
	Sort(out)
	return out, nil
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
