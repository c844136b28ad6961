// Package services – CalendarService
//
// This file implements the compliance calendar: owner-scoped tasks persisted
// through TaskRepo, and a merged event view combining recurring obligations
// from the schedule with the owner's tasks.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/negga-dot/LaunchMate/internal/calendar"
	"github.com/negga-dot/LaunchMate/internal/domain"
	"github.com/negga-dot/LaunchMate/internal/repo"
)

// TaskRepo defines the repository contract required by CalendarService.
type TaskRepo interface {
	CreateTask(ctx context.Context, db *gorm.DB, t *domain.ComplianceTask) error
	GetTask(ctx context.Context, db *gorm.DB, id, ownerID string) (*domain.ComplianceTask, error)
	CountTasks(ctx context.Context, db *gorm.DB, ownerID string) (int64, error)
	ListTasksPage(ctx context.Context, db *gorm.DB, ownerID string, offset, limit int) ([]domain.ComplianceTask, error)
	ListTasksDueBetween(ctx context.Context, db *gorm.DB, ownerID, from, to string) ([]domain.ComplianceTask, error)
	ToggleTaskCompleted(ctx context.Context, db *gorm.DB, id, ownerID string) (*domain.ComplianceTask, error)
	DeleteTask(ctx context.Context, db *gorm.DB, id, ownerID string) error
	TasksStats(ctx context.Context, db *gorm.DB, ownerID string) (int64, *time.Time, error)
}

// NewTask is the input of AddTask.
type NewTask struct {
	Title       string
	Description string
	DueDate     string // YYYY-MM-DD
	Priority    string // high|medium|low, empty means medium
}

// UpcomingEvent is an event with a humanized distance to its date.
type UpcomingEvent struct {
	calendar.Event
	DueIn string `json:"due_in" example:"3 days from now"`
}

// CalendarService manages compliance tasks and the merged event view.
type CalendarService struct {
	DB       *gorm.DB
	Repo     TaskRepo
	Schedule *calendar.Schedule

	// MaxRangeDays caps the span of an Events query.
	MaxRangeDays int
	// TitleMaxLen caps stored titles by rune length.
	TitleMaxLen int

	now func() time.Time
}

// NewCalendarService constructs a CalendarService. A nil schedule uses the
// built-in obligations.
func NewCalendarService(db *gorm.DB, r TaskRepo, sched *calendar.Schedule) *CalendarService {
	if sched == nil {
		sched = calendar.DefaultSchedule()
	}
	return &CalendarService{
		DB:           db,
		Repo:         r,
		Schedule:     sched,
		MaxRangeDays: 366,
		TitleMaxLen:  255,
		now:          time.Now,
	}
}

// AddTask validates and stores a task for ownerID.
func (s *CalendarService) AddTask(ctx context.Context, ownerID string, in NewTask) (*domain.ComplianceTask, error) {
	ctx, span := s.start(ctx, "AddTask", ownerID)
	defer span.End()

	title := normalizeTitle(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	if s.TitleMaxLen > 0 && utf8.RuneCountInString(title) > s.TitleMaxLen {
		title = string([]rune(title)[:s.TitleMaxLen])
	}
	due, err := calendar.ParseDate(in.DueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: due date must be YYYY-MM-DD", ErrInvalidTask)
	}
	priority := strings.ToLower(strings.TrimSpace(in.Priority))
	switch priority {
	case "":
		priority = domain.PriorityMedium
	case domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow:
	default:
		return nil, fmt.Errorf("%w: priority must be high, medium or low", ErrInvalidTask)
	}

	t := &domain.ComplianceTask{
		OwnerID:     ownerID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		DueDate:     calendar.FormatDate(due),
		Priority:    priority,
	}
	if err := s.Repo.CreateTask(ctx, s.DB, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTasks returns a page of the owner's tasks and the total count.
func (s *CalendarService) ListTasks(ctx context.Context, ownerID string, page, pageSize int) ([]domain.ComplianceTask, int64, error) {
	ctx, span := s.start(ctx, "ListTasks", ownerID,
		attribute.Int("page", page), attribute.Int("page_size", pageSize))
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	total, err := s.Repo.CountTasks(ctx, s.DB, ownerID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.ComplianceTask{}, 0, nil
	}
	items, err := s.Repo.ListTasksPage(ctx, s.DB, ownerID, (page-1)*pageSize, pageSize)
	return items, total, err
}

// TasksVersion returns the task count and latest update time for ownerID,
// used to derive a weak ETag.
func (s *CalendarService) TasksVersion(ctx context.Context, ownerID string) (int64, *time.Time, error) {
	return s.Repo.TasksStats(ctx, s.DB, ownerID)
}

// ToggleTask flips the completion flag and returns the updated task.
func (s *CalendarService) ToggleTask(ctx context.Context, ownerID, id string) (*domain.ComplianceTask, error) {
	ctx, span := s.start(ctx, "ToggleTask", ownerID, attribute.String("task.id", id))
	defer span.End()

	t, err := s.Repo.ToggleTaskCompleted(ctx, s.DB, id, ownerID)
	if err != nil {
		return nil, mapTaskErr(err)
	}
	return t, nil
}

// DeleteTask removes an owner's task.
func (s *CalendarService) DeleteTask(ctx context.Context, ownerID, id string) error {
	ctx, span := s.start(ctx, "DeleteTask", ownerID, attribute.String("task.id", id))
	defer span.End()

	return mapTaskErr(s.Repo.DeleteTask(ctx, s.DB, id, ownerID))
}

// Events merges schedule occurrences and the owner's tasks due in
// [from, to]. Blank from defaults to the first day of the current month;
// blank to defaults to the last day of from's month.
func (s *CalendarService) Events(ctx context.Context, ownerID, from, to string) ([]calendar.Event, error) {
	ctx, span := s.start(ctx, "Events", ownerID,
		attribute.String("range.from", from), attribute.String("range.to", to))
	defer span.End()

	start, end, err := s.resolveRange(from, to)
	if err != nil {
		return nil, err
	}
	return s.events(ctx, ownerID, start, end)
}

// Upcoming returns the next n open events from today on (at most one year
// ahead), each with a humanized due text.
func (s *CalendarService) Upcoming(ctx context.Context, ownerID string, n int) ([]UpcomingEvent, error) {
	ctx, span := s.start(ctx, "Upcoming", ownerID, attribute.Int("limit", n))
	defer span.End()

	if n <= 0 {
		n = 5
	}
	now := s.clock()
	today, _ := calendar.ParseDate(calendar.FormatDate(now))
	events, err := s.events(ctx, ownerID, today, today.AddDate(1, 0, 0))
	if err != nil {
		return nil, err
	}

	open := lo.Filter(events, func(e calendar.Event, _ int) bool {
		return e.Status != calendar.StatusCompleted
	})
	if len(open) > n {
		open = open[:n]
	}
	out := lo.Map(open, func(e calendar.Event, _ int) UpcomingEvent {
		return UpcomingEvent{Event: e, DueIn: calendar.DueIn(e.Date, now)}
	})
	return out, nil
}

func (s *CalendarService) events(ctx context.Context, ownerID string, start, end time.Time) ([]calendar.Event, error) {
	today := calendar.FormatDate(s.clock())

	out, err := s.Schedule.Occurrences(start, end, today)
	if err != nil {
		return nil, err
	}
	tasks, err := s.Repo.ListTasksDueBetween(ctx, s.DB, ownerID, calendar.FormatDate(start), calendar.FormatDate(end))
	if err != nil {
		return nil, err
	}
	out = append(out, lo.Map(tasks, func(t domain.ComplianceTask, _ int) calendar.Event {
		return calendar.Event{
			ID:          t.ID,
			Title:       t.Title,
			Date:        t.DueDate,
			Type:        calendar.TypeDeadline,
			Status:      calendar.StatusOn(t.DueDate, t.Completed, today),
			Description: t.Description,
			Priority:    t.Priority,
		}
	})...)
	calendar.Sort(out)
	return out, nil
}

func (s *CalendarService) resolveRange(from, to string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if strings.TrimSpace(from) == "" {
		y, m, _ := s.clock().UTC().Date()
		start = time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	} else if start, err = calendar.ParseDate(from); err != nil {
		return start, end, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}

	if strings.TrimSpace(to) == "" {
		end = start.AddDate(0, 1, -start.Day())
	} else if end, err = calendar.ParseDate(to); err != nil {
		return start, end, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}

	if end.Before(start) {
		return start, end, fmt.Errorf("%w: to is before from", ErrInvalidRange)
	}
	if s.MaxRangeDays > 0 && end.Sub(start) > time.Duration(s.MaxRangeDays)*24*time.Hour {
		return start, end, fmt.Errorf("%w: span exceeds %d days", ErrInvalidRange, s.MaxRangeDays)
	}
	return start, end, nil
}

func (s *CalendarService) start(ctx context.Context, op, ownerID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("owner.id", ownerID))
	return otel.Tracer("services/CalendarService").Start(ctx, op, trace.WithAttributes(attrs...))
}

func (s *CalendarService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func mapTaskErr(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrTaskNotFound
	}
	return err
}
