package services

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/negga-dot/LaunchMate/internal/calendar"
	"github.com/negga-dot/LaunchMate/internal/domain"
	"github.com/negga-dot/LaunchMate/internal/repo"
)

// ----- Fake repo -----

type fakeTaskRepo struct {
	tasks   map[string]*domain.ComplianceTask
	seq     int
	listErr error
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[string]*domain.ComplianceTask{}}
}

func (r *fakeTaskRepo) CreateTask(_ context.Context, _ *gorm.DB, t *domain.ComplianceTask) error {
	r.seq++
	t.ID = string(rune('a' + r.seq - 1))
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) GetTask(_ context.Context, _ *gorm.DB, id, owner string) (*domain.ComplianceTask, error) {
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != owner {
		return nil, repo.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTaskRepo) owned(owner string) []domain.ComplianceTask {
	var out []domain.ComplianceTask
	for _, t := range r.tasks {
		if t.OwnerID == owner {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate < out[j].DueDate })
	return out
}

func (r *fakeTaskRepo) CountTasks(_ context.Context, _ *gorm.DB, owner string) (int64, error) {
	return int64(len(r.owned(owner))), nil
}

func (r *fakeTaskRepo) ListTasksPage(_ context.Context, _ *gorm.DB, owner string, offset, limit int) ([]domain.ComplianceTask, error) {
	all := r.owned(owner)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *fakeTaskRepo) ListTasksDueBetween(_ context.Context, _ *gorm.DB, owner, from, to string) ([]domain.ComplianceTask, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []domain.ComplianceTask
	for _, t := range r.owned(owner) {
		if t.DueDate >= from && t.DueDate <= to {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) ToggleTaskCompleted(_ context.Context, _ *gorm.DB, id, owner string) (*domain.ComplianceTask, error) {
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != owner {
		return nil, repo.ErrNotFound
	}
	t.Completed = !t.Completed
	cp := *t
	return &cp, nil
}

func (r *fakeTaskRepo) DeleteTask(_ context.Context, _ *gorm.DB, id, owner string) error {
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != owner {
		return repo.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) TasksStats(_ context.Context, _ *gorm.DB, owner string) (int64, *time.Time, error) {
	return int64(len(r.owned(owner))), nil, nil
}

func newCalendarSvc(r TaskRepo, today string) *CalendarService {
	svc := NewCalendarService(nil, r, nil)
	d, _ := calendar.ParseDate(today)
	svc.now = func() time.Time { return d.Add(9 * time.Hour) }
	return svc
}

// ----- Tests -----

func TestCalendar_AddTask_ValidationAndDefaults(t *testing.T) {
	svc := newCalendarSvc(newFakeTaskRepo(), "2025-01-10")
	ctx := context.Background()

	task, err := svc.AddTask(ctx, "u1", NewTask{Title: "  File   TDS  ", DueDate: "2025-01-07"})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if task.Title != "File TDS" || task.Priority != domain.PriorityMedium || task.OwnerID != "u1" {
		t.Fatalf("unexpected task: %+v", task)
	}

	bad := []NewTask{
		{Title: " ", DueDate: "2025-01-07"},
		{Title: "x", DueDate: "07/01/2025"},
		{Title: "x", DueDate: ""},
		{Title: "x", DueDate: "2025-01-07", Priority: "urgent"},
	}
	for _, in := range bad {
		if _, err := svc.AddTask(ctx, "u1", in); !errors.Is(err, ErrInvalidTask) {
			t.Fatalf("%+v: expected ErrInvalidTask, got %v", in, err)
		}
	}
}

func TestCalendar_ToggleAndDelete_OwnerScoped(t *testing.T) {
	r := newFakeTaskRepo()
	svc := newCalendarSvc(r, "2025-01-10")
	ctx := context.Background()

	task, _ := svc.AddTask(ctx, "u1", NewTask{Title: "Renew FSSAI", DueDate: "2025-02-01", Priority: "HIGH"})

	if _, err := svc.ToggleTask(ctx, "u2", task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound for foreign owner, got %v", err)
	}
	got, err := svc.ToggleTask(ctx, "u1", task.ID)
	if err != nil || !got.Completed {
		t.Fatalf("toggle on: %+v %v", got, err)
	}
	got, _ = svc.ToggleTask(ctx, "u1", task.ID)
	if got.Completed {
		t.Fatalf("second toggle should clear completion")
	}

	if err := svc.DeleteTask(ctx, "u2", task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	if err := svc.DeleteTask(ctx, "u1", task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if err := svc.DeleteTask(ctx, "u1", task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound after delete, got %v", err)
	}
}

func TestCalendar_ListTasks_Pagination(t *testing.T) {
	svc := newCalendarSvc(newFakeTaskRepo(), "2025-01-10")
	ctx := context.Background()
	for _, d := range []string{"2025-03-01", "2025-01-01", "2025-02-01"} {
		_, _ = svc.AddTask(ctx, "u1", NewTask{Title: "t " + d, DueDate: d})
	}

	items, total, err := svc.ListTasks(ctx, "u1", 2, 2)
	if err != nil || total != 3 || len(items) != 1 || items[0].DueDate != "2025-03-01" {
		t.Fatalf("page 2 = %+v total=%d err=%v", items, total, err)
	}

	items, total, err = svc.ListTasks(ctx, "nobody", 0, 0)
	if err != nil || total != 0 || items == nil || len(items) != 0 {
		t.Fatalf("empty owner = %+v total=%d err=%v", items, total, err)
	}
}

func TestCalendar_Events_MergesScheduleAndTasks(t *testing.T) {
	r := newFakeTaskRepo()
	svc := newCalendarSvc(r, "2025-01-18")
	ctx := context.Background()

	done, _ := svc.AddTask(ctx, "u1", NewTask{Title: "Board meeting minutes", DueDate: "2025-01-10"})
	_, _ = svc.ToggleTask(ctx, "u1", done.ID)
	_, _ = svc.AddTask(ctx, "u1", NewTask{Title: "Another GST note", DueDate: "2025-01-20", Priority: "low"})
	_, _ = svc.AddTask(ctx, "u2", NewTask{Title: "Not mine", DueDate: "2025-01-20"})

	events, err := svc.Events(ctx, "u1", "2025-01-01", "2025-01-31")
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	var got []string
	for _, e := range events {
		got = append(got, e.Date+" "+e.Title+" "+string(e.Status))
	}
	want := []string{
		"2025-01-10 Board meeting minutes completed",
		"2025-01-15 Fire Safety Inspection overdue",
		"2025-01-20 Another GST note pending",
		"2025-01-20 GST Return Filing pending",
		"2025-01-25 Trade License Renewal pending",
	}
	if len(got) != len(want) {
		t.Fatalf("events = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d = %q, want %q", i, got[i], want[i])
		}
	}
	if events[2].Type != calendar.TypeDeadline || events[2].Priority != "low" {
		t.Fatalf("task event should be a deadline with priority: %+v", events[2])
	}
}

func TestCalendar_Events_DefaultRangeIsCurrentMonth(t *testing.T) {
	svc := newCalendarSvc(newFakeTaskRepo(), "2025-02-14")
	events, err := svc.Events(context.Background(), "u1", "", "")
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 1 || events[0].Date != "2025-02-20" {
		t.Fatalf("expected only February GST filing, got %+v", events)
	}
}

func TestCalendar_Events_InvalidRange(t *testing.T) {
	svc := newCalendarSvc(newFakeTaskRepo(), "2025-01-10")
	ctx := context.Background()

	for _, rng := range [][2]string{
		{"2025-02-01", "2025-01-01"},
		{"bad", ""},
		{"2025-01-01", "nope"},
		{"2024-01-01", "2025-06-01"},
	} {
		if _, err := svc.Events(ctx, "u1", rng[0], rng[1]); !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("%v: expected ErrInvalidRange, got %v", rng, err)
		}
	}
}

func TestCalendar_Events_RepoError(t *testing.T) {
	r := newFakeTaskRepo()
	r.listErr = errors.New("db down")
	if _, err := newCalendarSvc(r, "2025-01-10").Events(context.Background(), "u1", "", ""); err == nil {
		t.Fatalf("expected repo error to surface")
	}
}

func TestCalendar_Upcoming(t *testing.T) {
	r := newFakeTaskRepo()
	svc := newCalendarSvc(r, "2025-01-18")
	ctx := context.Background()

	_, _ = svc.AddTask(ctx, "u1", NewTask{Title: "Today thing", DueDate: "2025-01-18"})
	old, _ := svc.AddTask(ctx, "u1", NewTask{Title: "Done soon", DueDate: "2025-01-19"})
	_, _ = svc.ToggleTask(ctx, "u1", old.ID)

	up, err := svc.Upcoming(ctx, "u1", 3)
	if err != nil {
		t.Fatalf("Upcoming: %v", err)
	}
	if len(up) != 3 {
		t.Fatalf("expected 3 upcoming, got %+v", up)
	}
	if up[0].Title != "Today thing" || up[0].DueIn != "today" {
		t.Fatalf("first = %+v", up[0])
	}
	if up[1].Title != "GST Return Filing" || up[1].DueIn != "2 days from now" {
		t.Fatalf("second = %+v", up[1])
	}
	if up[2].Title != "Trade License Renewal" {
		t.Fatalf("third = %+v", up[2])
	}
}
