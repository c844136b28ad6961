package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/negga-dot/LaunchMate/internal/domain"
	"github.com/negga-dot/LaunchMate/internal/services"
)

const testOwner = "founder-1"

func newCalendarRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := services.NewCalendarService(newTaskDB(t), testTaskRepo{}, nil)
	h := New(&stubSubSvc{}, stubAsstSvc{}, svc)

	r := gin.New()
	g := r.Group("/calendar")
	g.GET("/events", h.ListEvents)
	g.GET("/upcoming", h.ListUpcoming)
	g.GET("/tasks", h.ListTasks)
	g.POST("/tasks", h.CreateTask)
	g.PATCH("/tasks/:id/toggle", h.ToggleTask)
	g.DELETE("/tasks/:id", h.DeleteTask)
	return r
}

func owner() map[string]string { return map[string]string{"X-User-ID": testOwner} }

func createTask(t *testing.T, r *gin.Engine, req CreateTaskRequest) domain.ComplianceTask {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/calendar/tasks", req, owner())
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d %s", w.Code, w.Body.String())
	}
	return decode[domain.ComplianceTask](t, w)
}

func TestCreateTask_DefaultsAndValidation(t *testing.T) {
	r := newCalendarRouter(t)

	task := createTask(t, r, CreateTaskRequest{Title: "  Board meeting ", DueDate: "2025-01-10"})
	if task.ID == "" || task.Title != "Board meeting" || task.Priority != domain.PriorityMedium || task.OwnerID != testOwner {
		t.Fatalf("unexpected task: %+v", task)
	}

	bad := []CreateTaskRequest{
		{Title: "", DueDate: "2025-01-10"},
		{Title: "x", DueDate: "10/01/2025"},
		{Title: "x", DueDate: "2025-02-30"},
		{Title: "x", DueDate: "2025-01-10", Priority: "urgent"},
	}
	for _, req := range bad {
		w := doJSON(t, r, http.MethodPost, "/calendar/tasks", req, owner())
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%+v: expected 400, got %d", req, w.Code)
		}
		if got := decode[ErrorResponse](t, w); got.Code != ErrCodeBadRequest {
			t.Fatalf("%+v: code = %q", req, got.Code)
		}
	}
}

func TestListEvents_MergesScheduleAndTasks(t *testing.T) {
	r := newCalendarRouter(t)
	task := createTask(t, r, CreateTaskRequest{Title: "Investor update", DueDate: "2025-01-20", Priority: "high"})
	createTask(t, r, CreateTaskRequest{Title: "Outside range", DueDate: "2025-03-01"})

	w := doJSON(t, r, http.MethodGet, "/calendar/events?from=2025-01-01&to=2025-01-31", nil, owner())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", w.Code, w.Body.String())
	}
	got := decode[EventsResponse](t, w).Events

	want := map[string]string{
		"Fire Safety Inspection": "2025-01-15",
		"GST Return Filing":      "2025-01-20",
		"Investor update":        "2025-01-20",
		"Trade License Renewal":  "2025-01-25",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d: %+v", len(want), len(got), got)
	}
	for _, e := range got {
		if want[e.Title] != e.Date {
			t.Fatalf("unexpected event %q on %s", e.Title, e.Date)
		}
		if e.Title == "Investor update" && (e.ID != task.ID || e.Priority != "high" || e.Recurring) {
			t.Fatalf("task event not mapped: %+v", e)
		}
	}
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		if prev.Date > cur.Date || (prev.Date == cur.Date && prev.Title > cur.Title) {
			t.Fatalf("events not sorted at %d: %+v", i, got)
		}
	}
}

func TestListEvents_OtherOwnersTasksHidden(t *testing.T) {
	r := newCalendarRouter(t)
	createTask(t, r, CreateTaskRequest{Title: "Private", DueDate: "2025-01-05"})

	w := doJSON(t, r, http.MethodGet, "/calendar/events?from=2025-01-01&to=2025-01-10", nil, map[string]string{"X-User-ID": "someone-else"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := decode[EventsResponse](t, w).Events; len(got) != 0 {
		t.Fatalf("expected no events, got %+v", got)
	}
}

func TestListEvents_InvalidRange(t *testing.T) {
	r := newCalendarRouter(t)
	for _, q := range []string{
		"from=2025-01-31&to=2025-01-01",
		"from=2025-13-01&to=2025-12-31",
		"from=2020-01-01&to=2025-01-01",
	} {
		w := doJSON(t, r, http.MethodGet, "/calendar/events?"+q, nil, owner())
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, w.Code)
		}
		if got := decode[ErrorResponse](t, w); got.Code != ErrCodeInvalidRange {
			t.Fatalf("%s: code = %q", q, got.Code)
		}
	}
}

func TestListTasks_PaginationAndETag(t *testing.T) {
	r := newCalendarRouter(t)
	for _, d := range []string{"2025-01-03", "2025-01-01", "2025-01-02"} {
		createTask(t, r, CreateTaskRequest{Title: "Task " + d, DueDate: d})
	}

	w := doJSON(t, r, http.MethodGet, "/calendar/tasks?page=1&page_size=2", nil, owner())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode[ListTasksResponse](t, w)
	if len(body.Tasks) != 2 || body.Pagination.Total != 3 || !body.Pagination.HasNext {
		t.Fatalf("unexpected page: %+v", body)
	}
	if body.Tasks[0].DueDate != "2025-01-01" {
		t.Fatalf("expected due-date ordering, got %+v", body.Tasks)
	}

	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag")
	}
	hdr := owner()
	hdr["If-None-Match"] = etag
	w = doJSON(t, r, http.MethodGet, "/calendar/tasks?page=1&page_size=2", nil, hdr)
	if w.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", w.Code)
	}

	// A different page has a different tag.
	w = doJSON(t, r, http.MethodGet, "/calendar/tasks?page=2&page_size=2", nil, hdr)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for page 2, got %d", w.Code)
	}
}

func TestToggleAndDeleteTask(t *testing.T) {
	r := newCalendarRouter(t)
	task := createTask(t, r, CreateTaskRequest{Title: "File TDS", DueDate: "2025-01-07"})

	w := doJSON(t, r, http.MethodPatch, "/calendar/tasks/"+task.ID+"/toggle", nil, owner())
	if w.Code != http.StatusOK {
		t.Fatalf("toggle: expected 200, got %d", w.Code)
	}
	if got := decode[domain.ComplianceTask](t, w); !got.Completed {
		t.Fatalf("expected completed after toggle: %+v", got)
	}
	w = doJSON(t, r, http.MethodPatch, "/calendar/tasks/"+task.ID+"/toggle", nil, owner())
	if got := decode[domain.ComplianceTask](t, w); got.Completed {
		t.Fatalf("expected open after second toggle: %+v", got)
	}

	// Another owner cannot see it.
	w = doJSON(t, r, http.MethodDelete, "/calendar/tasks/"+task.ID, nil, map[string]string{"X-User-ID": "intruder"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign delete: expected 404, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodDelete, "/calendar/tasks/"+task.ID, nil, owner())
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodDelete, "/calendar/tasks/"+task.ID, nil, owner())
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPatch, "/calendar/tasks/"+uuid.NewString()+"/toggle", nil, owner())
	if w.Code != http.StatusNotFound {
		t.Fatalf("toggle missing: expected 404, got %d", w.Code)
	}
}

func TestTaskRoutes_RejectNonUUID(t *testing.T) {
	r := newCalendarRouter(t)
	if w := doJSON(t, r, http.MethodPatch, "/calendar/tasks/abc/toggle", nil, owner()); w.Code != http.StatusBadRequest {
		t.Fatalf("toggle: expected 400, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodDelete, "/calendar/tasks/abc", nil, owner()); w.Code != http.StatusBadRequest {
		t.Fatalf("delete: expected 400, got %d", w.Code)
	}
}

func TestListUpcoming_ClampsLimit(t *testing.T) {
	r := newCalendarRouter(t)
	w := doJSON(t, r, http.MethodGet, "/calendar/upcoming?limit=500", nil, owner())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	got := decode[UpcomingResponse](t, w).Events
	if len(got) == 0 || len(got) > 50 {
		t.Fatalf("unexpected upcoming count %d", len(got))
	}
	for _, e := range got {
		if e.DueIn == "" {
			t.Fatalf("missing due_in: %+v", e)
		}
	}
}
