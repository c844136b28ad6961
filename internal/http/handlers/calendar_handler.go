// Compliance calendar HTTP handlers.
//
//   - GET    /calendar/events              (schedule plus tasks in a date range)
//   - GET    /calendar/upcoming            (next open items)
//   - GET    /calendar/tasks               (list, paginated, ETag support)
//   - POST   /calendar/tasks               (create)
//   - PATCH  /calendar/tasks/{id}/toggle   (flip completion)
//   - DELETE /calendar/tasks/{id}          (remove)
//
// The owner of every task is the caller identity (see userID).
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/negga-dot/LaunchMate/internal/calendar"
	"github.com/negga-dot/LaunchMate/internal/domain"
	"github.com/negga-dot/LaunchMate/internal/services"
	"github.com/negga-dot/LaunchMate/internal/utils"
)

// CreateTaskRequest is the JSON payload for adding a compliance task.
type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required,max=255" example:"File GSTR-3B"`
	Description string `json:"description" binding:"max=2000" example:"Monthly summary return"`
	DueDate     string `json:"due_date" binding:"required,isodate" example:"2025-01-20"`
	Priority    string `json:"priority" binding:"omitempty,oneof=high medium low" enums:"high,medium,low" example:"high"`
}

// EventsResponse wraps calendar events.
type EventsResponse struct {
	Events []calendar.Event `json:"events"`
}

// UpcomingResponse wraps upcoming events.
type UpcomingResponse struct {
	Events []services.UpcomingEvent `json:"events"`
}

// ListTasksResponse wraps a page of tasks and pagination information.
type ListTasksResponse struct {
	Tasks      []domain.ComplianceTask `json:"tasks"`
	Pagination Pagination              `json:"pagination"`
}

// ListEvents godoc
// @ID          listCalendarEvents
// @Summary     Calendar events in a range
// @Description Merges recurring compliance obligations with the caller's tasks due in [from, to],
// @Description sorted by date then title. Defaults to the current month.
// @Tags        Calendar
// @Produce     json
// @Param       X-User-ID  header  string  false  "User ID (demo header)"  example(user123)
// @Param       from       query   string  false  "First day (YYYY-MM-DD)"  example(2025-01-01)
// @Param       to         query   string  false  "Last day (YYYY-MM-DD)"   example(2025-01-31)
// @Success     200  {object}  handlers.EventsResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid range"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /calendar/events [get]
func (h *Handlers) ListEvents(c *gin.Context) {
	events, err := h.calSvc.Events(c.Request.Context(), userID(c), c.Query("from"), c.Query("to"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidRange) {
			fail(c, http.StatusBadRequest, ErrCodeInvalidRange, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not load events")
		return
	}
	ok(c, http.StatusOK, EventsResponse{Events: events})
}

// ListUpcoming godoc
// @ID          listUpcoming
// @Summary     Upcoming open items
// @Tags        Calendar
// @Produce     json
// @Param       X-User-ID  header  string  false  "User ID (demo header)"  example(user123)
// @Param       limit      query   int     false  "How many"  minimum(1) maximum(50) default(5)
// @Success     200  {object}  handlers.UpcomingResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /calendar/upcoming [get]
func (h *Handlers) ListUpcoming(c *gin.Context) {
	limit := utils.IntParam(c.Query("limit"), 5, 1, 50)
	events, err := h.calSvc.Upcoming(c.Request.Context(), userID(c), limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not load upcoming events")
		return
	}
	ok(c, http.StatusOK, UpcomingResponse{Events: events})
}

// ListTasks godoc
// @ID          listTasks
// @Summary     List compliance tasks (paginated)
// @Description Returns a page of the caller's tasks ordered by due date. Supports weak ETag via
// @Description If-None-Match and may return 304.
// @Tags        Calendar
// @Produce     json
// @Param       X-User-ID      header  string  false  "User ID (demo header)"       example(user123)
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       page           query   int     false  "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false  "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListTasksResponse
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string  "Not Modified"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /calendar/tasks [get]
func (h *Handlers) ListTasks(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if count, maxTS, err := h.calSvc.TasksVersion(ctx, uid); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.UnixNano()
		}
		etag := fmt.Sprintf(`W/"tasks:%s:%d:%d:%d:%d"`, uid, count, ts, page, pageSize)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, total, err := h.calSvc.ListTasks(ctx, uid, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list tasks")
		return
	}
	ok(c, http.StatusOK, ListTasksResponse{Tasks: items, Pagination: newPagination(page, pageSize, total)})
}

// CreateTask godoc
// @ID          createTask
// @Summary     Add a compliance task
// @Tags        Calendar
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false  "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.CreateTaskRequest  true  "Task"
// @Success     201  {object}  domain.ComplianceTask
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /calendar/tasks [post]
func (h *Handlers) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "title (1-255 chars) and due_date (YYYY-MM-DD) required; priority is high, medium or low")
		return
	}
	t, err := h.calSvc.AddTask(c.Request.Context(), userID(c), services.NewTask{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidTask) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, "could not create task")
		return
	}
	ok(c, http.StatusCreated, t)
}

// ToggleTask godoc
// @ID          toggleTask
// @Summary     Flip a task's completion
// @Tags        Calendar
// @Produce     json
// @Param       X-User-ID  header  string  false  "User ID (demo header)"  example(user123)
// @Param       id         path    string  true   "Task ID (UUID)"  format(uuid)
// @Success     200  {object}  domain.ComplianceTask
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Task not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /calendar/tasks/{id}/toggle [patch]
func (h *Handlers) ToggleTask(c *gin.Context) {
	id, valid := taskID(c)
	if !valid {
		return
	}
	t, err := h.calSvc.ToggleTask(c.Request.Context(), userID(c), id)
	if err != nil {
		taskFail(c, err, ErrCodeUpdateFailed)
		return
	}
	ok(c, http.StatusOK, t)
}

// DeleteTask godoc
// @ID          deleteTask
// @Summary     Delete a task
// @Tags        Calendar
// @Param       X-User-ID  header  string  false  "User ID (demo header)"  example(user123)
// @Param       id         path    string  true   "Task ID (UUID)"  format(uuid)
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Task not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /calendar/tasks/{id} [delete]
func (h *Handlers) DeleteTask(c *gin.Context) {
	id, valid := taskID(c)
	if !valid {
		return
	}
	if err := h.calSvc.DeleteTask(c.Request.Context(), userID(c), id); err != nil {
		taskFail(c, err, ErrCodeDeleteFailed)
		return
	}
	noContent(c)
}

func taskID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "task id must be a UUID")
		return "", false
	}
	return id, true
}

func taskFail(c *gin.Context, err error, code string) {
	if errors.Is(err, services.ErrTaskNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "task not found")
		return
	}
	fail(c, http.StatusInternalServerError, code, "task update failed")
}
