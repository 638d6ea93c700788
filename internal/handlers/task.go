package handlers

import (
	"net/http"
	"strconv"

	"taskmanager/internal/auth"
	dom "taskmanager/internal/domain"
	"taskmanager/internal/dto"
	"taskmanager/internal/service"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	svc *service.TaskService
}

func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// Create godoc
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.TaskRequest  true  "Task body"
// @Success      201   {object}  dto.TaskResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	owner, ok := identity(c)
	if !ok {
		return
	}
	var req dto.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	t, err := h.svc.Create(c.Request.Context(), owner, req.ToInput())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTaskResponse(t))
}

// List godoc
// @Summary      List tasks
// @Description  Paginated list of the caller's tasks. Filters combine with AND.
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        search             query     string    false  "Case-insensitive substring of the title"
// @Param        status             query     string    false  "PENDING, IN_PROGRESS or DONE"
// @Param        priority           query     string    false  "LOW, NORMAL or HIGH"
// @Param        labels             query     []string  false  "Any of WORK, PERSONAL, OTHER"
// @Param        after_created_at   query     string    false  "Inclusive lower bound on created_at"
// @Param        before_created_at  query     string    false  "Inclusive upper bound on created_at"
// @Param        after_due_date     query     string    false  "Inclusive lower bound on due_date"
// @Param        before_due_date    query     string    false  "Inclusive upper bound on due_date"
// @Param        sort_key           query     string    false  "FIELD__DIRECTION, e.g. DUE_DATE__ASC"
// @Param        limit              query     int       false  "1..100, default 10"
// @Param        offset             query     int       false  ">= 0, default 0"
// @Success      200  {object}  dto.ListTasksResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	owner, ok := identity(c)
	if !ok {
		return
	}
	var q dto.TaskFilterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}
	f, err := q.ToFilter()
	if err != nil {
		writeError(c, err)
		return
	}
	list, total, err := h.svc.List(c.Request.Context(), owner, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListTasksResponse(list, total))
}

// Get godoc
// @Summary      Get a task by ID
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  dto.TaskResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	owner, ok := identity(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.svc.Get(c.Request.Context(), owner, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTaskResponse(t))
}

// Update godoc
// @Summary      Replace a task
// @Description  Every field is taken from the body; omitted fields are reset to their defaults.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int              true  "Task ID"
// @Param        body  body      dto.TaskRequest  true  "Task body"
// @Success      200   {object}  dto.TaskResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	owner, ok := identity(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	t, err := h.svc.Update(c.Request.Context(), owner, id, req.ToInput())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTaskResponse(t))
}

// Delete godoc
// @Summary      Delete a task
// @Description  Returns the task as it was before deletion.
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  dto.TaskResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	owner, ok := identity(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.svc.Delete(c.Request.Context(), owner, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTaskResponse(t))
}

func identity(c *gin.Context) (dom.Identity, bool) {
	id, ok := auth.IdentityFromContext(c)
	if !ok {
		writeError(c, dom.ErrUnauthorized)
	}
	return id, ok
}

func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(c, dom.NewValidationError(name, "must be a positive integer"))
		return 0, false
	}
	return id, true
}
