package v1

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taskapi/internal/models"
	"taskapi/internal/services"
)

type taskResponse struct {
	ID          int64     `json:"id"`
	Owner       string    `json:"owner"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      bool      `json:"status"`
	DueDate     string    `json:"due_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newTaskResponse(task *models.Task) taskResponse {
	return taskResponse{
		ID:          task.ID,
		Owner:       task.OwnerID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		DueDate:     task.DueDate.Format(time.DateOnly),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

type createTaskRequest struct {
	Title       string  `json:"title" binding:"required,max=300"`
	Description *string `json:"description"`
	Status      *bool   `json:"status"`
	DueDate     *string `json:"due_date"`
	Owner       *string `json:"owner"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind request body")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	params := services.CreateTaskParams{
		Title: req.Title,
	}
	if req.Description != nil {
		params.Description = *req.Description
	}
	if req.Status != nil {
		params.Status = *req.Status
	}
	if req.Owner != nil {
		params.OwnerID = *req.Owner
	}
	if req.DueDate != nil {
		dueDate, err := parseDueDate(*req.DueDate)
		if err != nil {
			h.abortServiceError(c, err)
			return
		}
		params.DueDate = dueDate
	}

	task, err := h.tasks.CreateTask(c, principal, params)
	if err != nil {
		h.abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newTaskResponse(task))
}

func (h *handlerImpl) HandleListTasks(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	tasks, err := h.tasks.ListTasks(c, principal, services.ListTasksParams{
		Status:  c.Query("status"),
		OwnerID: c.Query("owner_id"),
		DueDate: c.Query("due_date"),
		Offset:  parseUintQuery(c, "offset"),
		Limit:   parseUintQuery(c, "limit"),
	})
	if err != nil {
		h.abortServiceError(c, err)
		return
	}

	responses := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, newTaskResponse(task))
	}
	c.JSON(http.StatusOK, gin.H{"tasks": responses})
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	taskID, ok := h.parseTaskID(c)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(c, principal, taskID)
	if err != nil {
		h.abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *bool   `json:"status"`
	DueDate     *string `json:"due_date"`
	Owner       *string `json:"owner"`
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	taskID, ok := h.parseTaskID(c)
	if !ok {
		return
	}

	// Strict decoding rejects fields outside the mutable whitelist
	// instead of silently dropping them.
	var req updateTaskRequest
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to decode request body")
		abort(c, newBadRequestError(err.Error()))
		return
	}

	params := services.UpdateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		OwnerID:     req.Owner,
	}
	if req.DueDate != nil {
		dueDate, err := parseDueDate(*req.DueDate)
		if err != nil {
			h.abortServiceError(c, err)
			return
		}
		params.DueDate = dueDate
	}

	task, err := h.tasks.UpdateTask(c, principal, taskID, params)
	if err != nil {
		h.abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	taskID, ok := h.parseTaskID(c)
	if !ok {
		return
	}

	err := h.tasks.DeleteTask(c, principal, taskID)
	if err != nil {
		h.abortServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) parseTaskID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.logger.Error().
			Str("id", raw).
			Msg("invalid task id")
		abort(c, newBadRequestError("invalid task id"))
		return 0, false
	}
	return id, true
}

func parseDueDate(value string) (*time.Time, error) {
	dueDate, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, services.ErrInvalidDate
	}
	return &dueDate, nil
}

func parseUintQuery(c *gin.Context, name string) uint32 {
	value, err := strconv.ParseUint(c.Query(name), 10, 32)
	if err != nil {
		return 0
	}
	return uint32(value)
}
