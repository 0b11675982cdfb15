package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskdeck/backend/internal/model"
	"github.com/taskdeck/backend/internal/service"
)

type TaskHandler struct {
	svc *service.TaskService
}

func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// CreateTask godoc
// @Summary Create a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.TaskRequest true "Task fields"
// @Success 200 {object} model.TaskResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusForbidden, model.ErrorResponse{Detail: "user not found"})
		return
	}

	var req model.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Detail: "invalid request"})
		return
	}

	if _, err := h.svc.Create(c.Request.Context(), user.ID, req); err != nil {
		writeTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.TaskResponse{
		Message: "task create successful",
		Task:    echoTask(req),
	})
}

// ListTasks godoc
// @Summary List own tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param filter_status query string false "Case-insensitive status filter, matched literally"
// @Success 200 {array} model.Task
// @Failure 403 {object} model.ErrorResponse
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusForbidden, model.ErrorResponse{Detail: "user not found"})
		return
	}

	tasks, err := h.svc.List(c.Request.Context(), user.ID, c.Query("filter_status"))
	if err != nil {
		writeTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// UpdateTask godoc
// @Summary Update an owned task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param request body model.TaskRequest true "New task fields"
// @Success 200 {object} model.TaskResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /task/{id} [put]
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusForbidden, model.ErrorResponse{Detail: "user not found"})
		return
	}

	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Detail: "invalid task id"})
		return
	}

	var req model.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Detail: "invalid request"})
		return
	}

	if err := h.svc.Update(c.Request.Context(), taskID, user.ID, req); err != nil {
		writeTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.TaskResponse{
		Message: "update task successful",
		Task:    echoTask(req),
	})
}

// DeleteTask godoc
// @Summary Delete an owned task
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 200 {object} model.MessageResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /task/{id} [delete]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusForbidden, model.ErrorResponse{Detail: "user not found"})
		return
	}

	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Detail: "invalid task id"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), taskID, user.ID); err != nil {
		writeTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.MessageResponse{Message: "delete task successful"})
}

// writeTaskError maps service errors to the wire contract. Not-found reports
// 403 like ownership failures, so task ids cannot be probed for existence.
func writeTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusForbidden, model.ErrorResponse{Detail: "task not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, model.ErrorResponse{Detail: "forbidden"})
	default:
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Detail: "server error"})
	}
}

func echoTask(req model.TaskRequest) string {
	return fmt.Sprintf("%s, %s, %s", req.TaskName, req.Description, req.Status)
}
