package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/gamyam/crm-tasks/api/transport"
	"github.com/gamyam/crm-tasks/domain"
	"github.com/gamyam/crm-tasks/pkg/httpcontext"
	"github.com/gamyam/crm-tasks/repository"
	taskUC "github.com/gamyam/crm-tasks/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Create a new task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	var req transport.CreateTaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	dueDate, ok := h.parseDueDate(ctx, req.DueDate)
	if !ok {
		return
	}

	task := &domain.Task{
		Title:        req.Title,
		Description:  req.Description,
		Type:         domain.TaskType(req.Type),
		Status:       domain.TaskStatus(req.Status),
		Priority:     domain.TaskPriority(req.Priority),
		DueDate:      dueDate,
		AssignedTo:   req.AssignedTo,
		Contributors: req.Contributors,
		Links: domain.TaskLinks{
			LeadID:    req.LeadID,
			DealID:    req.DealID,
			ContactID: req.ContactID,
			EventID:   req.EventID,
			NoteID:    req.NoteID,
			MailID:    req.MailID,
			RefTaskID: req.RefTaskID,
		},
		OrganizationID: req.OrganizationID,
		CreatedBy:      req.CreatedBy,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, task)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary List tasks with pagination and filters
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	query := repository.TaskQuery{
		Page:           pageFromArgs(args),
		Status:         domain.TaskStatus(args.Peek("status")),
		Priority:       domain.TaskPriority(args.Peek("priority")),
		Type:           domain.TaskType(args.Peek("type")),
		AssignedTo:     string(args.Peek("assignedTo")),
		OrganizationID: string(args.Peek("organizationId")),
		IncludeDeleted: true,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.List(stdCtx, query)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewSuccess(result.Data, result.Meta))
}

// @Summary Get a task by ID
// @Tags tasks
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.GetByID(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Filter tasks by related entity IDs
// @Tags tasks
// @Router /api/v1/tasks/filter [post]
func (h *TaskHandler) FilterTasks(ctx *fasthttp.RequestCtx) {
	var req transport.FilterTasksRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	filter := repository.TaskFilter{
		Page: repository.Page{
			Page:      req.Page,
			Limit:     req.Limit,
			SortBy:    req.SortBy,
			SortOrder: repository.SortOrder(req.SortOrder),
			Search:    req.Search,
		},
		Links: domain.TaskLinks{
			LeadID:    req.LeadID,
			DealID:    req.DealID,
			ContactID: req.ContactID,
			EventID:   req.EventID,
			NoteID:    req.NoteID,
			MailID:    req.MailID,
		},
		Status:         domain.TaskStatus(req.Status),
		IncludeDeleted: true,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.Filter(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewSuccess(result.Data, result.Meta))
}

// @Summary Update a task
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	var req transport.UpdateTaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	patch := domain.TaskUpdate{
		Title:        req.Title,
		Description:  req.Description,
		Contributors: req.Contributors,
		UpdatedBy:    req.UpdatedBy,
	}
	if req.Type != nil {
		t := domain.TaskType(*req.Type)
		patch.Type = &t
	}
	if req.Status != nil {
		s := domain.TaskStatus(*req.Status)
		patch.Status = &s
	}
	if req.Priority != nil {
		p := domain.TaskPriority(*req.Priority)
		patch.Priority = &p
	}
	if req.AssignedTo != nil {
		patch.AssignedTo = req.AssignedTo
	}
	if req.DueDate != nil {
		due, ok := h.parseDueDate(ctx, *req.DueDate)
		if !ok {
			return
		}
		patch.DueDate = &due
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.Update(stdCtx, id, patch)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Update a task's status
// @Tags tasks
// @Router /api/v1/tasks/{id}/status [patch]
func (h *TaskHandler) UpdateTaskStatus(ctx *fasthttp.RequestCtx) {
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	var req transport.UpdateTaskStatusRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateStatus(stdCtx, id, domain.TaskStatus(req.Status), req.UpdatedBy)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Soft-delete a task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	var req transport.DeleteTaskRequest
	if body := ctx.PostBody(); len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
			return
		}
	}
	if req.DeletedBy == "" {
		req.DeletedBy = domain.SystemActor
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	deleted, err := h.uc.SoftDelete(stdCtx, id, req.DeletedBy)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, deleted)
}

func (h *TaskHandler) taskID(ctx *fasthttp.RequestCtx) (string, bool) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing task id", nil))
		return "", false
	}
	return id, true
}

func (h *TaskHandler) parseDueDate(ctx *fasthttp.RequestCtx, raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "dueDate must be RFC3339", nil))
		return time.Time{}, false
	}
	return parsed, true
}

func pageFromArgs(args *fasthttp.Args) repository.Page {
	return repository.Page{
		Page:      parseInt(string(args.Peek("page")), 0),
		Limit:     parseInt(string(args.Peek("limit")), 0),
		SortBy:    string(args.Peek("sortBy")),
		SortOrder: repository.SortOrder(args.Peek("sortOrder")),
		Search:    string(args.Peek("search")),
	}
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
