package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"weddingTasks/internal/handlers/dto"
	"weddingTasks/internal/logger"
	"weddingTasks/internal/models/task"
	"weddingTasks/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ActorHeader - явная аутентифицированная личность актора (внутренний uuid
// пользователя). Клиент сперва резолвит clerk id через /users/clerk/{clerkId}.
const ActorHeader = "X-Actor-Id"

type TaskHandler struct {
	TaskService TaskService
	Dashboard   DashboardService
	Resolver    AssignmentResolver
	Directory   Directory
}

func NewTaskHandler(taskService TaskService, dashboard DashboardService, resolver AssignmentResolver, directory Directory) TaskHandler {
	return TaskHandler{
		TaskService: taskService,
		Dashboard:   dashboard,
		Resolver:    resolver,
		Directory:   directory,
	}
}

// actorID достаёт личность актора из заголовка; без неё мутации запрещены
func actorID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.Header.Get(ActorHeader)
	if raw == "" {
		logger.Warn("HTTP: Запрос без идентификации актора",
			zap.String("path", r.URL.Path),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusUnauthorized, "заголовок "+ActorHeader+" обязателен")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		logger.Warn("HTTP: Неверная идентификация актора",
			zap.String("path", r.URL.Path),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusUnauthorized, "неверное значение "+ActorHeader)
		return uuid.Nil, false
	}

	return id, true
}

func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, name)
	id, err := uuid.Parse(idParam)
	if err != nil {
		logger.Warn("HTTP: Не удалось получить "+name,
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "не удалось получить "+name+": "+err.Error())
		return uuid.Nil, false
	}

	if id == uuid.Nil {
		logger.Warn("HTTP: Неверное значение "+name,
			zap.String("error", "nil id"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, name+" не может быть пустым")
		return uuid.Nil, false
	}

	return id, true
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := s.TaskService.HealthCheck(r.Context()); err != nil {
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("service", "wedding-tasks"),
			toPayload("status", "unhealthy"))
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("service", "wedding-tasks"),
		toPayload("status", "ok"))
}

func (s *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	if request.WeddingID == uuid.Nil {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "weddingId"),
			zap.String("error", "empty_field"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "weddingId не может быть пустым")
		return
	}

	logger.Info("HTTP: Вызов сервиса создания задач", zap.String("actor_id", actor.String()))

	created, err := s.TaskService.CreateTask(r.Context(), request.WeddingID, request.Title,
		request.Description, request.Category, request.AssignedRole, request.AssignedProtocolID, request.DueDate)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "create_task"),
			zap.Duration("ms", time.Since(start)))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", created.UUID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	resp := dto.FromTask(created)
	responseWithBody(w, http.StatusCreated, resp)
}

func (s *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r, "taskId")
	if !ok {
		return
	}

	foundTask, err := s.TaskService.GetTaskByID(r.Context(), id)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err, zap.String("operation", "get_task"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Задача получена",
		zap.String("task_id", foundTask.UUID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTask(foundTask))
}

// applyListQuery - клиентские параметры списков: ?q= поиск по title/description,
// ?completed=true переключатель active/completed, ?sort=due_date сортировка
// по дедлайну. Без параметров список возвращается как есть.
func applyListQuery(r *http.Request, tasks []*task.Task) []*task.Task {
	params := r.URL.Query()

	if params.Has("q") || params.Has("completed") {
		tasks = service.FilterTasks(tasks, params.Get("q"), params.Get("completed") == "true")
	}

	if params.Get("sort") == "due_date" {
		service.SortByDueDate(tasks)
	}

	return tasks
}

func (s *TaskHandler) GetTasksByWedding(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	weddingID, ok := parseIDParam(w, r, "weddingId")
	if !ok {
		return
	}

	tasks, err := s.TaskService.GetTasksByWedding(r.Context(), weddingID)
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err, zap.String("operation", "get_wedding_tasks"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	tasks = applyListQuery(r, tasks)
	summaries := s.Dashboard.WeddingSummaries(r.Context(), tasks)

	logger.Info("HTTP_OUT: Задачи свадьбы получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTaskList(tasks, summaries))
}

// GetTasksByProtocol: protocolId - внутренний идентификатор базы, не clerk id
func (s *TaskHandler) GetTasksByProtocol(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	protocolID, ok := parseIDParam(w, r, "protocolId")
	if !ok {
		return
	}

	tasks, err := s.TaskService.GetTasksByProtocol(r.Context(), protocolID)
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err, zap.String("operation", "get_protocol_tasks"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	tasks = applyListQuery(r, tasks)
	summaries := s.Dashboard.WeddingSummaries(r.Context(), tasks)

	logger.Info("HTTP_OUT: Задачи исполнителя получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTaskList(tasks, summaries))
}

func (s *TaskHandler) AcceptTask(w http.ResponseWriter, r *http.Request) {
	s.transitionHandler(w, r, "accept_task", func(id, actor uuid.UUID) (*task.Task, error) {
		return s.TaskService.AcceptTask(r.Context(), id, actor)
	})
}

func (s *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	s.transitionHandler(w, r, "complete_task", func(id, actor uuid.UUID) (*task.Task, error) {
		return s.TaskService.CompleteTask(r.Context(), id, actor)
	})
}

func (s *TaskHandler) RejectTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r, "taskId")
	if !ok {
		return
	}

	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	var request dto.RejectTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	updated, err := s.TaskService.RejectTask(r.Context(), id, actor, request.Reason)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err, zap.String("operation", "reject_task"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Задача отклонена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTask(updated))
}

// UpdateTaskStatus - generic-переопределение; сервис гоняет его через ту же
// машину состояний, что и именованные операции
func (s *TaskHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r, "taskId")
	if !ok {
		return
	}

	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	var request dto.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	updated, err := s.TaskService.UpdateTaskStatus(r.Context(), id, actor, request.Status, request.Reason)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err, zap.String("operation", "update_status"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Статус задачи обновлён",
		zap.String("task_id", id.String()),
		zap.String("status", request.Status),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTask(updated))
}

func (s *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r, "taskId")
	if !ok {
		return
	}

	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверно переданы параметры обновления: "+err.Error())
		return
	}

	options := []task.TaskOption{}
	if request.Title != nil {
		options = append(options, task.WithTitle(*request.Title))
	}
	if request.Description != nil {
		options = append(options, task.WithDescription(*request.Description))
	}
	if request.Category != nil {
		options = append(options, task.WithCategory(task.Category(*request.Category)))
	}
	if request.DueDate != nil {
		options = append(options, task.WithDueDate(*request.DueDate))
	}

	updated, err := s.TaskService.UpdateTask(r.Context(), id, actor, options...)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: ошибка в Service", err, zap.String("operation", "update_task"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTask(updated))
}

func (s *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r, "taskId")
	if !ok {
		return
	}

	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	if err := s.TaskService.DeleteTask(r.Context(), id, actor); err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: ошибка в Service", err, zap.String("operation", "delete_task"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	w.WriteHeader(http.StatusNoContent)
}

func (s *TaskHandler) transitionHandler(w http.ResponseWriter, r *http.Request, operation string, fn func(id, actor uuid.UUID) (*task.Task, error)) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r, "taskId")
	if !ok {
		return
	}

	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	updated, err := fn(id, actor)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err, zap.String("operation", operation))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Переход статуса выполнен",
		zap.String("task_id", id.String()),
		zap.String("operation", operation),
		zap.String("status", string(updated.Status)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTask(updated))
}
