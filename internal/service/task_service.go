package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"weddingTasks/internal/logger"
	"weddingTasks/internal/models/task"
	repo "weddingTasks/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskService - движок жизненного цикла задач. Все записи статуса идут
// через единственную таблицу переходов (task.Transitions), включая
// generic-эндпоинт PATCH /status.

type TaskService struct {
	repo      TaskRepository
	directory DirectoryRepository
	resolver  AssignmentResolver
}

func NewTaskService(taskRepo TaskRepository, directory DirectoryRepository) TaskService {
	return TaskService{
		repo:      taskRepo,
		directory: directory,
		resolver:  NewAssignmentResolver(directory),
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}

func (s *TaskService) Resolver() *AssignmentResolver {
	return &s.resolver
}

func (s *TaskService) CreateTask(ctx context.Context, weddingID uuid.UUID, title, description, category, assignedRole string, assignedProtocolID *uuid.UUID, dueDate *time.Time) (*task.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, NewValidationError("title", "название не может быть пустым")
	}

	role, ok := task.ParseRole(assignedRole)
	if !ok {
		return nil, NewValidationError("assignedRole", "роль должна быть MANAGER, PROTOCOL или COUPLE")
	}

	// свадьба должна существовать (проверка у коллаборатора)
	if _, err := s.directory.GetWeddingSummary(ctx, weddingID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("wedding", weddingID.String())
		}
		return nil, NewUpstream("weddings", err)
	}

	if assignedProtocolID != nil {
		if _, err := s.directory.GetUserByID(ctx, *assignedProtocolID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, NewNotFound("user", assignedProtocolID.String())
			}
			return nil, NewUpstream("users", err)
		}
	}

	newTask := &task.Task{
		UUID:               uuid.New(),
		WeddingID:          weddingID,
		Title:              title,
		Description:        description,
		Category:           task.ParseCategory(category),
		AssignedRole:       role,
		AssignedProtocolID: assignedProtocolID,
		Status:             task.StatusPendingAcceptance,
		DueDate:            dueDate,
		CreatedAt:          time.Now(),
	}

	if err := s.repo.Create(ctx, newTask); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Info("Service: Задача создана",
		zap.String("task_id", newTask.UUID.String()),
		zap.String("wedding_id", weddingID.String()),
		zap.String("assigned_role", string(role)))

	return newTask, nil
}

func (s *TaskService) AcceptTask(ctx context.Context, id, actorID uuid.UUID) (*task.Task, error) {
	return s.transition(ctx, id, actorID, []task.Status{task.StatusPendingAcceptance}, task.StatusAccepted, nil)
}

func (s *TaskService) RejectTask(ctx context.Context, id, actorID uuid.UUID, reason string) (*task.Task, error) {
	// валидация по обрезанной строке, хранение - дословно как прислали
	if strings.TrimSpace(reason) == "" {
		return nil, NewValidationError("reason", "причина отклонения не может быть пустой")
	}
	return s.transition(ctx, id, actorID, []task.Status{task.StatusPendingAcceptance}, task.StatusRejected, &reason)
}

func (s *TaskService) CompleteTask(ctx context.Context, id, actorID uuid.UUID) (*task.Task, error) {
	return s.transition(ctx, id, actorID, []task.Status{task.StatusAccepted, task.StatusInProgress}, task.StatusCompleted, nil)
}

// UpdateTaskStatus - generic-переопределение статуса. Проходит через ту же
// таблицу переходов, что и именованные операции: обойти машину состояний
// через этот эндпоинт нельзя.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, id, actorID uuid.UUID, statusRaw, reason string) (*task.Task, error) {
	target := task.Status(statusRaw)
	if !target.IsValid() {
		return nil, NewValidationError("status", "неизвестный статус "+statusRaw)
	}

	var reasonPtr *string
	if target == task.StatusRejected {
		if strings.TrimSpace(reason) == "" {
			return nil, NewValidationError("reason", "переход в REJECTED требует причину")
		}
		reasonPtr = &reason
	}

	return s.transition(ctx, id, actorID, predecessors(target), target, reasonPtr)
}

// UpdateTask - правка текста/категории/дедлайна; допустима только до принятия
func (s *TaskService) UpdateTask(ctx context.Context, id, actorID uuid.UUID, options ...task.TaskOption) (*task.Task, error) {
	t, err := s.loadAuthorized(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(t)
	}

	if err := s.repo.UpdateDetails(ctx, t); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("task", id.String())
		}
		if errors.Is(err, repo.ErrStatusConflict) {
			return nil, NewInvalidState(id.String(), string(t.Status), string(t.Status))
		}
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}
	return t, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id, actorID uuid.UUID) error {
	if _, err := s.loadAuthorized(ctx, id, actorID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFound("task", id.String())
		}
		return fmt.Errorf("удаление задачи: %w", err)
	}

	logger.Info("Service: Задача удалена", zap.String("task_id", id.String()))
	return nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("task", id.String())
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return t, nil
}

func (s *TaskService) GetTasksByWedding(ctx context.Context, weddingID uuid.UUID) ([]*task.Task, error) {
	tasks, err := s.repo.GetByWedding(ctx, weddingID)
	if err != nil {
		return nil, fmt.Errorf("получение задач свадьбы: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) GetTasksByProtocol(ctx context.Context, protocolID uuid.UUID) ([]*task.Task, error) {
	tasks, err := s.repo.GetByProtocol(ctx, protocolID)
	if err != nil {
		return nil, fmt.Errorf("получение задач исполнителя: %w", err)
	}
	return tasks, nil
}

// transition - общий путь всех записей статуса: загрузка, авторизация,
// условная запись (check-and-set) в хранилище
func (s *TaskService) transition(ctx context.Context, id, actorID uuid.UUID, from []task.Status, to task.Status, reason *string) (*task.Task, error) {
	t, err := s.loadAuthorized(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateStatus(ctx, id, from, to, reason)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("task", id.String())
		}
		if errors.Is(err, repo.ErrStatusConflict) {
			current := t.Status
			if fresh, freshErr := s.repo.GetByID(ctx, id); freshErr == nil {
				current = fresh.Status
			}
			logger.Warn("Service: Недопустимый переход статуса",
				zap.String("task_id", id.String()),
				zap.String("current", string(current)),
				zap.String("target", string(to)))
			return nil, NewInvalidState(id.String(), string(current), string(to))
		}
		return nil, fmt.Errorf("переход статуса: %w", err)
	}

	logger.Info("Service: Переход статуса задачи",
		zap.String("task_id", id.String()),
		zap.String("status", string(to)),
		zap.String("actor_id", actorID.String()))

	return updated, nil
}

func (s *TaskService) loadAuthorized(ctx context.Context, id, actorID uuid.UUID) (*task.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("task", id.String())
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	authorized, err := s.resolver.IsAuthorized(ctx, t, actorID)
	if err != nil {
		return nil, NewUpstream("assignments", err)
	}
	if !authorized {
		logger.Warn("Service: Отказ в доступе к задаче",
			zap.String("task_id", id.String()),
			zap.String("actor_id", actorID.String()))
		return nil, NewUnauthorized(id.String(), actorID.String())
	}

	return t, nil
}

// статусы, из которых разрешён переход в target
func predecessors(target task.Status) []task.Status {
	res := []task.Status{}
	for from := range task.Transitions {
		if from.CanTransitionTo(target) {
			res = append(res, from)
		}
	}
	return res
}
