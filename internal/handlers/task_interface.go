package handlers

import (
	"context"
	"time"

	"weddingTasks/internal/models/guest"
	"weddingTasks/internal/models/task"
	"weddingTasks/internal/models/user"
	"weddingTasks/internal/models/wedding"
	"weddingTasks/internal/service"

	"github.com/google/uuid"
)

type TaskService interface {
	HealthCheck(ctx context.Context) error
	CreateTask(ctx context.Context, weddingID uuid.UUID, title, description, category, assignedRole string, assignedProtocolID *uuid.UUID, dueDate *time.Time) (*task.Task, error)
	GetTaskByID(ctx context.Context, id uuid.UUID) (*task.Task, error)
	GetTasksByWedding(ctx context.Context, weddingID uuid.UUID) ([]*task.Task, error)
	GetTasksByProtocol(ctx context.Context, protocolID uuid.UUID) ([]*task.Task, error)
	AcceptTask(ctx context.Context, id, actorID uuid.UUID) (*task.Task, error)
	RejectTask(ctx context.Context, id, actorID uuid.UUID, reason string) (*task.Task, error)
	CompleteTask(ctx context.Context, id, actorID uuid.UUID) (*task.Task, error)
	UpdateTaskStatus(ctx context.Context, id, actorID uuid.UUID, status, reason string) (*task.Task, error)
	UpdateTask(ctx context.Context, id, actorID uuid.UUID, options ...task.TaskOption) (*task.Task, error)
	DeleteTask(ctx context.Context, id, actorID uuid.UUID) error
}

type DashboardService interface {
	ForWedding(ctx context.Context, weddingID uuid.UUID) (*service.WeddingDashboard, error)
	ForProtocol(ctx context.Context, protocolID uuid.UUID) (*service.ProtocolDashboard, error)
	WeddingSummaries(ctx context.Context, tasks []*task.Task) map[uuid.UUID]*wedding.Summary
}

type AssignmentResolver interface {
	ResolveAssignments(ctx context.Context, staffID uuid.UUID) ([]service.ResolvedAssignment, error)
}

// Directory - read-эндпоинты по коллабораторам для клиентов
type Directory interface {
	GetWeddingSummary(ctx context.Context, id uuid.UUID) (*wedding.Summary, error)
	GuestStatsByWedding(ctx context.Context, weddingID uuid.UUID) (*guest.Stats, error)
	GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error)
}
