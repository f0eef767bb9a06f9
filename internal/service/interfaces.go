package service

import (
	"context"
	"time"

	"weddingTasks/internal/models/assignment"
	"weddingTasks/internal/models/guest"
	"weddingTasks/internal/models/task"
	"weddingTasks/internal/models/user"
	"weddingTasks/internal/models/wedding"

	"github.com/google/uuid"
)

type TaskRepository interface {
	HealthCheck(ctx context.Context) error
	Create(ctx context.Context, t *task.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error)
	GetByWedding(ctx context.Context, weddingID uuid.UUID) ([]*task.Task, error)
	GetByProtocol(ctx context.Context, protocolID uuid.UUID) ([]*task.Task, error)
	GetDueBetween(ctx context.Context, from, to time.Time, limit int) ([]*task.Task, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from []task.Status, to task.Status, reason *string) (*task.Task, error)
	UpdateDetails(ctx context.Context, t *task.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// DirectoryRepository - read-only оракул по сущностям-коллабораторам.
// Решения авторизации не кешируются: каждый вызов читает текущее состояние.
type DirectoryRepository interface {
	GetAssignmentByWedding(ctx context.Context, weddingID uuid.UUID) (*assignment.Assignment, error)
	GetAssignmentsByStaff(ctx context.Context, staffID uuid.UUID) ([]*assignment.Assignment, error)
	GetWeddingSummary(ctx context.Context, id uuid.UUID) (*wedding.Summary, error)
	GuestStatsByWedding(ctx context.Context, weddingID uuid.UUID) (*guest.Stats, error)
	GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}
