package service

import (
	"context"
	"errors"
	"fmt"

	"weddingTasks/internal/logger"
	"weddingTasks/internal/models/task"
	"weddingTasks/internal/models/wedding"
	repo "weddingTasks/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResolvedAssignment - свадьба и роль, в которой сотрудник на неё назначен
type ResolvedAssignment struct {
	WeddingID uuid.UUID        `json:"wedding_id"`
	Role      task.Role        `json:"role"`
	Wedding   *wedding.Summary `json:"wedding,omitempty"`
}

// AssignmentResolver отвечает на вопрос "кто и над чем имеет право действовать".
// Только чтение, без мутаций и без кеша.
type AssignmentResolver struct {
	directory DirectoryRepository
}

func NewAssignmentResolver(directory DirectoryRepository) AssignmentResolver {
	return AssignmentResolver{
		directory: directory,
	}
}

// ResolveAssignments - список свадеб/ролей, доступных сотруднику
func (r *AssignmentResolver) ResolveAssignments(ctx context.Context, staffID uuid.UUID) ([]ResolvedAssignment, error) {
	assignments, err := r.directory.GetAssignmentsByStaff(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("получение назначений: %w", err)
	}

	resolved := []ResolvedAssignment{}
	for _, a := range assignments {
		roles := []task.Role{}
		if a.ManagerID != nil && *a.ManagerID == staffID {
			roles = append(roles, task.RoleManager)
		}
		if a.ProtocolID != nil && *a.ProtocolID == staffID {
			roles = append(roles, task.RoleProtocol)
		}
		if a.CoupleID == staffID {
			roles = append(roles, task.RoleCouple)
		}

		// сводка свадьбы - только для отображения, её отсутствие не ошибка
		summary, err := r.directory.GetWeddingSummary(ctx, a.WeddingID)
		if err != nil {
			logger.Warn("Service: Не удалось получить сводку свадьбы",
				zap.String("wedding_id", a.WeddingID.String()),
				zap.Error(err))
			summary = nil
		}

		for _, role := range roles {
			resolved = append(resolved, ResolvedAssignment{
				WeddingID: a.WeddingID,
				Role:      role,
				Wedding:   summary,
			})
		}
	}

	return resolved, nil
}

// IsAuthorized: именованный исполнитель - только он; иначе любой, кто держит
// назначение с ролью задачи на её свадьбе. Состояние назначений перечитывается
// на каждый вызов - они меняются между запросами.
func (r *AssignmentResolver) IsAuthorized(ctx context.Context, t *task.Task, actorID uuid.UUID) (bool, error) {
	if t.AssignedProtocolID != nil {
		return *t.AssignedProtocolID == actorID, nil
	}

	a, err := r.directory.GetAssignmentByWedding(ctx, t.WeddingID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("получение назначения: %w", err)
	}

	switch t.AssignedRole {
	case task.RoleManager:
		return a.ManagerID != nil && *a.ManagerID == actorID, nil
	case task.RoleProtocol:
		return a.ProtocolID != nil && *a.ProtocolID == actorID, nil
	case task.RoleCouple:
		return a.CoupleID == actorID, nil
	}
	return false, nil
}
