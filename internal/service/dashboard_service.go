package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"weddingTasks/internal/logger"
	"weddingTasks/internal/models/guest"
	"weddingTasks/internal/models/task"
	"weddingTasks/internal/models/wedding"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Partition - три взаимоисключающих корзины дашборда. Объединение корзин
// всегда равно исходному набору задач.
type Partition struct {
	Pending []*task.Task `json:"pending"`
	Active  []*task.Task `json:"active"`
	History []*task.Task `json:"history"`

	PendingCount int `json:"pending_count"`
	ActiveCount  int `json:"active_count"`
	HistoryCount int `json:"history_count"`
}

// WeddingDashboard - корзины задач свадьбы плюс сводка по гостям
type WeddingDashboard struct {
	WeddingID uuid.UUID        `json:"wedding_id"`
	Wedding   *wedding.Summary `json:"wedding,omitempty"`
	Tasks     Partition        `json:"tasks"`
	Guests    guest.Stats      `json:"guests"`
}

// ProtocolDashboard - корзины задач одного сотрудника
type ProtocolDashboard struct {
	ProtocolID uuid.UUID `json:"protocol_id"`
	Tasks      Partition `json:"tasks"`
}

type DashboardService struct {
	repo      TaskRepository
	directory DirectoryRepository
}

func NewDashboardService(taskRepo TaskRepository, directory DirectoryRepository) DashboardService {
	return DashboardService{
		repo:      taskRepo,
		directory: directory,
	}
}

// BuildPartition раскладывает плоский список по статусам:
// pending / active (ACCEPTED, IN_PROGRESS) / history (COMPLETED, REJECTED)
func BuildPartition(tasks []*task.Task) Partition {
	p := Partition{
		Pending: []*task.Task{},
		Active:  []*task.Task{},
		History: []*task.Task{},
	}

	for _, t := range tasks {
		switch {
		case t.Status == task.StatusPendingAcceptance:
			p.Pending = append(p.Pending, t)
		case LifecyclePartitionActive(t):
			p.Active = append(p.Active, t)
		default:
			p.History = append(p.History, t)
		}
	}

	p.PendingCount = len(p.Pending)
	p.ActiveCount = len(p.Active)
	p.HistoryCount = len(p.History)
	return p
}

// LifecyclePartitionActive - "активна" в смысле корзин дашборда
func LifecyclePartitionActive(t *task.Task) bool {
	return t.Status == task.StatusAccepted || t.Status == task.StatusInProgress
}

// FilterToggleActive - "активна" в смысле переключателя списка: всё, что не
// COMPLETED (включая REJECTED). Определения расходятся намеренно - так ведут
// себя существующие клиенты, и каждое живёт под своим именем.
func FilterToggleActive(t *task.Task) bool {
	return t.Status != task.StatusCompleted
}

// FilterTasks - клиентский фильтр списка: поиск по title/description без
// учёта регистра плюс переключатель active/completed
func FilterTasks(tasks []*task.Task, query string, completedOnly bool) []*task.Task {
	needle := strings.ToLower(strings.TrimSpace(query))

	res := []*task.Task{}
	for _, t := range tasks {
		if completedOnly && FilterToggleActive(t) {
			continue
		}
		if !completedOnly && !FilterToggleActive(t) {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			continue
		}
		res = append(res, t)
	}
	return res
}

// SortByDueDate - по возрастанию дедлайна; задачи без дедлайна в конце
func SortByDueDate(tasks []*task.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].DueDate == nil {
			return false
		}
		if tasks[j].DueDate == nil {
			return true
		}
		return tasks[i].DueDate.Before(*tasks[j].DueDate)
	})
}

func (s *DashboardService) ForWedding(ctx context.Context, weddingID uuid.UUID) (*WeddingDashboard, error) {
	tasks, err := s.repo.GetByWedding(ctx, weddingID)
	if err != nil {
		return nil, fmt.Errorf("получение задач свадьбы: %w", err)
	}

	dashboard := &WeddingDashboard{
		WeddingID: weddingID,
		Tasks:     BuildPartition(tasks),
		Guests:    guest.Stats{WeddingID: weddingID},
	}

	// сводка свадьбы и статистика гостей деградируют до пустых значений:
	// падение коллаборатора не роняет весь дашборд
	summary, err := s.directory.GetWeddingSummary(ctx, weddingID)
	if err != nil {
		logger.Warn("Service: Сводка свадьбы недоступна",
			zap.String("wedding_id", weddingID.String()),
			zap.Error(err))
	} else {
		dashboard.Wedding = summary
	}

	stats, err := s.directory.GuestStatsByWedding(ctx, weddingID)
	if err != nil {
		logger.Warn("Service: Статистика гостей недоступна",
			zap.String("wedding_id", weddingID.String()),
			zap.Error(err))
	} else {
		dashboard.Guests = *stats
	}

	return dashboard, nil
}

func (s *DashboardService) ForProtocol(ctx context.Context, protocolID uuid.UUID) (*ProtocolDashboard, error) {
	tasks, err := s.repo.GetByProtocol(ctx, protocolID)
	if err != nil {
		return nil, fmt.Errorf("получение задач исполнителя: %w", err)
	}

	return &ProtocolDashboard{
		ProtocolID: protocolID,
		Tasks:      BuildPartition(tasks),
	}, nil
}

// WeddingSummaries - денормализованные сводки для списка задач; недоступные
// свадьбы просто пропускаются
func (s *DashboardService) WeddingSummaries(ctx context.Context, tasks []*task.Task) map[uuid.UUID]*wedding.Summary {
	res := map[uuid.UUID]*wedding.Summary{}
	for _, t := range tasks {
		if _, seen := res[t.WeddingID]; seen {
			continue
		}
		summary, err := s.directory.GetWeddingSummary(ctx, t.WeddingID)
		if err != nil {
			logger.Warn("Service: Сводка свадьбы недоступна",
				zap.String("wedding_id", t.WeddingID.String()),
				zap.Error(err))
			continue
		}
		res[t.WeddingID] = summary
	}
	return res
}
