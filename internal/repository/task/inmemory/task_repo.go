package inmemory

import (
	"context"
	"sync"
	"time"

	"weddingTasks/internal/models/task"
	repo "weddingTasks/internal/repository"

	"github.com/google/uuid"
)

type TaskStorage struct {
	storage map[uuid.UUID]*task.Task
	mtx     *sync.RWMutex
	ids     []uuid.UUID
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[uuid.UUID]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []uuid.UUID{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	taskToCreate.CreatedAt = time.Now()

	s.storage[taskToCreate.UUID] = clone(taskToCreate)
	s.ids = append(s.ids, taskToCreate.UUID)
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return clone(taskToGet), nil
}

func (s *TaskStorage) GetByWedding(ctx context.Context, weddingID uuid.UUID) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, id := range s.ids {
		t, ok := s.storage[id]
		if !ok || t.WeddingID != weddingID {
			continue
		}
		res = append(res, clone(t))
	}
	return res, nil
}

func (s *TaskStorage) GetByProtocol(ctx context.Context, protocolID uuid.UUID) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, id := range s.ids {
		t, ok := s.storage[id]
		if !ok || t.AssignedProtocolID == nil || *t.AssignedProtocolID != protocolID {
			continue
		}
		res = append(res, clone(t))
	}
	return res, nil
}

// UpdateStatus - атомарный check-and-set: переход применяется только если
// текущий статус входит в from. Проверка и запись под одним замком,
// поэтому из двух конкурентных переходов выигрывает ровно один.
func (s *TaskStorage) UpdateStatus(ctx context.Context, id uuid.UUID, from []task.Status, to task.Status, reason *string) (*task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}

	matched := false
	for _, st := range from {
		if existing.Status == st {
			matched = true
			break
		}
	}
	if !matched {
		return nil, repo.ErrStatusConflict
	}

	now := time.Now()
	existing.Status = to
	existing.UpdatedAt = &now
	if reason != nil {
		existing.RejectionReason = reason
	}

	return clone(existing), nil
}

// UpdateDetails - правка текста/категории/дедлайна, только пока задача
// не принята
func (s *TaskStorage) UpdateDetails(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[taskToUpdate.UUID]
	if !ok {
		return repo.ErrNotFound
	}
	if existing.Status != task.StatusPendingAcceptance {
		return repo.ErrStatusConflict
	}

	now := time.Now()
	existing.Title = taskToUpdate.Title
	existing.Description = taskToUpdate.Description
	existing.Category = taskToUpdate.Category
	existing.DueDate = taskToUpdate.DueDate
	existing.UpdatedAt = &now

	return nil
}

func (s *TaskStorage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}

// GetDueBetween - нетерминальные задачи с дедлайном в окне (для напоминаний)
func (s *TaskStorage) GetDueBetween(ctx context.Context, from, to time.Time, limit int) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, id := range s.ids {
		if len(res) >= limit {
			break
		}

		t, ok := s.storage[id]
		if !ok || t.DueDate == nil || t.Status.IsTerminal() {
			continue
		}
		if t.DueDate.Before(from) || t.DueDate.After(to) {
			continue
		}

		res = append(res, clone(t))
	}
	return res, nil
}

// копия, чтобы вызывающий не трогал хранимый объект мимо замка
func clone(t *task.Task) *task.Task {
	copied := *t
	if t.AssignedProtocolID != nil {
		id := *t.AssignedProtocolID
		copied.AssignedProtocolID = &id
	}
	if t.RejectionReason != nil {
		reason := *t.RejectionReason
		copied.RejectionReason = &reason
	}
	if t.DueDate != nil {
		due := *t.DueDate
		copied.DueDate = &due
	}
	if t.UpdatedAt != nil {
		upd := *t.UpdatedAt
		copied.UpdatedAt = &upd
	}
	return &copied
}
