package inmemory

import (
	"context"
	"sync"

	"weddingTasks/internal/models/assignment"
	"weddingTasks/internal/models/guest"
	"weddingTasks/internal/models/user"
	"weddingTasks/internal/models/wedding"
	repo "weddingTasks/internal/repository"

	"github.com/google/uuid"
)

// Storage - in-memory вариант справочника коллабораторов (dev-режим и тесты)
type Storage struct {
	mtx         *sync.RWMutex
	assignments map[uuid.UUID]*assignment.Assignment // по wedding_id
	weddings    map[uuid.UUID]*wedding.Summary
	guestStats  map[uuid.UUID]*guest.Stats
	users       map[uuid.UUID]*user.User
	byClerkID   map[string]uuid.UUID
}

func NewStorage() *Storage {
	return &Storage{
		mtx:         &sync.RWMutex{},
		assignments: make(map[uuid.UUID]*assignment.Assignment),
		weddings:    make(map[uuid.UUID]*wedding.Summary),
		guestStats:  make(map[uuid.UUID]*guest.Stats),
		users:       make(map[uuid.UUID]*user.User),
		byClerkID:   make(map[string]uuid.UUID),
	}
}

func (s *Storage) PutAssignment(a *assignment.Assignment) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.assignments[a.WeddingID] = a
}

func (s *Storage) PutWedding(w *wedding.Summary) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.weddings[w.ID] = w
}

func (s *Storage) PutGuestStats(stats *guest.Stats) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.guestStats[stats.WeddingID] = stats
}

func (s *Storage) PutUser(u *user.User) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.users[u.UUID] = u
	s.byClerkID[u.ClerkID] = u.UUID
}

func (s *Storage) GetAssignmentByWedding(ctx context.Context, weddingID uuid.UUID) (*assignment.Assignment, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	a, ok := s.assignments[weddingID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return a, nil
}

func (s *Storage) GetAssignmentsByStaff(ctx context.Context, staffID uuid.UUID) ([]*assignment.Assignment, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*assignment.Assignment{}
	for _, a := range s.assignments {
		if a.CoupleID == staffID ||
			(a.ManagerID != nil && *a.ManagerID == staffID) ||
			(a.ProtocolID != nil && *a.ProtocolID == staffID) {
			res = append(res, a)
		}
	}
	return res, nil
}

func (s *Storage) GetWeddingSummary(ctx context.Context, id uuid.UUID) (*wedding.Summary, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	w, ok := s.weddings[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return w, nil
}

func (s *Storage) GuestStatsByWedding(ctx context.Context, weddingID uuid.UUID) (*guest.Stats, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	stats, ok := s.guestStats[weddingID]
	if !ok {
		// реестр гостей может быть пуст - это не ошибка
		return &guest.Stats{WeddingID: weddingID}, nil
	}
	return stats, nil
}

func (s *Storage) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	id, ok := s.byClerkID[clerkID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return s.users[id], nil
}

func (s *Storage) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return u, nil
}
