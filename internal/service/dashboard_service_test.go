package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"weddingTasks/internal/models/guest"
	"weddingTasks/internal/models/task"
	"weddingTasks/internal/models/wedding"
	"weddingTasks/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func taskWithStatus(weddingID uuid.UUID, status task.Status) *task.Task {
	return &task.Task{
		UUID:      uuid.New(),
		WeddingID: weddingID,
		Title:     "task " + string(status),
		Status:    status,
		CreatedAt: time.Now(),
	}
}

// TestBuildPartition: корзины не пересекаются и покрывают весь список
func TestBuildPartition(t *testing.T) {
	weddingID := uuid.New()

	tasks := []*task.Task{
		taskWithStatus(weddingID, task.StatusPendingAcceptance),
		taskWithStatus(weddingID, task.StatusPendingAcceptance),
		taskWithStatus(weddingID, task.StatusAccepted),
		taskWithStatus(weddingID, task.StatusInProgress),
		taskWithStatus(weddingID, task.StatusCompleted),
		taskWithStatus(weddingID, task.StatusRejected),
	}

	p := service.BuildPartition(tasks)

	assert.Equal(t, 2, p.PendingCount)
	assert.Equal(t, 2, p.ActiveCount)
	assert.Equal(t, 2, p.HistoryCount)
	assert.Equal(t, len(tasks), p.PendingCount+p.ActiveCount+p.HistoryCount)

	seen := map[uuid.UUID]int{}
	for _, bucket := range [][]*task.Task{p.Pending, p.Active, p.History} {
		for _, item := range bucket {
			seen[item.UUID]++
		}
	}
	for _, item := range tasks {
		assert.Equal(t, 1, seen[item.UUID], "каждая задача ровно в одной корзине")
	}

	for _, item := range p.Active {
		assert.True(t, item.Status == task.StatusAccepted || item.Status == task.StatusInProgress)
	}
	for _, item := range p.History {
		assert.True(t, item.Status == task.StatusCompleted || item.Status == task.StatusRejected)
	}
}

func TestBuildPartition_Empty(t *testing.T) {
	p := service.BuildPartition(nil)

	// пустые срезы, не nil: json-ответ отдаёт [], а не null
	assert.NotNil(t, p.Pending)
	assert.NotNil(t, p.Active)
	assert.NotNil(t, p.History)
	assert.Equal(t, 0, p.PendingCount+p.ActiveCount+p.HistoryCount)
}

// TestActivePredicates: два определения "активна" расходятся ровно на REJECTED
// и PENDING_ACCEPTANCE
func TestActivePredicates(t *testing.T) {
	weddingID := uuid.New()

	tests := []struct {
		status       task.Status
		lifecycle    bool
		filterToggle bool
	}{
		{task.StatusPendingAcceptance, false, true},
		{task.StatusAccepted, true, true},
		{task.StatusInProgress, true, true},
		{task.StatusCompleted, false, false},
		{task.StatusRejected, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			item := taskWithStatus(weddingID, tt.status)
			assert.Equal(t, tt.lifecycle, service.LifecyclePartitionActive(item))
			assert.Equal(t, tt.filterToggle, service.FilterToggleActive(item))
		})
	}
}

func TestFilterTasks(t *testing.T) {
	weddingID := uuid.New()

	flowers := taskWithStatus(weddingID, task.StatusAccepted)
	flowers.Title = "Order Flowers"
	flowers.Description = "roses and peonies"

	cake := taskWithStatus(weddingID, task.StatusCompleted)
	cake.Title = "Cake tasting"

	rejected := taskWithStatus(weddingID, task.StatusRejected)
	rejected.Title = "Fireworks"

	all := []*task.Task{flowers, cake, rejected}

	t.Run("active toggle keeps rejected", func(t *testing.T) {
		res := service.FilterTasks(all, "", false)
		require.Len(t, res, 2)
		assert.Contains(t, res, flowers)
		assert.Contains(t, res, rejected)
	})

	t.Run("completed toggle", func(t *testing.T) {
		res := service.FilterTasks(all, "", true)
		require.Len(t, res, 1)
		assert.Equal(t, cake, res[0])
	})

	t.Run("case-insensitive search over title and description", func(t *testing.T) {
		res := service.FilterTasks(all, "PEONIES", false)
		require.Len(t, res, 1)
		assert.Equal(t, flowers, res[0])
	})

	t.Run("no match", func(t *testing.T) {
		res := service.FilterTasks(all, "band", false)
		assert.Empty(t, res)
	})
}

func TestSortByDueDate(t *testing.T) {
	weddingID := uuid.New()
	now := time.Now()

	early := taskWithStatus(weddingID, task.StatusAccepted)
	earlyDue := now.Add(24 * time.Hour)
	early.DueDate = &earlyDue

	late := taskWithStatus(weddingID, task.StatusAccepted)
	lateDue := now.Add(72 * time.Hour)
	late.DueDate = &lateDue

	noDue := taskWithStatus(weddingID, task.StatusAccepted)

	tasks := []*task.Task{noDue, late, early}
	service.SortByDueDate(tasks)

	assert.Equal(t, early, tasks[0])
	assert.Equal(t, late, tasks[1])
	assert.Equal(t, noDue, tasks[2], "задачи без дедлайна в конце")
}

// TestDashboardService_ForWedding тестирует сборку дашборда свадьбы
func TestDashboardService_ForWedding(t *testing.T) {
	weddingID := uuid.New()

	t.Run("success - summary and guest stats merged", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockDir := new(MockDirectoryRepository)

		mockRepo.On("GetByWedding", mock.Anything, weddingID).
			Return([]*task.Task{taskWithStatus(weddingID, task.StatusAccepted)}, nil)
		mockDir.On("GetWeddingSummary", mock.Anything, weddingID).
			Return(&wedding.Summary{ID: weddingID, Name: "Smith wedding"}, nil)
		mockDir.On("GuestStatsByWedding", mock.Anything, weddingID).
			Return(&guest.Stats{WeddingID: weddingID, Total: 120, Confirmed: 80, CheckedIn: 0}, nil)

		svc := service.NewDashboardService(mockRepo, mockDir)
		dashboard, err := svc.ForWedding(context.Background(), weddingID)

		require.NoError(t, err)
		require.NotNil(t, dashboard.Wedding)
		assert.Equal(t, "Smith wedding", dashboard.Wedding.Name)
		assert.Equal(t, 120, dashboard.Guests.Total)
		assert.Equal(t, 1, dashboard.Tasks.ActiveCount)
	})

	t.Run("collaborator failures degrade to zero values", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockDir := new(MockDirectoryRepository)

		mockRepo.On("GetByWedding", mock.Anything, weddingID).
			Return([]*task.Task{}, nil)
		mockDir.On("GetWeddingSummary", mock.Anything, weddingID).
			Return(nil, errors.New("timeout"))
		mockDir.On("GuestStatsByWedding", mock.Anything, weddingID).
			Return(nil, errors.New("timeout"))

		svc := service.NewDashboardService(mockRepo, mockDir)
		dashboard, err := svc.ForWedding(context.Background(), weddingID)

		require.NoError(t, err, "падение коллаборатора не роняет дашборд")
		assert.Nil(t, dashboard.Wedding)
		assert.Equal(t, weddingID, dashboard.Guests.WeddingID)
		assert.Equal(t, 0, dashboard.Guests.Total)
	})

	t.Run("task store failure is fatal", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockDir := new(MockDirectoryRepository)

		mockRepo.On("GetByWedding", mock.Anything, weddingID).
			Return(nil, errors.New("connection refused"))

		svc := service.NewDashboardService(mockRepo, mockDir)
		dashboard, err := svc.ForWedding(context.Background(), weddingID)

		require.Error(t, err)
		assert.Nil(t, dashboard)
	})
}

func TestDashboardService_ForProtocol(t *testing.T) {
	weddingID := uuid.New()
	protocolID := uuid.New()

	mockRepo := new(MockTaskRepository)
	mockDir := new(MockDirectoryRepository)

	mockRepo.On("GetByProtocol", mock.Anything, protocolID).
		Return([]*task.Task{
			taskWithStatus(weddingID, task.StatusPendingAcceptance),
			taskWithStatus(weddingID, task.StatusCompleted),
		}, nil)

	svc := service.NewDashboardService(mockRepo, mockDir)
	dashboard, err := svc.ForProtocol(context.Background(), protocolID)

	require.NoError(t, err)
	assert.Equal(t, protocolID, dashboard.ProtocolID)
	assert.Equal(t, 1, dashboard.Tasks.PendingCount)
	assert.Equal(t, 1, dashboard.Tasks.HistoryCount)
}

func TestDashboardService_WeddingSummaries(t *testing.T) {
	weddingA := uuid.New()
	weddingB := uuid.New()

	mockRepo := new(MockTaskRepository)
	mockDir := new(MockDirectoryRepository)

	// свадьба A встречается дважды, но запрашивается один раз
	mockDir.On("GetWeddingSummary", mock.Anything, weddingA).
		Return(&wedding.Summary{ID: weddingA, Name: "A"}, nil).Once()
	mockDir.On("GetWeddingSummary", mock.Anything, weddingB).
		Return(nil, errors.New("timeout")).Once()

	tasks := []*task.Task{
		taskWithStatus(weddingA, task.StatusAccepted),
		taskWithStatus(weddingA, task.StatusPendingAcceptance),
		taskWithStatus(weddingB, task.StatusAccepted),
	}

	svc := service.NewDashboardService(mockRepo, mockDir)
	summaries := svc.WeddingSummaries(context.Background(), tasks)

	require.Len(t, summaries, 1)
	assert.Equal(t, "A", summaries[weddingA].Name)
	mockDir.AssertExpectations(t)
}
