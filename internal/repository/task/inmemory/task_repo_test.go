package inmemory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"weddingTasks/internal/models/task"
	repo "weddingTasks/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingTask(weddingID uuid.UUID) *task.Task {
	return &task.Task{
		UUID:         uuid.New(),
		WeddingID:    weddingID,
		Title:        "Book photographer",
		Description:  "shortlist three studios",
		Category:     task.CategoryGeneral,
		AssignedRole: task.RoleManager,
		Status:       task.StatusPendingAcceptance,
	}
}

func TestTaskStorage_CreateAndGet(t *testing.T) {
	storage := NewTaskStorage()
	ctx := context.Background()
	weddingID := uuid.New()

	created := newPendingTask(weddingID)
	require.NoError(t, storage.Create(ctx, created))

	got, err := storage.GetByID(ctx, created.UUID)
	require.NoError(t, err)
	assert.Equal(t, created.UUID, got.UUID)
	assert.Equal(t, task.StatusPendingAcceptance, got.Status)
	assert.False(t, got.CreatedAt.IsZero())

	// хранилище отдаёт копию: правка результата не видна внутри
	got.Title = "hacked"
	again, err := storage.GetByID(ctx, created.UUID)
	require.NoError(t, err)
	assert.Equal(t, "Book photographer", again.Title)

	_, err = storage.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestTaskStorage_GetByWedding(t *testing.T) {
	storage := NewTaskStorage()
	ctx := context.Background()
	weddingA := uuid.New()
	weddingB := uuid.New()

	first := newPendingTask(weddingA)
	second := newPendingTask(weddingA)
	other := newPendingTask(weddingB)
	require.NoError(t, storage.Create(ctx, first))
	require.NoError(t, storage.Create(ctx, second))
	require.NoError(t, storage.Create(ctx, other))

	tasks, err := storage.GetByWedding(ctx, weddingA)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	// порядок вставки сохраняется
	assert.Equal(t, first.UUID, tasks[0].UUID)
	assert.Equal(t, second.UUID, tasks[1].UUID)

	empty, err := storage.GetByWedding(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestTaskStorage_GetByProtocol(t *testing.T) {
	storage := NewTaskStorage()
	ctx := context.Background()
	weddingID := uuid.New()
	protocolID := uuid.New()

	named := newPendingTask(weddingID)
	named.AssignedProtocolID = &protocolID
	unnamed := newPendingTask(weddingID)
	require.NoError(t, storage.Create(ctx, named))
	require.NoError(t, storage.Create(ctx, unnamed))

	tasks, err := storage.GetByProtocol(ctx, protocolID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, named.UUID, tasks[0].UUID)
}

func TestTaskStorage_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	weddingID := uuid.New()

	t.Run("success - matching precondition", func(t *testing.T) {
		storage := NewTaskStorage()
		created := newPendingTask(weddingID)
		require.NoError(t, storage.Create(ctx, created))

		updated, err := storage.UpdateStatus(ctx, created.UUID,
			[]task.Status{task.StatusPendingAcceptance}, task.StatusAccepted, nil)
		require.NoError(t, err)
		assert.Equal(t, task.StatusAccepted, updated.Status)
		require.NotNil(t, updated.UpdatedAt)
	})

	t.Run("error - precondition mismatch", func(t *testing.T) {
		storage := NewTaskStorage()
		created := newPendingTask(weddingID)
		require.NoError(t, storage.Create(ctx, created))

		_, err := storage.UpdateStatus(ctx, created.UUID,
			[]task.Status{task.StatusAccepted, task.StatusInProgress}, task.StatusCompleted, nil)
		require.ErrorIs(t, err, repo.ErrStatusConflict)

		// статус не изменился
		got, err := storage.GetByID(ctx, created.UUID)
		require.NoError(t, err)
		assert.Equal(t, task.StatusPendingAcceptance, got.Status)
	})

	t.Run("error - not found", func(t *testing.T) {
		storage := NewTaskStorage()
		_, err := storage.UpdateStatus(ctx, uuid.New(),
			[]task.Status{task.StatusPendingAcceptance}, task.StatusAccepted, nil)
		require.ErrorIs(t, err, repo.ErrNotFound)
	})

	t.Run("rejection reason is stored", func(t *testing.T) {
		storage := NewTaskStorage()
		created := newPendingTask(weddingID)
		require.NoError(t, storage.Create(ctx, created))

		reason := "  venue is booked already  "
		updated, err := storage.UpdateStatus(ctx, created.UUID,
			[]task.Status{task.StatusPendingAcceptance}, task.StatusRejected, &reason)
		require.NoError(t, err)
		require.NotNil(t, updated.RejectionReason)
		assert.Equal(t, reason, *updated.RejectionReason)
	})
}

// TestTaskStorage_ConcurrentAcceptReject: из двух конкурентных переходов из
// PENDING_ACCEPTANCE выигрывает ровно один, второй получает ErrStatusConflict
func TestTaskStorage_ConcurrentAcceptReject(t *testing.T) {
	ctx := context.Background()
	weddingID := uuid.New()

	for i := 0; i < 50; i++ {
		storage := NewTaskStorage()
		created := newPendingTask(weddingID)
		require.NoError(t, storage.Create(ctx, created))

		var wg sync.WaitGroup
		results := make(chan error, 2)
		reason := "not our scope"

		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := storage.UpdateStatus(ctx, created.UUID,
				[]task.Status{task.StatusPendingAcceptance}, task.StatusAccepted, nil)
			results <- err
		}()
		go func() {
			defer wg.Done()
			_, err := storage.UpdateStatus(ctx, created.UUID,
				[]task.Status{task.StatusPendingAcceptance}, task.StatusRejected, &reason)
			results <- err
		}()
		wg.Wait()
		close(results)

		wins, conflicts := 0, 0
		for err := range results {
			switch {
			case err == nil:
				wins++
			case errors.Is(err, repo.ErrStatusConflict):
				conflicts++
			default:
				t.Fatalf("неожиданная ошибка: %v", err)
			}
		}
		require.Equal(t, 1, wins, "ровно один переход применяется")
		require.Equal(t, 1, conflicts)

		got, err := storage.GetByID(ctx, created.UUID)
		require.NoError(t, err)
		assert.Contains(t, []task.Status{task.StatusAccepted, task.StatusRejected}, got.Status)
		if got.Status == task.StatusRejected {
			require.NotNil(t, got.RejectionReason)
		} else {
			assert.Nil(t, got.RejectionReason)
		}
	}
}

func TestTaskStorage_UpdateDetails(t *testing.T) {
	ctx := context.Background()
	weddingID := uuid.New()

	t.Run("success - while pending", func(t *testing.T) {
		storage := NewTaskStorage()
		created := newPendingTask(weddingID)
		require.NoError(t, storage.Create(ctx, created))

		created.Title = "Book videographer"
		require.NoError(t, storage.UpdateDetails(ctx, created))

		got, err := storage.GetByID(ctx, created.UUID)
		require.NoError(t, err)
		assert.Equal(t, "Book videographer", got.Title)
		require.NotNil(t, got.UpdatedAt)
	})

	t.Run("error - after acceptance", func(t *testing.T) {
		storage := NewTaskStorage()
		created := newPendingTask(weddingID)
		require.NoError(t, storage.Create(ctx, created))

		_, err := storage.UpdateStatus(ctx, created.UUID,
			[]task.Status{task.StatusPendingAcceptance}, task.StatusAccepted, nil)
		require.NoError(t, err)

		created.Title = "too late"
		err = storage.UpdateDetails(ctx, created)
		require.ErrorIs(t, err, repo.ErrStatusConflict)
	})
}

func TestTaskStorage_Delete(t *testing.T) {
	storage := NewTaskStorage()
	ctx := context.Background()
	created := newPendingTask(uuid.New())
	require.NoError(t, storage.Create(ctx, created))

	require.NoError(t, storage.Delete(ctx, created.UUID))

	_, err := storage.GetByID(ctx, created.UUID)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	err = storage.Delete(ctx, created.UUID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestTaskStorage_GetDueBetween(t *testing.T) {
	storage := NewTaskStorage()
	ctx := context.Background()
	weddingID := uuid.New()
	now := time.Now()

	within := newPendingTask(weddingID)
	due := now.Add(time.Hour)
	within.DueDate = &due

	outside := newPendingTask(weddingID)
	farDue := now.Add(100 * time.Hour)
	outside.DueDate = &farDue

	noDue := newPendingTask(weddingID)

	completed := newPendingTask(weddingID)
	completedDue := now.Add(time.Hour)
	completed.DueDate = &completedDue

	for _, item := range []*task.Task{within, outside, noDue, completed} {
		require.NoError(t, storage.Create(ctx, item))
	}
	_, err := storage.UpdateStatus(ctx, completed.UUID,
		[]task.Status{task.StatusPendingAcceptance}, task.StatusAccepted, nil)
	require.NoError(t, err)
	_, err = storage.UpdateStatus(ctx, completed.UUID,
		[]task.Status{task.StatusAccepted, task.StatusInProgress}, task.StatusCompleted, nil)
	require.NoError(t, err)

	tasks, err := storage.GetDueBetween(ctx, now.Add(-time.Hour), now.Add(24*time.Hour), 100)
	require.NoError(t, err)
	require.Len(t, tasks, 1, "терминальные и вне окна не попадают")
	assert.Equal(t, within.UUID, tasks[0].UUID)

	limited, err := storage.GetDueBetween(ctx, now.Add(-time.Hour), now.Add(24*time.Hour), 0)
	require.NoError(t, err)
	assert.Empty(t, limited)
}
