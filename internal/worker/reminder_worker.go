package worker

import (
	"context"
	"fmt"
	"time"

	"weddingTasks/internal/logger"
	"weddingTasks/internal/service"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReminderWorker - фоновая проверка приближающихся дедлайнов. Только
// отчитывается в лог: переходы статуса инициируют исключительно акторы,
// автоматических переходов в системе нет.
type ReminderWorker struct {
	repo      service.TaskRepository
	schedule  string
	dueWindow time.Duration
	batchSize int
	cron      *cron.Cron
}

func NewReminderWorker(repo service.TaskRepository, schedule string, dueWindow *time.Duration, batchSize *int) *ReminderWorker {
	var windowToSet time.Duration
	if dueWindow == nil {
		windowToSet = 24 * time.Hour
	} else {
		windowToSet = *dueWindow
	}

	var batchToSet int
	if batchSize == nil {
		batchToSet = 100
	} else {
		batchToSet = *batchSize
	}

	return &ReminderWorker{
		repo:      repo,
		schedule:  schedule,
		dueWindow: windowToSet,
		batchSize: batchToSet,
	}
}

func (w *ReminderWorker) Start(ctx context.Context) error {
	w.cron = cron.New()

	_, err := w.cron.AddFunc(w.schedule, func() {
		logger.Info("Worker: Фоновая проверка дедлайнов", zap.Time("started_at", time.Now()))
		w.Check(ctx)
	})
	if err != nil {
		return fmt.Errorf("планирование проверки дедлайнов: %w", err)
	}

	w.cron.Start()
	logger.Info("Worker: Проверка дедлайнов запланирована", zap.String("schedule", w.schedule))
	return nil
}

func (w *ReminderWorker) Stop() {
	if w.cron == nil {
		return
	}
	stopCtx := w.cron.Stop()
	<-stopCtx.Done()
	logger.Info("Worker: Фоновая проверка остановлена")
}

func (w *ReminderWorker) Check(ctx context.Context) {
	start := time.Now()

	now := time.Now()
	tasks, err := w.repo.GetDueBetween(ctx, now.Add(-w.dueWindow), now.Add(w.dueWindow), w.batchSize)
	if err != nil {
		logger.Warn("Worker: ошибка получения задач", zap.Error(err))
		return
	}

	dueSoon := 0
	overdue := 0

	for _, t := range tasks {
		if t.DueDate == nil || t.Status.IsTerminal() {
			continue
		}

		if t.DueDate.Before(now) {
			overdue++
			logger.Warn("Worker: Дедлайн задачи просрочен",
				zap.String("task_id", t.UUID.String()),
				zap.String("wedding_id", t.WeddingID.String()),
				zap.String("status", string(t.Status)),
				zap.Time("due_date", *t.DueDate))
			continue
		}

		dueSoon++
		logger.Info("Worker: Дедлайн задачи приближается",
			zap.String("task_id", t.UUID.String()),
			zap.String("wedding_id", t.WeddingID.String()),
			zap.String("status", string(t.Status)),
			zap.Time("due_date", *t.DueDate))
	}

	logger.Info(
		"Worker: Завершение проверки дедлайнов",
		zap.Duration("ms", time.Since(start)),
		zap.Int("checked", len(tasks)),
		zap.Int("due_soon", dueSoon),
		zap.Int("overdue", overdue),
	)
}
