package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weddingTasks/internal/logger"
	"weddingTasks/internal/models/task"
	repo "weddingTasks/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, connString string) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = time.Minute * 5

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

const taskColumns = `uuid,
				wedding_id,
				title,
				description,
				category,
				assigned_role,
				assigned_protocol_id,
				status,
				rejection_reason,
				due_date,
				created_at,
				updated_at`

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	err := row.Scan(
		&t.UUID,
		&t.WeddingID,
		&t.Title,
		&t.Description,
		&t.Category,
		&t.AssignedRole,
		&t.AssignedProtocolID,
		&t.Status,
		&t.RejectionReason,
		&t.DueDate,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	query := `INSERT INTO tasks
				(uuid, wedding_id, title, description, category, assigned_role, assigned_protocol_id, status, due_date, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
				RETURNING created_at`

	err := s.pool.QueryRow(ctx, query,
		taskToCreate.UUID,
		taskToCreate.WeddingID,
		taskToCreate.Title,
		taskToCreate.Description,
		taskToCreate.Category,
		taskToCreate.AssignedRole,
		taskToCreate.AssignedProtocolID,
		taskToCreate.Status,
		taskToCreate.DueDate,
	).Scan(&taskToCreate.CreatedAt)

	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	start := time.Now()

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE uuid = $1`

	t, err := scanTask(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return t, nil
}

func (s *Storage) GetByWedding(ctx context.Context, weddingID uuid.UUID) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE wedding_id = $1 ORDER BY created_at`
	return s.queryTasks(ctx, query, weddingID)
}

func (s *Storage) GetByProtocol(ctx context.Context, protocolID uuid.UUID) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE assigned_protocol_id = $1 ORDER BY created_at`
	return s.queryTasks(ctx, query, protocolID)
}

// GetDueBetween - нетерминальные задачи с дедлайном в окне (для напоминаний)
func (s *Storage) GetDueBetween(ctx context.Context, from, to time.Time, limit int) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
				WHERE status NOT IN ('COMPLETED', 'REJECTED')
				AND due_date IS NOT NULL
				AND due_date BETWEEN $1 AND $2
				ORDER BY due_date
				LIMIT $3`
	return s.queryTasks(ctx, query, from, to, limit)
}

func (s *Storage) queryTasks(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования задачи", zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return tasks, nil
}

// UpdateStatus - атомарный check-and-set на колонке status: UPDATE проходит
// только если текущий статус входит в from. Два конкурентных перехода не
// могут выиграть оба - второй получит ErrStatusConflict.
func (s *Storage) UpdateStatus(ctx context.Context, id uuid.UUID, from []task.Status, to task.Status, reason *string) (*task.Task, error) {
	start := time.Now()

	fromStr := make([]string, len(from))
	for i, st := range from {
		fromStr[i] = string(st)
	}

	query := `UPDATE tasks
			SET status = $1,
				rejection_reason = COALESCE($2, rejection_reason),
				updated_at = NOW()
			WHERE uuid = $3 AND status = ANY($4)
			RETURNING ` + taskColumns

	t, err := scanTask(s.pool.QueryRow(ctx, query, to, reason, id, fromStr))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// либо задачи нет, либо статус уже ушёл - различаем перечитыванием
			if _, getErr := s.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			logger.Warn("Repository: Конфликт статуса при переходе",
				zap.String("task_id", id.String()),
				zap.String("target_status", string(to)))
			return nil, repo.ErrStatusConflict
		}
		logger.Error("Repository: Не удалось обновить статус задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("обновление статуса: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return t, nil
}

// UpdateDetails - правка текста/категории/дедлайна, только пока задача не принята
func (s *Storage) UpdateDetails(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()

	query := `UPDATE tasks
			SET title = $1,
				description = $2,
				category = $3,
				due_date = $4,
				updated_at = NOW()
			WHERE uuid = $5 AND status = $6
			RETURNING updated_at`

	err := s.pool.QueryRow(ctx, query,
		taskToUpdate.Title,
		taskToUpdate.Description,
		taskToUpdate.Category,
		taskToUpdate.DueDate,
		taskToUpdate.UUID,
		task.StatusPendingAcceptance,
	).Scan(&taskToUpdate.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := s.GetByID(ctx, taskToUpdate.UUID); getErr != nil {
				return getErr
			}
			return repo.ErrStatusConflict
		}
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	query := `DELETE FROM tasks WHERE uuid = $1`

	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		logger.Error("Repository: Удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}
