package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weddingTasks/internal/logger"
	"weddingTasks/internal/models/assignment"
	"weddingTasks/internal/models/guest"
	"weddingTasks/internal/models/user"
	"weddingTasks/internal/models/wedding"
	repo "weddingTasks/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Storage - read-путь по сущностям-коллабораторам: назначения, свадьбы,
// гости, пользователи. Движок задач их читает, но не владеет ими.
type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, connString string) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = 5
	config.MinConns = 1
	config.MaxConnIdleTime = time.Minute * 5

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
}

const assignmentColumns = `id, wedding_id, couple_id, manager_id, protocol_id, protocol_job, status, created_at, updated_at`

func scanAssignment(row pgx.Row) (*assignment.Assignment, error) {
	a := &assignment.Assignment{}
	err := row.Scan(
		&a.ID,
		&a.WeddingID,
		&a.CoupleID,
		&a.ManagerID,
		&a.ProtocolID,
		&a.ProtocolJob,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Storage) GetAssignmentByWedding(ctx context.Context, weddingID uuid.UUID) (*assignment.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM wedding_assignments WHERE wedding_id = $1`

	a, err := scanAssignment(s.pool.QueryRow(ctx, query, weddingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить назначение", err)
		return nil, fmt.Errorf("получение назначения: %w", err)
	}
	return a, nil
}

// GetAssignmentsByStaff - все назначения, где сотрудник занимает любой слот
func (s *Storage) GetAssignmentsByStaff(ctx context.Context, staffID uuid.UUID) ([]*assignment.Assignment, error) {
	start := time.Now()

	query := `SELECT ` + assignmentColumns + ` FROM wedding_assignments
				WHERE manager_id = $1 OR protocol_id = $1 OR couple_id = $1
				ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query, staffID)
	if err != nil {
		logger.Error("Repository: Не удалось получить назначения", err)
		return nil, fmt.Errorf("получение назначений: %w", err)
	}
	defer rows.Close()

	assignments := []*assignment.Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования назначения", zap.Error(err))
			continue
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return assignments, nil
}

func (s *Storage) GetWeddingSummary(ctx context.Context, id uuid.UUID) (*wedding.Summary, error) {
	query := `SELECT id, name, date, venue FROM weddings WHERE id = $1`

	w := &wedding.Summary{}
	err := s.pool.QueryRow(ctx, query, id).Scan(&w.ID, &w.Name, &w.Date, &w.Venue)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить свадьбу", err)
		return nil, fmt.Errorf("получение свадьбы: %w", err)
	}
	return w, nil
}

// GuestStatsByWedding - сводка реестра гостей одним запросом
func (s *Storage) GuestStatsByWedding(ctx context.Context, weddingID uuid.UUID) (*guest.Stats, error) {
	start := time.Now()

	query := `SELECT
				COUNT(*),
				COUNT(*) FILTER (WHERE rsvp_status = 'CONFIRMED'),
				COUNT(*) FILTER (WHERE checked_in)
			FROM guests WHERE wedding_id = $1`

	stats := &guest.Stats{WeddingID: weddingID}
	err := s.pool.QueryRow(ctx, query, weddingID).Scan(&stats.Total, &stats.Confirmed, &stats.CheckedIn)
	if err != nil {
		logger.Error("Repository: Не удалось получить сводку по гостям", err)
		return nil, fmt.Errorf("сводка по гостям: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return stats, nil
}

func (s *Storage) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	query := `SELECT uuid, clerk_id, name, email, role, created_at FROM users WHERE clerk_id = $1`
	return s.scanUser(s.pool.QueryRow(ctx, query, clerkID))
}

func (s *Storage) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `SELECT uuid, clerk_id, name, email, role, created_at FROM users WHERE uuid = $1`
	return s.scanUser(s.pool.QueryRow(ctx, query, id))
}

func (s *Storage) scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(&u.UUID, &u.ClerkID, &u.Name, &u.Email, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить пользователя", err)
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return u, nil
}
