package handlers

import (
	"errors"
	"net/http"
	"time"

	"weddingTasks/internal/logger"
	repo "weddingTasks/internal/repository"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// read-эндпоинты дашбордов и коллабораторов

func (s *TaskHandler) GetWeddingDashboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	weddingID, ok := parseIDParam(w, r, "weddingId")
	if !ok {
		return
	}

	dashboard, err := s.Dashboard.ForWedding(r.Context(), weddingID)
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err, zap.String("operation", "wedding_dashboard"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Дашборд свадьбы собран",
		zap.String("wedding_id", weddingID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dashboard)
}

func (s *TaskHandler) GetProtocolDashboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	protocolID, ok := parseIDParam(w, r, "protocolId")
	if !ok {
		return
	}

	dashboard, err := s.Dashboard.ForProtocol(r.Context(), protocolID)
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err, zap.String("operation", "protocol_dashboard"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Дашборд исполнителя собран",
		zap.String("protocol_id", protocolID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dashboard)
}

func (s *TaskHandler) GetAssignmentsByProtocol(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	protocolID, ok := parseIDParam(w, r, "protocolId")
	if !ok {
		return
	}

	resolved, err := s.Resolver.ResolveAssignments(r.Context(), protocolID)
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err, zap.String("operation", "resolve_assignments"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Назначения получены",
		zap.Int("count", len(resolved)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, resolved)
}

func (s *TaskHandler) GetWeddingByID(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	weddingID, ok := parseIDParam(w, r, "weddingId")
	if !ok {
		return
	}

	summary, err := s.Directory.GetWeddingSummary(r.Context(), weddingID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			responseWithError(w, http.StatusNotFound, "свадьба не найдена")
			return
		}
		logger.Error("HTTP: Ошибка Service", err, zap.String("operation", "get_wedding"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithBody(w, http.StatusOK, summary)
}

func (s *TaskHandler) GetGuestStats(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	weddingID, ok := parseIDParam(w, r, "weddingId")
	if !ok {
		return
	}

	stats, err := s.Directory.GuestStatsByWedding(r.Context(), weddingID)
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err, zap.String("operation", "guest_stats"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithBody(w, http.StatusOK, stats)
}

// GetUserByClerk - резолюция clerk id внешнего auth-провайдера во
// внутреннего пользователя базы
func (s *TaskHandler) GetUserByClerk(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	clerkID := chi.URLParam(r, "clerkId")
	if clerkID == "" {
		responseWithError(w, http.StatusBadRequest, "clerkId не может быть пустым")
		return
	}

	foundUser, err := s.Directory.GetUserByClerkID(r.Context(), clerkID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			responseWithError(w, http.StatusNotFound, "пользователь не найден")
			return
		}
		logger.Error("HTTP: Ошибка Service", err, zap.String("operation", "get_user_by_clerk"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithBody(w, http.StatusOK, foundUser)
}
