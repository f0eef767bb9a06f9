package handlers

import (
	"errors"
	"net/http"

	"weddingTasks/internal/logger"
	"weddingTasks/internal/service"

	"go.uber.org/zap"
)

// handleBusinessError переводит бизнес-ошибку сервиса в HTTP-ответ.
// Возвращает false, если ошибка не бизнесовая (тогда это 500 у вызывающего).
func handleBusinessError(w http.ResponseWriter, err error) bool {
	var businessErr *service.BusinessError
	if !errors.As(err, &businessErr) {
		return false
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)

	logger.Warn("HTTP: Бизнес-ошибка",
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode))

	responseWithJSON(w, statusCode,
		toPayload("error", businessErr.Code),
		toPayload("message", businessErr.Message),
		toPayload("details", businessErr.Details),
	)
	return true
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeUnauthorized:
		return http.StatusForbidden
	case service.CodeInvalidState:
		return http.StatusConflict
	case service.CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
