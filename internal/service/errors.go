package service

import "fmt"

// коды бизнес-ошибок, которые handlers переводят в HTTP статусы
const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInvalidState = "INVALID_STATE"
	CodeUpstream     = "UPSTREAM_ERROR"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

func NewNotFound(resource, id string) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %s не найден(а)", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewUnauthorized(taskID, actorID string) *BusinessError {
	return &BusinessError{
		Code:    CodeUnauthorized,
		Message: "Актор не имеет права действовать над задачей",
		Details: map[string]any{
			"task_id":  taskID,
			"actor_id": actorID,
		},
	}
}

func NewInvalidState(taskID string, current, target string) *BusinessError {
	return &BusinessError{
		Code:    CodeInvalidState,
		Message: fmt.Sprintf("Переход в статус %s из %s недопустим", target, current),
		Details: map[string]any{
			"task_id": taskID,
			"current": current,
			"target":  target,
		},
	}
}

func NewUpstream(collaborator string, err error) *BusinessError {
	return &BusinessError{
		Code:    CodeUpstream,
		Message: fmt.Sprintf("Сервис-коллаборатор '%s' недоступен", collaborator),
		Details: map[string]any{
			"collaborator": collaborator,
		},
		Err: err,
	}
}
