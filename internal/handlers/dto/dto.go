package dto

import (
	"time"

	"weddingTasks/internal/models/task"
	"weddingTasks/internal/models/wedding"

	"github.com/google/uuid"
)

// тела запросов в camelCase - так их шлют существующие web/mobile клиенты

type CreateTaskRequest struct {
	WeddingID          uuid.UUID  `json:"weddingId"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Category           string     `json:"category"`
	AssignedRole       string     `json:"assignedRole"`
	AssignedProtocolID *uuid.UUID `json:"assignedProtocolId,omitempty"`
	DueDate            *time.Time `json:"dueDate,omitempty"`
}

type RejectTaskRequest struct {
	Reason string `json:"reason"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Category    *string    `json:"category,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

type TaskResponse struct {
	UUID               uuid.UUID        `json:"uuid"`
	WeddingID          uuid.UUID        `json:"wedding_id"`
	Title              string           `json:"title"`
	Description        string           `json:"description"`
	Category           string           `json:"category"`
	AssignedRole       string           `json:"assigned_role"`
	AssignedProtocolID *uuid.UUID       `json:"assigned_protocol_id,omitempty"`
	Status             string           `json:"status"`
	RejectionReason    *string          `json:"rejection_reason,omitempty"`
	DueDate            *time.Time       `json:"due_date,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          *time.Time       `json:"updated_at,omitempty"`
	Wedding            *wedding.Summary `json:"wedding,omitempty"`
}

func FromTask(t *task.Task) TaskResponse {
	return TaskResponse{
		UUID:               t.UUID,
		WeddingID:          t.WeddingID,
		Title:              t.Title,
		Description:        t.Description,
		Category:           string(t.Category),
		AssignedRole:       string(t.AssignedRole),
		AssignedProtocolID: t.AssignedProtocolID,
		Status:             string(t.Status),
		RejectionReason:    t.RejectionReason,
		DueDate:            t.DueDate,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

// FromTaskList прикрепляет к задачам денормализованные сводки свадеб
func FromTaskList(tasks []*task.Task, summaries map[uuid.UUID]*wedding.Summary) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
		if summaries != nil {
			result[i].Wedding = summaries[t.WeddingID]
		}
	}
	return result
}
