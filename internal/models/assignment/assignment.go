package assignment

import (
	"time"

	"github.com/google/uuid"
)

// Assignment - запись о закреплении персонала за свадьбой.
// Для движка задач это read-only оракул авторизации: кто какую роль держит.
type Assignment struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	WeddingID   uuid.UUID  `json:"wedding_id" db:"wedding_id"`
	CoupleID    uuid.UUID  `json:"couple_id" db:"couple_id"`
	ManagerID   *uuid.UUID `json:"manager_id,omitempty" db:"manager_id,omitempty"`
	ProtocolID  *uuid.UUID `json:"protocol_id,omitempty" db:"protocol_id,omitempty"`
	ProtocolJob string     `json:"protocol_job,omitempty" db:"protocol_job"`
	Status      Status     `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" db:"updated_at,omitempty"`
}

type Status string

const StatusPending Status = "PENDING"
const StatusAssignedToManager Status = "ASSIGNED_TO_MANAGER"
const StatusAssignedToProtocol Status = "ASSIGNED_TO_PROTOCOL"
const StatusCompleted Status = "COMPLETED"
