package task

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	UUID               uuid.UUID  `json:"uuid" db:"uuid"`
	WeddingID          uuid.UUID  `json:"wedding_id" db:"wedding_id"`
	Title              string     `json:"title" db:"title"`
	Description        string     `json:"description" db:"description"`
	Category           Category   `json:"category" db:"category"`
	AssignedRole       Role       `json:"assigned_role" db:"assigned_role"`
	AssignedProtocolID *uuid.UUID `json:"assigned_protocol_id,omitempty" db:"assigned_protocol_id,omitempty"`
	Status             Status     `json:"status" db:"status"`
	RejectionReason    *string    `json:"rejection_reason,omitempty" db:"rejection_reason,omitempty"`
	DueDate            *time.Time `json:"due_date,omitempty" db:"due_date,omitempty"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty" db:"updated_at,omitempty"`
}

type Status string
type Role string
type Category string

// жизненный цикл задачи: ровно пять статусов
const StatusPendingAcceptance Status = "PENDING_ACCEPTANCE"
const StatusAccepted Status = "ACCEPTED"
const StatusInProgress Status = "IN_PROGRESS"
const StatusCompleted Status = "COMPLETED"
const StatusRejected Status = "REJECTED"

const RoleManager Role = "MANAGER"
const RoleProtocol Role = "PROTOCOL"
const RoleCouple Role = "COUPLE"

const CategoryGeneral Category = "GENERAL"
const CategoryVIP Category = "VIP"
const CategoryLogistics Category = "LOGISTICS"
const CategoryCatering Category = "CATERING"
const CategorySecurity Category = "SECURITY"
const CategoryQRCode Category = "QR_CODE"
const CategoryOther Category = "OTHER"

// Transitions - допустимые переходы; COMPLETED и REJECTED терминальные
var Transitions = map[Status][]Status{
	StatusPendingAcceptance: {StatusAccepted, StatusRejected},
	StatusAccepted:          {StatusInProgress, StatusCompleted},
	StatusInProgress:        {StatusCompleted},
	StatusCompleted:         {},
	StatusRejected:          {},
}

func (s Status) IsValid() bool {
	_, ok := Transitions[s]
	return ok
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range Transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleManager, RoleProtocol, RoleCouple:
		return Role(raw), true
	}
	return "", false
}

// неизвестная категория приводится к GENERAL, как в исходной системе
func ParseCategory(raw string) Category {
	switch Category(raw) {
	case CategoryGeneral, CategoryVIP, CategoryLogistics, CategoryCatering,
		CategorySecurity, CategoryQRCode, CategoryOther:
		return Category(raw)
	}
	return CategoryGeneral
}
