package user

import (
	"time"

	"github.com/google/uuid"
)

// User - сотрудник платформы. ClerkID - идентификатор внешнего
// auth-провайдера, UUID - внутренний идентификатор базы.
type User struct {
	UUID      uuid.UUID `json:"uuid" db:"uuid"`
	ClerkID   string    `json:"clerk_id" db:"clerk_id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
