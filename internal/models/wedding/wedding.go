package wedding

import (
	"time"

	"github.com/google/uuid"
)

// Summary - денормализованная проекция свадьбы для отображения.
// Прикрепляется read-путём к задачам, источником истины не является.
type Summary struct {
	ID    uuid.UUID  `json:"id" db:"id"`
	Name  string     `json:"name" db:"name"`
	Date  *time.Time `json:"date,omitempty" db:"date,omitempty"`
	Venue string     `json:"venue,omitempty" db:"venue"`
}
