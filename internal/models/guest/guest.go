package guest

import "github.com/google/uuid"

// Stats - сводка по гостям свадьбы из реестра гостей (внешний коллаборатор)
type Stats struct {
	WeddingID uuid.UUID `json:"wedding_id"`
	Total     int       `json:"total"`
	Confirmed int       `json:"confirmed"`
	CheckedIn int       `json:"checked_in"`
}
