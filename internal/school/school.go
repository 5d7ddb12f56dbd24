package school

import (
	"time"

	"github.com/google/uuid"
)

type School struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateSchoolRequest struct {
	Name string `json:"name"`
	City string `json:"city"`
}
