package history

import (
	"time"

	"github.com/google/uuid"
)

// ListQuery filters GET /history.
type ListQuery struct {
	Limit int    `query:"limit" validate:"omitempty,min=1,max=1000"`
	Path  string `query:"path"`
}

// EntryResponse is one recorded operation.
type EntryResponse struct {
	ID             uuid.UUID `json:"id"`
	Type           string    `json:"type"`
	Status         string    `json:"status"`
	RepositoryName string    `json:"repository_name"`
	RepositoryPath string    `json:"repository_path"`
	Message        string    `json:"message"`
	Timestamp      time.Time `json:"timestamp"`
	// Duration in milliseconds.
	Duration int64 `json:"duration"`
}
