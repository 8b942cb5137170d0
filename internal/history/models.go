package history

import (
	"encoding/json"
	"time"

	"github.com/pmtools/vcsbridge/internal/storage"
)

type entryModel struct {
	storage.BaseEntity

	Type           Type   `json:"type"`
	Status         Status `json:"status"`
	RepositoryName string `json:"repository_name"`
	RepositoryPath string `json:"repository_path"`
	Message        string `json:"message"`
	DurationMS     int64  `json:"duration_ms"`
}

func newEntryModel(draft EntryDraft) *entryModel {
	return &entryModel{
		BaseEntity:     storage.NewBaseEntity(),
		Type:           draft.Type,
		Status:         draft.Status,
		RepositoryName: draft.RepositoryName,
		RepositoryPath: draft.RepositoryPath,
		Message:        draft.Message,
		DurationMS:     draft.Duration.Milliseconds(),
	}
}

func (m *entryModel) StorageIndexes() []string {
	return nil
}

func (m *entryModel) MarshalStorage() ([]byte, error) {
	return json.Marshal(m)
}

func (m *entryModel) UnmarshalStorage(data []byte) error {
	return json.Unmarshal(data, m)
}

func newEntry(model *entryModel) Entry {
	return Entry{
		EntryDraft: EntryDraft{
			Type:           model.Type,
			Status:         model.Status,
			RepositoryName: model.RepositoryName,
			RepositoryPath: model.RepositoryPath,
			Message:        model.Message,
			Duration:       time.Duration(model.DurationMS) * time.Millisecond,
		},
		ID:        model.ID,
		Timestamp: model.CreatedAt,
	}
}
