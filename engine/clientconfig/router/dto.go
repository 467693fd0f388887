package clientconfigrouter

import (
	"time"

	"github.com/floworx/floworx/engine/clientconfig"
)

// UpdateResponse is returned by a successful PUT.
type UpdateResponse struct {
	OK        bool                    `json:"ok"`
	Version   int                     `json:"version"`
	Overrides []clientconfig.Override `json:"overrides,omitempty"`
}

type HistoryEntryDTO struct {
	Version   int                              `json:"version"`
	UpdatedAt time.Time                        `json:"updated_at"`
	UpdatedBy string                           `json:"updated_by"`
	Config    clientconfig.ClientConfiguration `json:"config"`
}

type HistoryResponse struct {
	ClientID string            `json:"client_id"`
	Entries  []HistoryEntryDTO `json:"entries"`
}

func toHistoryResponse(clientID string, entries []clientconfig.HistoryEntry) HistoryResponse {
	out := HistoryResponse{ClientID: clientID, Entries: make([]HistoryEntryDTO, 0, len(entries))}
	for i := range entries {
		out.Entries = append(out.Entries, HistoryEntryDTO{
			Version:   entries[i].Version,
			UpdatedAt: entries[i].UpdatedAt,
			UpdatedBy: entries[i].UpdatedBy,
			Config:    entries[i].Config,
		})
	}
	return out
}
