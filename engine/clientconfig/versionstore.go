package clientconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Record is one stored version of a tenant's configuration.
type Record struct {
	ClientID  string    `db:"client_id"  json:"client_id"`
	Version   int       `db:"version"    json:"version"`
	Data      []byte    `db:"data"       json:"data"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	UpdatedBy string    `db:"updated_by" json:"updated_by"`
}

// Store persists configuration records with an atomic compare-and-swap on version.
//
// A missing record behaves as if it were stored at InitialVersion, so the
// first write must expect version 1 and lands at version 2.
type Store interface {
	// Load returns ErrNotFound when the tenant has never written a configuration.
	Load(ctx context.Context, clientID string) (*Record, error)
	// CompareAndSwap stores rec at expected+1 when the current version equals
	// expected. On mismatch it returns a *ConflictError and stores nothing.
	CompareAndSwap(ctx context.Context, rec Record, expected int) (int, error)
	// History returns stored versions newest first.
	History(ctx context.Context, clientID string, limit int) ([]Record, error)
	Ping(ctx context.Context) error
	Close() error
}

// HistoryEntry is a decoded past version.
type HistoryEntry struct {
	Version   int                 `json:"version"`
	UpdatedAt time.Time           `json:"updated_at"`
	UpdatedBy string              `json:"updated_by"`
	Config    ClientConfiguration `json:"config"`
}

// VersionStore maps between configurations and stored records.
type VersionStore struct {
	store Store
	now   func() time.Time
}

// NewVersionStore wraps a backend with version semantics.
func NewVersionStore(store Store) *VersionStore {
	return &VersionStore{store: store, now: time.Now}
}

func (s *VersionStore) Backend() Store {
	return s.store
}

// Read returns the stored configuration, or defaults at version 1 when none
// exists. Defaults are never persisted by a read.
func (s *VersionStore) Read(ctx context.Context, clientID string) (ClientConfiguration, error) {
	rec, err := s.store.Load(ctx, clientID)
	if errors.Is(err, ErrNotFound) {
		return Default(clientID), nil
	}
	if err != nil {
		return ClientConfiguration{}, fmt.Errorf("load client configuration: %w", err)
	}
	return decodeRecord(rec)
}

// Write stores cfg as the successor of expected and returns the new version.
func (s *VersionStore) Write(
	ctx context.Context,
	clientID string,
	expected int,
	cfg ClientConfiguration,
	actor string,
) (int, error) {
	cfg.ClientID = clientID
	cfg.Version = expected + 1
	data, err := json.Marshal(cfg)
	if err != nil {
		return 0, fmt.Errorf("encode client configuration: %w", err)
	}
	rec := Record{
		ClientID:  clientID,
		Version:   expected + 1,
		Data:      data,
		UpdatedAt: s.now().UTC(),
		UpdatedBy: actor,
	}
	version, err := s.store.CompareAndSwap(ctx, rec, expected)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// History returns stored versions newest first.
func (s *VersionStore) History(ctx context.Context, clientID string, limit int) ([]HistoryEntry, error) {
	recs, err := s.store.History(ctx, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("load client configuration history: %w", err)
	}
	out := make([]HistoryEntry, 0, len(recs))
	for i := range recs {
		cfg, err := decodeRecord(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, HistoryEntry{
			Version:   recs[i].Version,
			UpdatedAt: recs[i].UpdatedAt,
			UpdatedBy: recs[i].UpdatedBy,
			Config:    cfg,
		})
	}
	return out, nil
}

func decodeRecord(rec *Record) (ClientConfiguration, error) {
	var cfg ClientConfiguration
	if err := json.Unmarshal(rec.Data, &cfg); err != nil {
		return ClientConfiguration{}, fmt.Errorf("decode client configuration %s@%d: %w", rec.ClientID, rec.Version, err)
	}
	cfg.ClientID = rec.ClientID
	cfg.Version = rec.Version
	return cfg, nil
}

// ValidClientID reports whether id can address a configuration.
func ValidClientID(id string) bool {
	return strings.TrimSpace(id) != ""
}
