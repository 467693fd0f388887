package uc

import (
	"context"
	"strings"

	"github.com/floworx/floworx/engine/clientconfig"
)

const MaxHistoryLimit = 100

type HistoryInput struct {
	ClientID string
	Limit    int
}

type HistoryOutput struct {
	Entries []clientconfig.HistoryEntry
}

// History lists past versions of a client configuration, newest first.
type History struct {
	store        *clientconfig.VersionStore
	defaultLimit int
}

func NewHistory(store *clientconfig.VersionStore, defaultLimit int) *History {
	if defaultLimit <= 0 || defaultLimit > MaxHistoryLimit {
		defaultLimit = MaxHistoryLimit
	}
	return &History{store: store, defaultLimit: defaultLimit}
}

func (uc *History) Execute(ctx context.Context, in *HistoryInput) (*HistoryOutput, error) {
	if in == nil {
		return nil, ErrInvalidInput
	}
	clientID := strings.TrimSpace(in.ClientID)
	if clientID == "" {
		return nil, ErrInvalidClientID
	}
	limit := in.Limit
	switch {
	case limit <= 0:
		limit = uc.defaultLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	entries, err := uc.store.History(ctx, clientID, limit)
	if err != nil {
		return nil, err
	}
	return &HistoryOutput{Entries: entries}, nil
}
