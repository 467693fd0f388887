package uc

import (
	"context"
	"strings"

	"github.com/floworx/floworx/engine/clientconfig"
)

// GetInput carries parameters required to retrieve a client configuration.
type GetInput struct {
	ClientID string
}

// GetOutput contains the current configuration. Version doubles as the ETag.
type GetOutput struct {
	Config clientconfig.ClientConfiguration
}

// Get loads a client configuration, falling back to unpersisted defaults.
type Get struct {
	store *clientconfig.VersionStore
}

// NewGet constructs a Get use case bound to the provided version store.
func NewGet(store *clientconfig.VersionStore) *Get {
	return &Get{store: store}
}

// Execute fetches the configuration of the referenced client.
func (uc *Get) Execute(ctx context.Context, in *GetInput) (*GetOutput, error) {
	if in == nil {
		return nil, ErrInvalidInput
	}
	clientID := strings.TrimSpace(in.ClientID)
	if clientID == "" {
		return nil, ErrInvalidClientID
	}
	cfg, err := uc.store.Read(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Config: cfg}, nil
}
