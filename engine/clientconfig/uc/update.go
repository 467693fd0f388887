package uc

import (
	"context"
	"fmt"
	"strings"

	"github.com/floworx/floworx/engine/clientconfig"
	"github.com/floworx/floworx/pkg/logger"
)

const DefaultActor = "api"

// Outcome classifies how an update ended.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeRejected Outcome = "rejected"
	OutcomeConflict Outcome = "conflict"
	OutcomeError    Outcome = "error"
)

// Observer receives one notification per update attempt.
type Observer interface {
	ObserveUpdate(ctx context.Context, outcome Outcome, overrides []clientconfig.Override)
}

type UpdateInput struct {
	ClientID string
	Patch    *clientconfig.Patch
	// IfMatch, when set, must equal the stored version or the update fails with a conflict before merging.
	IfMatch *int
	Actor   string
}

type UpdateOutput struct {
	Version   int
	Config    clientconfig.ClientConfiguration
	Overrides []clientconfig.Override
}

// Update runs read, merge, validate, enforce, normalize and compare-and-swap write.
type Update struct {
	store     *clientconfig.VersionStore
	validator *clientconfig.Validator
	enforcer  *clientconfig.Enforcer
	observer  Observer
}

type UpdateOption func(*Update)

func WithObserver(o Observer) UpdateOption {
	return func(u *Update) {
		u.observer = o
	}
}

func WithEnforcer(e *clientconfig.Enforcer) UpdateOption {
	return func(u *Update) {
		u.enforcer = e
	}
}

func NewUpdate(store *clientconfig.VersionStore, opts ...UpdateOption) *Update {
	u := &Update{
		store:     store,
		validator: clientconfig.NewValidator(),
		enforcer:  clientconfig.NewEnforcer(),
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

func (uc *Update) Execute(ctx context.Context, in *UpdateInput) (*UpdateOutput, error) {
	if in == nil {
		return nil, ErrInvalidInput
	}
	clientID := strings.TrimSpace(in.ClientID)
	if clientID == "" {
		return nil, ErrInvalidClientID
	}
	if in.Patch == nil {
		return nil, fmt.Errorf("%w: body is required", ErrInvalidPatch)
	}
	log := logger.FromContext(ctx).With("client_id", clientID)
	current, err := uc.store.Read(ctx, clientID)
	if err != nil {
		uc.observe(ctx, OutcomeError, nil)
		return nil, err
	}
	if in.IfMatch != nil && *in.IfMatch != current.Version {
		uc.observe(ctx, OutcomeConflict, nil)
		return nil, &clientconfig.ConflictError{ClientID: clientID, Expected: *in.IfMatch, Current: current.Version}
	}
	candidate := clientconfig.Merge(current, in.Patch)
	if res := uc.validator.Validate(&candidate); !res.Valid() {
		log.Info("configuration rejected", "version", current.Version, "error_count", len(res.Errors))
		uc.observe(ctx, OutcomeRejected, nil)
		return nil, res.Errors
	}
	enforced := uc.enforcer.Enforce(current, candidate)
	if !enforced.Allowed() {
		log.Info("configuration rejected by policy", "version", current.Version, "error_count", len(enforced.Errors))
		uc.observe(ctx, OutcomeRejected, enforced.Overrides)
		return nil, enforced.Errors
	}
	normalized := clientconfig.Normalize(enforced.Config)
	overrides := append(enforced.Overrides, normalized.Overrides...)
	actor := strings.TrimSpace(in.Actor)
	if actor == "" {
		actor = DefaultActor
	}
	version, err := uc.store.Write(ctx, clientID, current.Version, normalized.Config, actor)
	if err != nil {
		outcome := OutcomeError
		if isConflict(err) {
			outcome = OutcomeConflict
			log.Warn("configuration write conflicted", "version", current.Version)
		}
		uc.observe(ctx, outcome, overrides)
		return nil, err
	}
	out := normalized.Config
	out.ClientID = clientID
	out.Version = version
	log.Info("configuration updated", "version", version, "overrides", len(overrides), "actor", actor)
	uc.observe(ctx, OutcomeSuccess, overrides)
	return &UpdateOutput{Version: version, Config: out, Overrides: overrides}, nil
}

func (uc *Update) observe(ctx context.Context, outcome Outcome, overrides []clientconfig.Override) {
	if uc.observer != nil {
		uc.observer.ObserveUpdate(ctx, outcome, overrides)
	}
}
