package clientconfig

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// EnforcementResult is the candidate after policy checks.
//
// Overrides lists silent corrections. Errors lists violations that reject the write.
type EnforcementResult struct {
	Config    ClientConfiguration
	Overrides []Override
	Errors    ValidationErrors
}

func (r EnforcementResult) Allowed() bool {
	return len(r.Errors) == 0
}

// Policy inspects a candidate against the previously stored version. It may
// correct the candidate in place and report what it changed, or reject it.
type Policy func(previous, candidate *ClientConfiguration) ([]Override, ValidationErrors)

// Enforcer runs business policies in order over a validated candidate.
type Enforcer struct {
	policies []Policy
}

// NewEnforcer builds an enforcer. Without arguments it uses DefaultPolicies.
func NewEnforcer(policies ...Policy) *Enforcer {
	if len(policies) == 0 {
		policies = DefaultPolicies()
	}
	return &Enforcer{policies: policies}
}

// DefaultPolicies returns the AI lock and signature leak policies.
func DefaultPolicies() []Policy {
	return []Policy{LockedAIPolicy, SignatureLeakPolicy}
}

// Enforce applies every policy to the candidate, in order.
func (e *Enforcer) Enforce(previous, candidate ClientConfiguration) EnforcementResult {
	out := candidate.Clone()
	res := EnforcementResult{}
	for _, p := range e.policies {
		overrides, errs := p(&previous, &out)
		res.Overrides = append(res.Overrides, overrides...)
		res.Errors = append(res.Errors, errs...)
	}
	res.Config = out
	return res
}

const reasonAILocked = "ai settings are locked"

// LockedAIPolicy reverts every ai field that differs from a locked previous version.
// The lock flag itself is covered, so a locked config cannot unlock itself.
func LockedAIPolicy(previous, candidate *ClientConfiguration) ([]Override, ValidationErrors) {
	if !previous.AI.Locked {
		return nil, nil
	}
	var out []Override
	prev, cand := previous.AI, &candidate.AI
	if cand.Model != prev.Model {
		cand.Model = prev.Model
		out = append(out, Override{Field: "ai.model", Reason: reasonAILocked})
	}
	if cand.Temperature != prev.Temperature {
		cand.Temperature = prev.Temperature
		out = append(out, Override{Field: "ai.temperature", Reason: reasonAILocked})
	}
	if cand.MaxTokens != prev.MaxTokens {
		cand.MaxTokens = prev.MaxTokens
		out = append(out, Override{Field: "ai.max_tokens", Reason: reasonAILocked})
	}
	if cand.Locked != prev.Locked {
		cand.Locked = prev.Locked
		out = append(out, Override{Field: "ai.locked", Reason: reasonAILocked})
	}
	return out, nil
}

// SignatureLeakPolicy rejects a custom signature that names one of the candidate's managers
// while block_names_in_signature is on.
func SignatureLeakPolicy(_, candidate *ClientConfiguration) ([]Override, ValidationErrors) {
	return nil, signatureLeakErrors(candidate)
}

func signatureLeakErrors(cfg *ClientConfiguration) ValidationErrors {
	leaked := LeakedManagerNames(cfg)
	if len(leaked) == 0 {
		return nil
	}
	errs := make(ValidationErrors, 0, len(leaked))
	for _, name := range leaked {
		errs = append(errs, FieldError{
			Field:   "signature.custom_text",
			Message: fmt.Sprintf("must not contain manager name %q", name),
		})
	}
	return errs
}

// LeakedManagerNames returns the manager names found in the custom signature,
// matched as case-folded substrings. Blank names never match.
func LeakedManagerNames(cfg *ClientConfiguration) []string {
	sig := cfg.Signature
	if sig.Mode != SignatureCustom || !sig.BlockNamesInSignature {
		return nil
	}
	fold := cases.Fold()
	text := fold.String(sig.CustomSignatureText())
	if text == "" {
		return nil
	}
	var leaked []string
	for _, m := range cfg.People.Managers {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			continue
		}
		if strings.Contains(text, fold.String(name)) {
			leaked = append(leaked, name)
		}
	}
	return leaked
}
