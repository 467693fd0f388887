package clientconfig

import "github.com/floworx/floworx/engine/core"

// Provider identifies the tenant's email provider.
type Provider string

const (
	ProviderGmail   Provider = "gmail"
	ProviderOutlook Provider = "outlook"
)

// SignatureMode selects between the platform signature and a tenant-authored one.
type SignatureMode string

const (
	SignatureDefault SignatureMode = "default"
	SignatureCustom  SignatureMode = "custom"
)

// ClientConfiguration is the versioned aggregate for one tenant.
//
// Version starts at 1 for materialized defaults and grows by exactly one on
// every successful write. It doubles as the optimistic-concurrency token.
type ClientConfiguration struct {
	ClientID  string     `json:"client_id"`
	Version   int        `json:"version"`
	Client    ClientInfo `json:"client"`
	Channels  Channels   `json:"channels"`
	People    People     `json:"people"`
	Suppliers []Supplier `json:"suppliers"  validate:"dive"`
	Signature Signature  `json:"signature"`
	AI        AISettings `json:"ai"`
}

// ClientInfo is the tenant's business profile.
type ClientInfo struct {
	Name     string            `json:"name"     validate:"notblank"`
	Timezone string            `json:"timezone" validate:"omitempty,timezone"`
	Website  string            `json:"website"`
	Phones   []string          `json:"phones"`
	Address  string            `json:"address"`
	Hours    map[string]string `json:"hours"`
}

// Channels groups the tenant's connected messaging channels.
type Channels struct {
	Email EmailChannel `json:"email"`
}

// EmailChannel binds the tenant mailbox and maps canonical categories onto visible labels.
type EmailChannel struct {
	Provider Provider `json:"provider"  validate:"required,oneof=gmail outlook"`
	LabelMap LabelMap `json:"label_map"`
}

// People lists the humans the automation acts on behalf of.
type People struct {
	Managers []Manager `json:"managers" validate:"min=1,dive"`
}

// Manager is a tenant staff member whose name must stay out of custom signatures.
type Manager struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"required,email"`
}

// Supplier is a known sender, matched by its email domains.
type Supplier struct {
	Name    string   `json:"name"    validate:"notblank"`
	Domains []string `json:"domains"`
}

// Signature controls the sign-off appended to outgoing replies.
type Signature struct {
	Mode                  SignatureMode `json:"mode"                     validate:"required,oneof=default custom"`
	CustomText            *string       `json:"custom_text"`
	BlockNamesInSignature bool          `json:"block_names_in_signature"`
}

// AISettings holds assistant parameters. When Locked is set the tenant cannot change them.
type AISettings struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Locked      bool    `json:"locked"`
}

// Clone returns a deep copy so pipeline stages never alias a caller's slices or maps.
func (c ClientConfiguration) Clone() ClientConfiguration {
	return core.MustDeepCopy(c)
}

// CustomSignatureText returns the custom signature text, or "" when unset.
func (s Signature) CustomSignatureText() string {
	if s.CustomText == nil {
		return ""
	}
	return *s.CustomText
}

// StringPtr is a convenience for optional string fields.
func StringPtr(s string) *string {
	return &s
}
