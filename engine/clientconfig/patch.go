package clientconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field tracks whether a patch key was present, explicitly null, or carried a value.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Set builds a field carrying v.
func Set[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Null builds a field that clears the stored value.
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// Present reports whether the key carried a non-null value.
func (f Field[T]) Present() bool {
	return f.Set && !f.Null
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.Null = true
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(data, &f.Value)
}

// Patch is a partial ClientConfiguration. Keys outside the known shape are ignored.
type Patch struct {
	Client    Field[ClientInfoPatch] `json:"client"`
	Channels  Field[ChannelsPatch]   `json:"channels"`
	People    Field[PeoplePatch]     `json:"people"`
	Suppliers Field[[]Supplier]      `json:"suppliers"`
	Signature Field[SignaturePatch]  `json:"signature"`
	AI        Field[AIPatch]         `json:"ai"`
}

// ClientInfoPatch carries optional changes to the business profile.
type ClientInfoPatch struct {
	Name     Field[string]                   `json:"name"`
	Timezone Field[string]                   `json:"timezone"`
	Website  Field[string]                   `json:"website"`
	Phones   Field[[]string]                 `json:"phones"`
	Address  Field[string]                   `json:"address"`
	Hours    Field[map[string]Field[string]] `json:"hours"`
}

// ChannelsPatch carries optional channel changes.
type ChannelsPatch struct {
	Email Field[EmailChannelPatch] `json:"email"`
}

// EmailChannelPatch changes the provider or individual label_map entries.
type EmailChannelPatch struct {
	Provider Field[Provider]      `json:"provider"`
	LabelMap Field[LabelMapPatch] `json:"label_map"`
}

// PeoplePatch replaces the manager list when present.
type PeoplePatch struct {
	Managers Field[[]Manager] `json:"managers"`
}

// SignaturePatch carries optional signature changes.
type SignaturePatch struct {
	Mode                  Field[SignatureMode] `json:"mode"`
	CustomText            Field[string]        `json:"custom_text"`
	BlockNamesInSignature Field[bool]          `json:"block_names_in_signature"`
}

// AIPatch carries optional assistant parameter changes.
type AIPatch struct {
	Model       Field[string]  `json:"model"`
	Temperature Field[float64] `json:"temperature"`
	MaxTokens   Field[int]     `json:"max_tokens"`
	Locked      Field[bool]    `json:"locked"`
}

// DecodePatch parses a request body into a Patch. The body must be a JSON object.
func DecodePatch(data []byte) (*Patch, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: body must be a JSON object", ErrInvalidPatch)
	}
	var p Patch
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPatch, err)
	}
	return &p, nil
}

// MustDecodePatch is DecodePatch for literals in tests and tooling.
func MustDecodePatch(data string) *Patch {
	p, err := DecodePatch([]byte(data))
	if err != nil {
		panic(err)
	}
	return p
}
