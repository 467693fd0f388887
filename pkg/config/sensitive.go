package config

import "encoding/json"

const redactedValue = "[REDACTED]"

// SensitiveString holds a secret that must never be printed or serialized in clear text.
type SensitiveString string

// Value returns the underlying secret.
func (s SensitiveString) Value() string {
	return string(s)
}

func (s SensitiveString) String() string {
	if s == "" {
		return ""
	}
	return redactedValue
}

func (s SensitiveString) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s SensitiveString) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
