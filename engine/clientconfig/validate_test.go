package clientconfig

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() ClientConfiguration {
	cfg := Default("acme")
	cfg.Client.Name = "Acme Pools"
	cfg.People.Managers = []Manager{{Name: "John Manager", Email: "john@acme.com"}}
	return cfg
}

func fields(errs ValidationErrors) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestValidator_Validate(t *testing.T) {
	v := NewValidator()

	t.Run("Should accept a complete configuration", func(t *testing.T) {
		cfg := validConfig()
		res := v.Validate(&cfg)
		assert.True(t, res.Valid(), res.Errors)
		assert.NoError(t, res.Err())
	})

	t.Run("Should report every problem with dotted paths", func(t *testing.T) {
		cfg := validConfig()
		cfg.Client.Name = "  "
		cfg.Channels.Email.Provider = "yahoo"
		cfg.People.Managers = []Manager{{Name: "A", Email: "a@x.com"}, {Name: "B", Email: "not-an-email"}}
		cfg.Suppliers = []Supplier{{Name: ""}}
		res := v.Validate(&cfg)
		require.False(t, res.Valid())
		assert.ElementsMatch(t, []string{
			"client.name",
			"channels.email.provider",
			"people.managers[1].email",
			"suppliers[0].name",
		}, fields(res.Errors))
	})

	t.Run("Should require at least one manager", func(t *testing.T) {
		cfg := validConfig()
		cfg.People.Managers = []Manager{}
		res := v.Validate(&cfg)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, "people.managers", res.Errors[0].Field)
		assert.Equal(t, "must contain at least 1 item(s)", res.Errors[0].Message)
	})

	t.Run("Should reject the materialized defaults", func(t *testing.T) {
		cfg := Default("acme")
		res := v.Validate(&cfg)
		assert.ElementsMatch(t, []string{"client.name", "people.managers"}, fields(res.Errors))
	})

	t.Run("Should check the time zone only when set", func(t *testing.T) {
		cfg := validConfig()
		cfg.Client.Timezone = ""
		assert.True(t, v.Validate(&cfg).Valid())
		cfg.Client.Timezone = "America/New_York"
		assert.True(t, v.Validate(&cfg).Valid())
		cfg.Client.Timezone = "Mars/Olympus"
		res := v.Validate(&cfg)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, "client.timezone", res.Errors[0].Field)
	})

	t.Run("Should reject blank labels", func(t *testing.T) {
		cfg := validConfig()
		cfg.Channels.Email.LabelMap = cfg.Channels.Email.LabelMap.Set("Sales", " ")
		res := v.Validate(&cfg)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, "channels.email.label_map.Sales", res.Errors[0].Field)
	})

	t.Run("Should require custom text in custom mode", func(t *testing.T) {
		cfg := validConfig()
		cfg.Signature.Mode = SignatureCustom
		res := v.Validate(&cfg)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, "signature.custom_text", res.Errors[0].Field)
		cfg.Signature.CustomText = StringPtr("Best, the team")
		assert.True(t, v.Validate(&cfg).Valid())
	})

	t.Run("Should report a signature leak alongside shape errors", func(t *testing.T) {
		cfg := validConfig()
		cfg.Client.Name = ""
		cfg.Signature = Signature{Mode: SignatureCustom, CustomText: StringPtr("Best, John Manager"), BlockNamesInSignature: true}
		res := v.Validate(&cfg)
		assert.ElementsMatch(t, []string{"client.name", "signature.custom_text"}, fields(res.Errors))
	})

	t.Run("Should reject an unknown signature mode", func(t *testing.T) {
		cfg := validConfig()
		cfg.Signature.Mode = "fancy"
		res := v.Validate(&cfg)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, "signature.mode", res.Errors[0].Field)
		assert.Equal(t, "must be one of: default, custom", res.Errors[0].Message)
	})

	t.Run("Should not range check ai settings", func(t *testing.T) {
		cfg := validConfig()
		cfg.AI = AISettings{Temperature: 9, MaxTokens: -1}
		assert.True(t, v.Validate(&cfg).Valid())
	})

	t.Run("Should expose errors matching ErrValidationFailed", func(t *testing.T) {
		cfg := Default("acme")
		err := v.Validate(&cfg).Err()
		assert.ErrorIs(t, err, ErrValidationFailed)
		var verrs ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Len(t, verrs, 2)
		assert.Contains(t, err.Error(), "client.name: is required")
	})
}
