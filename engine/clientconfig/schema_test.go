package clientconfig

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSchema(t *testing.T) {
	t.Run("Should describe the top-level sections", func(t *testing.T) {
		schema := JSONSchema()
		for _, key := range []string{"client_id", "version", "client", "channels", "people", "suppliers", "signature", "ai"} {
			_, ok := schema.Properties.Get(key)
			assert.True(t, ok, key)
		}
	})

	t.Run("Should map label_map to a string-valued object", func(t *testing.T) {
		data, err := json.Marshal(JSONSchema())
		require.NoError(t, err)
		var doc struct {
			Properties struct {
				Channels struct {
					Properties struct {
						Email struct {
							Properties struct {
								LabelMap struct {
									Type                 string `json:"type"`
									AdditionalProperties struct {
										Type string `json:"type"`
									} `json:"additionalProperties"`
								} `json:"label_map"`
							} `json:"properties"`
						} `json:"email"`
					} `json:"properties"`
				} `json:"channels"`
			} `json:"properties"`
		}
		require.NoError(t, json.Unmarshal(data, &doc))
		lm := doc.Properties.Channels.Properties.Email.Properties.LabelMap
		assert.Equal(t, "object", lm.Type)
		assert.Equal(t, "string", lm.AdditionalProperties.Type)
	})
}
