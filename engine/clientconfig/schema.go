package clientconfig

import (
	"reflect"

	"github.com/invopop/jsonschema"
)

const schemaID = "https://floworx.io/schemas/client-configuration.json"

var labelMapType = reflect.TypeOf(LabelMap{})

// JSONSchema describes the stored configuration document. label_map is an
// ordered object on the wire, so it is mapped explicitly instead of reflected.
func JSONSchema() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == labelMapType {
				return &jsonschema.Schema{
					Type:                 "object",
					Description:          "Canonical category to tenant-visible label; values are unique",
					AdditionalProperties: &jsonschema.Schema{Type: "string"},
				}
			}
			return nil
		},
	}
	schema := reflector.Reflect(&ClientConfiguration{})
	schema.ID = jsonschema.ID(schemaID)
	schema.Title = "Floworx client configuration"
	return schema
}
