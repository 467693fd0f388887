package clientconfig

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	_ "time/tzdata" // timezone checks must not depend on the host zoneinfo

	"github.com/go-playground/validator/v10"

	"github.com/floworx/floworx/pkg/config"
)

// ValidationResult carries every problem found in a candidate, never just the first.
type ValidationResult struct {
	Errors ValidationErrors
}

func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Err returns the errors as an error value, or nil when the candidate is valid.
func (r ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	return r.Errors
}

// Validator checks the structural shape of a merged configuration.
type Validator struct {
	validate *validator.Validate
}

// NewValidator registers the custom tags used by the configuration types.
func NewValidator() *Validator {
	v := validator.New()
	if err := config.RegisterCustomValidators(v); err != nil {
		panic(fmt.Sprintf("clientconfig: register validators: %v", err))
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate runs every rule and collects all failures.
func (v *Validator) Validate(cfg *ClientConfiguration) ValidationResult {
	var out ValidationErrors
	if err := v.validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			out = append(out, FieldError{Field: "", Message: err.Error()})
		}
		for _, fe := range verrs {
			out = append(out, FieldError{Field: fieldPath(fe.Namespace()), Message: describe(fe)})
		}
	}
	out = append(out, validateLabelMap(cfg.Channels.Email.LabelMap)...)
	if cfg.Signature.Mode == SignatureCustom && strings.TrimSpace(cfg.Signature.CustomSignatureText()) == "" {
		out = append(out, FieldError{
			Field:   "signature.custom_text",
			Message: "is required when mode is custom",
		})
	}
	out = append(out, signatureLeakErrors(cfg)...)
	return ValidationResult{Errors: out}
}

func validateLabelMap(m LabelMap) ValidationErrors {
	var out ValidationErrors
	for i, e := range m {
		if strings.TrimSpace(e.Category) == "" {
			out = append(out, FieldError{
				Field:   fmt.Sprintf("channels.email.label_map[%d]", i),
				Message: "category must not be blank",
			})
			continue
		}
		if strings.TrimSpace(e.Label) == "" {
			out = append(out, FieldError{
				Field:   "channels.email.label_map." + e.Category,
				Message: "is required",
			})
		}
	}
	return out
}

// fieldPath drops the root type name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "timezone":
		return "must be a valid IANA time zone"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
