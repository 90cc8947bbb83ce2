// Package validation checks resource mappings, API definitions and
// configuration before they are used.
//
// Struct tags cover single fields:
//
//	type Resource struct {
//	    Path string `mapstructure:"resource" validate:"required,urltemplate"`
//	}
//	err := validation.Validate(r)
//
// The Validator collects cross-field rules:
//
//	v := validation.New()
//	v.Required("api_root", def.APIRoot).URL("api_root", def.APIRoot)
//	err := v.Validate()
//
// Both return an errors.AppError with code INVALID_INPUT and the failing
// fields under Details["fields"].
package validation
