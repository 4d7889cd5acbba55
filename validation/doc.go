// Package validation checks request parameters and configuration values.
//
// It supports struct tag validation (using the validator library) for the
// wire request types and programmatic validation with error collection for
// builder setters and configuration. Both produce errors.InvalidParameter.
//
// # Struct Tag Validation
//
//	type ChatCompletionRequest struct {
//	    Model       string   `json:"model" validate:"required"`
//	    Temperature *float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
//	}
//	err := validation.Validate(req)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.FloatRange("temperature", t, 0, 2)
//	err := v.Validate()
package validation
