// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/healthshare/internal/validation"
)

// CreateTokenRequest contains the parameters for minting a share token.
type CreateTokenRequest struct {
	// Label is a human-readable name for the token.
	Label string `json:"label"`
	// RecipientHint is an optional advisory email of the intended recipient.
	RecipientHint string `json:"recipient_hint"`
	// Notes holds free-form owner notes.
	Notes string `json:"notes"`
	// ValidityDays overrides the default validity window. Omitted means the
	// server default; an explicit zero or negative value is rejected.
	ValidityDays *int `json:"validity_days"`
}

// Validate checks the create token request fields.
func (r CreateTokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Label,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.RecipientHint,
			validation.When(r.RecipientHint != "", customValidation.Email),
		),
		validation.Field(&r.Notes, validation.Length(0, 2000)),
		validation.Field(&r.ValidityDays, validation.By(validateValidityDays)),
	)
}

// validateValidityDays rejects explicit non-positive overrides. A nil value
// means the field was omitted and the server default applies; the built-in
// threshold rules cannot make that distinction because they skip zero values.
func validateValidityDays(value interface{}) error {
	days, _ := value.(*int)
	if days == nil {
		return nil
	}
	if *days < 1 || *days > 365 {
		return validation.NewError("validation_validity_days", "must be between 1 and 365")
	}
	return nil
}
