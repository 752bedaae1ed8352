// Package dto provides data transfer objects for bearer link HTTP handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/healthshare/internal/validation"
)

// MintLinkRequest contains the parameters for minting a bearer link.
type MintLinkRequest struct {
	// ReportID identifies the report to seal into the link.
	ReportID string `json:"report_id"`
	// AccessCode optionally supplies a caller-chosen 6-symbol code.
	AccessCode string `json:"access_code"`
	// TTLHours overrides the configured link time-to-live when positive.
	TTLHours int `json:"ttl_hours"`
}

// Validate checks the mint link request fields.
func (r MintLinkRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ReportID, validation.Required, customValidation.UUID),
		validation.Field(&r.AccessCode,
			validation.When(r.AccessCode != "", customValidation.AccessCode),
		),
		validation.Field(&r.TTLHours, validation.Min(0), validation.Max(24*365)),
	)
}

// OpenLinkRequest contains the parameters for opening a bearer link.
type OpenLinkRequest struct {
	// Data is the base64 payload from the shared-report URL.
	Data string `json:"data"`
	// AccessCode is the code delivered out of band.
	AccessCode string `json:"access_code"`
}

// Validate checks the open link request fields.
func (r OpenLinkRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Data, validation.Required),
		validation.Field(&r.AccessCode, validation.Required, customValidation.AccessCode),
	)
}

// DeliverRequest contains the parameters for rendering a delivery payload.
type DeliverRequest struct {
	// URL is the minted bearer link.
	URL string `json:"url"`
	// AccessCode travels separately from the link and is never rendered
	// into any channel payload alongside it.
	AccessCode string `json:"access_code"`
	// Channel selects the transport: email, messenger or qr.
	Channel string `json:"channel"`
	// RecipientAddress is required for the email channel.
	RecipientAddress string `json:"recipient_address"`
}

// Validate checks the deliver request fields.
func (r DeliverRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.URL, validation.Required),
		validation.Field(&r.Channel,
			validation.Required,
			validation.In("email", "messenger", "qr"),
		),
		validation.Field(&r.RecipientAddress,
			validation.When(r.RecipientAddress != "", customValidation.Email),
		),
	)
}
