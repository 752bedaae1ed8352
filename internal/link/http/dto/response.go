package dto

import (
	"time"

	distributionDomain "github.com/allisson/healthshare/internal/distribution/domain"
	linkDomain "github.com/allisson/healthshare/internal/link/domain"
)

// MintLinkResponse is the result of minting a bearer link. The URL and the
// access code are meant to travel over separate channels.
type MintLinkResponse struct {
	URL        string `json:"url"`
	AccessCode string `json:"access_code"`
}

// OpenLinkResponse is the decrypted report snapshot carried by a bearer link.
type OpenLinkResponse struct {
	ReportID  string    `json:"report_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// EmailPayload represents a rendered email delivery.
type EmailPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// MessengerPayload represents a rendered messenger delivery.
type MessengerPayload struct {
	DeepLink string `json:"deep_link"`
	Text     string `json:"text"`
}

// DeliverResponse is the rendered transport payload for a single channel.
// QRImageBase64 carries the PNG for the qr channel. AccessCodeNote is the
// code's own artifact for the sharer to pass over a second channel; it never
// appears inside the channel payload itself.
type DeliverResponse struct {
	Channel        string            `json:"channel"`
	Email          *EmailPayload     `json:"email,omitempty"`
	Messenger      *MessengerPayload `json:"messenger,omitempty"`
	QRImageBase64  []byte            `json:"qr_image_base64,omitempty"`
	AccessCodeNote string            `json:"access_code_note,omitempty"`
}

// MapMintOutputToResponse converts a mint result to its response.
func MapMintOutputToResponse(output *linkDomain.MintOutput) MintLinkResponse {
	return MintLinkResponse{
		URL:        output.URL,
		AccessCode: output.AccessCode,
	}
}

// MapPayloadToResponse converts a decrypted link payload to its response.
func MapPayloadToResponse(payload *linkDomain.Payload) OpenLinkResponse {
	return OpenLinkResponse{
		ReportID:  payload.ReportID.String(),
		Title:     payload.Title,
		Content:   payload.Content,
		CreatedAt: payload.CreatedAt,
		ExpiresAt: payload.ExpiresAt,
	}
}

// MapDeliverOutputToResponse converts a delivery result to its response.
func MapDeliverOutputToResponse(output *distributionDomain.DeliverOutput) DeliverResponse {
	response := DeliverResponse{
		Channel:        string(output.Channel),
		QRImageBase64:  output.QRImage,
		AccessCodeNote: output.AccessCodeNote,
	}
	if output.Email != nil {
		response.Email = &EmailPayload{
			From:    output.Email.From,
			To:      output.Email.To,
			Subject: output.Email.Subject,
			Body:    output.Email.Body,
		}
	}
	if output.Messenger != nil {
		response.Messenger = &MessengerPayload{
			DeepLink: output.Messenger.DeepLink,
			Text:     output.Messenger.Text,
		}
	}
	return response
}
