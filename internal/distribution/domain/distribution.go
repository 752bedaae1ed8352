// Package domain defines the distribution channels for minted bearer links.
// Distribution prepares transport payloads; it never persists anything and a
// channel failure never invalidates the already-minted link.
package domain

import (
	"github.com/allisson/healthshare/internal/errors"
)

// Channel identifies a way of handing a bearer link to its recipient.
type Channel string

const (
	// ChannelEmail renders an email carrying the link. The access code is
	// deliberately absent from the body; it travels by another channel.
	ChannelEmail Channel = "email"

	// ChannelMessenger renders a messaging-app deep link with prefilled text.
	ChannelMessenger Channel = "messenger"

	// ChannelQR renders the link URL as a scannable QR image.
	ChannelQR Channel = "qr"
)

// EmailMessage is a rendered share notification email.
type EmailMessage struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// MessengerLink is a rendered messaging-app deep link.
type MessengerLink struct {
	// DeepLink opens the messaging app with Text prefilled.
	DeepLink string `json:"deep_link"`
	Text     string `json:"text"`
}

// DeliverInput contains the parameters for rendering a transport payload.
type DeliverInput struct {
	URL              string
	AccessCode       string
	Channel          Channel
	RecipientAddress string
}

// DeliverOutput is the rendered payload for one channel. Exactly one field
// matching the channel is populated. AccessCodeNote is the code's own
// artifact, meant for a channel other than the one carrying the link; it is
// never embedded in the channel payload itself.
type DeliverOutput struct {
	Channel        Channel        `json:"channel"`
	Email          *EmailMessage  `json:"email,omitempty"`
	Messenger      *MessengerLink `json:"messenger,omitempty"`
	QRImage        []byte         `json:"qr_image,omitempty"`
	AccessCodeNote string         `json:"access_code_note,omitempty"`
}

// PreparedBundle carries the best-effort rendering of every channel at once.
// Channels that failed are listed in Failures and simply absent.
type PreparedBundle struct {
	Email          *EmailMessage      `json:"email,omitempty"`
	Messenger      *MessengerLink     `json:"messenger,omitempty"`
	QRImage        []byte             `json:"qr_image,omitempty"`
	AccessCodeNote string             `json:"access_code_note,omitempty"`
	Failures       map[Channel]string `json:"failures,omitempty"`
}

// ErrUnsupportedChannel indicates an unknown distribution channel.
var ErrUnsupportedChannel = errors.Wrap(errors.ErrInvalidInput, "unsupported distribution channel")
