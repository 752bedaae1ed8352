package service

import (
	"fmt"
	"net/url"

	distributionDomain "github.com/allisson/healthshare/internal/distribution/domain"
)

// BuildEmail renders the share notification email. The body carries the link
// only; the access code must reach the recipient over a different channel,
// so a leaked mailbox alone cannot open the report.
func BuildEmail(fromAddress, toAddress, linkURL string) *distributionDomain.EmailMessage {
	body := fmt.Sprintf(
		"A health report has been shared with you.\n\n"+
			"Open it here: %s\n\n"+
			"You will be asked for an access code. The code is sent to you "+
			"separately; if you have not received it, contact the person who "+
			"shared the report.\n",
		linkURL,
	)

	return &distributionDomain.EmailMessage{
		From:    fromAddress,
		To:      toAddress,
		Subject: "A health report has been shared with you",
		Body:    body,
	}
}

// BuildAccessCodeNote renders the code's own artifact for the second channel.
// It deliberately carries no link, mirroring how the channel payloads carry
// no code.
func BuildAccessCodeNote(accessCode string) string {
	return fmt.Sprintf(
		"Access code for the shared health report: %s\n"+
			"Do not send this code over the same channel as the link.",
		accessCode,
	)
}

// BuildMessengerLink renders a messaging-app deep link with the share text
// prefilled. The text carries the URL; code delivery stays with the sender.
func BuildMessengerLink(deepLinkBase, linkURL string) *distributionDomain.MessengerLink {
	text := fmt.Sprintf("I shared a health report with you: %s (access code follows separately)", linkURL)

	return &distributionDomain.MessengerLink{
		DeepLink: deepLinkBase + "/?text=" + url.QueryEscape(text),
		Text:     text,
	}
}
