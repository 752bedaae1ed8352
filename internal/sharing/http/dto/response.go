package dto

import (
	"time"

	sharingDomain "github.com/allisson/healthshare/internal/sharing/domain"
)

// CreateTokenResponse is the response for a freshly minted share token.
// This is the only place the plain secret ever appears.
type CreateTokenResponse struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Secret        string    `json:"secret"`
	Label         string    `json:"label"`
	RecipientHint string    `json:"recipient_hint,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
	Active        bool      `json:"active"`
}

// TokenResponse represents a share token in read responses. The secret is
// never echoed here.
type TokenResponse struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Label         string    `json:"label"`
	RecipientHint string    `json:"recipient_hint,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
	Active        bool      `json:"active"`
}

// TokenPreviewResponse is the acceptance preview shown to whoever presents a
// valid secret: enough to decide whether to accept, nothing more.
type TokenPreviewResponse struct {
	OwnerID       string    `json:"owner_id"`
	Label         string    `json:"label"`
	RecipientHint string    `json:"recipient_hint,omitempty"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// ListTokensResponse represents a paginated list of share tokens.
type ListTokensResponse struct {
	Data []TokenResponse `json:"data"`
}

// GrantResponse represents an acceptance grant.
type GrantResponse struct {
	ID          string    `json:"id"`
	TokenID     string    `json:"token_id"`
	RecipientID string    `json:"recipient_id"`
	AcceptedAt  time.Time `json:"accepted_at"`
}

// GrantDetailResponse represents a grant enriched with sharer and token metadata.
type GrantDetailResponse struct {
	GrantResponse
	OwnerID    string    `json:"owner_id"`
	TokenLabel string    `json:"token_label"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ListGrantsResponse represents the recipient's usable grants.
type ListGrantsResponse struct {
	Data []GrantDetailResponse `json:"data"`
}

// MapTokenToCreateResponse converts a freshly minted token to its response.
func MapTokenToCreateResponse(token *sharingDomain.ShareToken) CreateTokenResponse {
	return CreateTokenResponse{
		ID:            token.ID.String(),
		OwnerID:       token.OwnerID.String(),
		Secret:        token.Secret,
		Label:         token.Label,
		RecipientHint: token.RecipientHint,
		Notes:         token.Notes,
		CreatedAt:     token.CreatedAt,
		ExpiresAt:     token.ExpiresAt,
		Active:        token.Active,
	}
}

// MapTokenToResponse converts a domain token to its read response.
func MapTokenToResponse(token *sharingDomain.ShareToken) TokenResponse {
	return TokenResponse{
		ID:            token.ID.String(),
		OwnerID:       token.OwnerID.String(),
		Label:         token.Label,
		RecipientHint: token.RecipientHint,
		Notes:         token.Notes,
		CreatedAt:     token.CreatedAt,
		ExpiresAt:     token.ExpiresAt,
		Active:        token.Active,
	}
}

// MapTokenToPreviewResponse converts a domain token to the acceptance preview.
func MapTokenToPreviewResponse(token *sharingDomain.ShareToken) TokenPreviewResponse {
	return TokenPreviewResponse{
		OwnerID:       token.OwnerID.String(),
		Label:         token.Label,
		RecipientHint: token.RecipientHint,
		ExpiresAt:     token.ExpiresAt,
	}
}

// MapTokensToListResponse converts a slice of domain tokens to a list response.
func MapTokensToListResponse(tokens []*sharingDomain.ShareToken) ListTokensResponse {
	data := make([]TokenResponse, 0, len(tokens))
	for _, token := range tokens {
		data = append(data, MapTokenToResponse(token))
	}
	return ListTokensResponse{Data: data}
}

// MapGrantToResponse converts a domain grant to its response.
func MapGrantToResponse(grant *sharingDomain.Grant) GrantResponse {
	return GrantResponse{
		ID:          grant.ID.String(),
		TokenID:     grant.TokenID.String(),
		RecipientID: grant.RecipientID.String(),
		AcceptedAt:  grant.AcceptedAt,
	}
}

// MapGrantDetailsToListResponse converts grant details to a list response.
func MapGrantDetailsToListResponse(details []*sharingDomain.GrantDetail) ListGrantsResponse {
	data := make([]GrantDetailResponse, 0, len(details))
	for _, detail := range details {
		data = append(data, GrantDetailResponse{
			GrantResponse: MapGrantToResponse(&detail.Grant),
			OwnerID:       detail.OwnerID.String(),
			TokenLabel:    detail.TokenLabel,
			ExpiresAt:     detail.ExpiresAt,
		})
	}
	return ListGrantsResponse{Data: data}
}
