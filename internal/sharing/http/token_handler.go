// Package http provides HTTP handlers for share token and grant operations.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/healthshare/internal/httputil"
	sharingDomain "github.com/allisson/healthshare/internal/sharing/domain"
	"github.com/allisson/healthshare/internal/sharing/http/dto"
	sharingUseCase "github.com/allisson/healthshare/internal/sharing/usecase"
	customValidation "github.com/allisson/healthshare/internal/validation"
)

// TokenHandler handles HTTP requests for the share token lifecycle.
type TokenHandler struct {
	tokenUseCase sharingUseCase.TokenUseCase
	logger       *slog.Logger
}

// NewTokenHandler creates a new token handler with required dependencies.
func NewTokenHandler(tokenUseCase sharingUseCase.TokenUseCase, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{
		tokenUseCase: tokenUseCase,
		logger:       logger,
	}
}

// CreateHandler mints a new share token for the caller.
// POST /v1/tokens
// Returns 201 Created with the plain secret; it is never retrievable again.
func (h *TokenHandler) CreateHandler(c *gin.Context) {
	identity, err := httputil.IdentityFromContext(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	var req dto.CreateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	// Nil means the caller omitted the override; zero selects the default
	// downstream.
	validityDays := 0
	if req.ValidityDays != nil {
		validityDays = *req.ValidityDays
	}

	token, err := h.tokenUseCase.Create(c.Request.Context(), identity, &sharingDomain.CreateTokenInput{
		Label:         req.Label,
		RecipientHint: req.RecipientHint,
		Notes:         req.Notes,
		ValidityDays:  validityDays,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapTokenToCreateResponse(token))
}

// ListHandler lists tokens minted by an owner, newest first.
// GET /v1/tokens?owner_id=&offset=&limit=
func (h *TokenHandler) ListHandler(c *gin.Context) {
	identity, err := httputil.IdentityFromContext(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	ownerID, err := uuid.Parse(c.Query("owner_id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	tokens, err := h.tokenUseCase.List(c.Request.Context(), identity, ownerID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTokensToListResponse(tokens))
}

// DeactivateHandler permanently disables a token.
// PUT /v1/tokens/:id/deactivate
// Idempotent: repeating the call on an inactive token also returns 200.
func (h *TokenHandler) DeactivateHandler(c *gin.Context) {
	identity, err := httputil.IdentityFromContext(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	tokenID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := h.tokenUseCase.Deactivate(c.Request.Context(), identity, tokenID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

// GetBySecretHandler resolves a presented secret to the acceptance preview.
// GET /v1/tokens/by-secret/:secret
// Unknown and unusable secrets both return 404.
func (h *TokenHandler) GetBySecretHandler(c *gin.Context) {
	if _, err := httputil.IdentityFromContext(c); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	token, err := h.tokenUseCase.GetBySecret(c.Request.Context(), c.Param("secret"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTokenToPreviewResponse(token))
}

// AcceptHandler redeems a presented secret into a grant for the caller.
// POST /v1/tokens/by-secret/:secret/accept
// Returns 201 on success, 404 for unknown secrets, 410 for expired or
// deactivated tokens and 409 when the caller already accepted.
func (h *TokenHandler) AcceptHandler(c *gin.Context) {
	identity, err := httputil.IdentityFromContext(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	grant, err := h.tokenUseCase.Accept(c.Request.Context(), identity, c.Param("secret"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapGrantToResponse(grant))
}
