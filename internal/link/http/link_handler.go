// Package http provides HTTP handlers for bearer link minting, opening and
// delivery payload rendering.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	distributionDomain "github.com/allisson/healthshare/internal/distribution/domain"
	distributionUseCase "github.com/allisson/healthshare/internal/distribution/usecase"
	apperrors "github.com/allisson/healthshare/internal/errors"
	"github.com/allisson/healthshare/internal/httputil"
	linkDomain "github.com/allisson/healthshare/internal/link/domain"
	"github.com/allisson/healthshare/internal/link/http/dto"
	linkUseCase "github.com/allisson/healthshare/internal/link/usecase"
	customValidation "github.com/allisson/healthshare/internal/validation"
)

// LinkHandler handles HTTP requests for bearer links.
type LinkHandler struct {
	codecUseCase        linkUseCase.CodecUseCase
	distributionUseCase distributionUseCase.DistributionUseCase
	logger              *slog.Logger
}

// NewLinkHandler creates a new link handler with required dependencies.
func NewLinkHandler(
	codecUseCase linkUseCase.CodecUseCase,
	distributionUseCase distributionUseCase.DistributionUseCase,
	logger *slog.Logger,
) *LinkHandler {
	return &LinkHandler{
		codecUseCase:        codecUseCase,
		distributionUseCase: distributionUseCase,
		logger:              logger,
	}
}

// MintHandler mints an encrypted bearer link for one of the caller's reports.
// POST /v1/links
func (h *LinkHandler) MintHandler(c *gin.Context) {
	identity, err := httputil.IdentityFromContext(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	var req dto.MintLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	reportID, err := uuid.Parse(req.ReportID)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	output, err := h.codecUseCase.Mint(c.Request.Context(), identity, &linkDomain.MintInput{
		ReportID:   reportID,
		AccessCode: req.AccessCode,
		TTLHours:   req.TTLHours,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapMintOutputToResponse(output))
}

// OpenHandler decrypts a bearer link payload with its access code.
// POST /v1/links/open
// This endpoint is public: the encrypted data plus the code are the only
// credentials. Wrong codes return 422, authentic but stale payloads 410.
func (h *LinkHandler) OpenHandler(c *gin.Context) {
	var req dto.OpenLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	payload, err := h.codecUseCase.Open(c.Request.Context(), req.Data, req.AccessCode)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPayloadToResponse(payload))
}

// QRHandler renders a bearer link URL as a PNG QR image.
// GET /v1/links/qr?url=
func (h *LinkHandler) QRHandler(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		httputil.HandleBadRequestGin(c, apperrors.New("url query parameter is required"), h.logger)
		return
	}

	png, err := h.distributionUseCase.RenderQR(c.Request.Context(), url)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// DeliverHandler renders the transport payload for one channel.
// POST /v1/links/deliver
// Rendering failures are 422s and never affect the minted link itself.
func (h *LinkHandler) DeliverHandler(c *gin.Context) {
	if _, err := httputil.IdentityFromContext(c); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	var req dto.DeliverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.distributionUseCase.Deliver(c.Request.Context(), &distributionDomain.DeliverInput{
		URL:              req.URL,
		AccessCode:       req.AccessCode,
		Channel:          distributionDomain.Channel(req.Channel),
		RecipientAddress: req.RecipientAddress,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDeliverOutputToResponse(output))
}
