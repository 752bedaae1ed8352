package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/healthshare/internal/httputil"
	"github.com/allisson/healthshare/internal/sharing/http/dto"
	sharingUseCase "github.com/allisson/healthshare/internal/sharing/usecase"
)

// GrantHandler handles HTTP requests for acceptance grants.
type GrantHandler struct {
	tokenUseCase sharingUseCase.TokenUseCase
	logger       *slog.Logger
}

// NewGrantHandler creates a new grant handler with required dependencies.
func NewGrantHandler(tokenUseCase sharingUseCase.TokenUseCase, logger *slog.Logger) *GrantHandler {
	return &GrantHandler{
		tokenUseCase: tokenUseCase,
		logger:       logger,
	}
}

// ListHandler lists the recipient's grants backed by usable tokens.
// GET /v1/grants?recipient_id=
// Grants on deactivated or expired tokens are filtered out at read time.
func (h *GrantHandler) ListHandler(c *gin.Context) {
	identity, err := httputil.IdentityFromContext(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	recipientID, err := uuid.Parse(c.Query("recipient_id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	details, err := h.tokenUseCase.ListGrantsForRecipient(c.Request.Context(), identity, recipientID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapGrantDetailsToListResponse(details))
}
