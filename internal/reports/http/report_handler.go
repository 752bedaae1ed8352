// Package http provides HTTP handlers for evaluator-guarded report reads.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/healthshare/internal/httputil"
	"github.com/allisson/healthshare/internal/reports/http/dto"
	reportsUseCase "github.com/allisson/healthshare/internal/reports/usecase"
)

// ReportHandler handles HTTP requests for health report reads.
type ReportHandler struct {
	reportUseCase reportsUseCase.ReportUseCase
	logger        *slog.Logger
}

// NewReportHandler creates a new report handler with required dependencies.
func NewReportHandler(reportUseCase reportsUseCase.ReportUseCase, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		reportUseCase: reportUseCase,
		logger:        logger,
	}
}

// GetHandler retrieves a single report the caller may read.
// GET /v1/reports/:id
// Owners always pass; doctors pass only while a live grant exists.
func (h *ReportHandler) GetHandler(c *gin.Context) {
	identity, err := httputil.IdentityFromContext(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	report, err := h.reportUseCase.Get(c.Request.Context(), identity, reportID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapReportToResponse(report))
}

// ListHandler lists reports owned by a user, newest first.
// GET /v1/reports?owner_id=&offset=&limit=
func (h *ReportHandler) ListHandler(c *gin.Context) {
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

	reports, err := h.reportUseCase.List(c.Request.Context(), identity, ownerID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapReportsToListResponse(reports))
}
