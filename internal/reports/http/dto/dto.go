// Package dto provides data transfer objects for report HTTP responses.
package dto

import (
	"time"

	reportsDomain "github.com/allisson/healthshare/internal/reports/domain"
)

// ReportResponse represents a health report in read responses.
type ReportResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ListReportsResponse represents a paginated list of reports.
type ListReportsResponse struct {
	Data []ReportResponse `json:"data"`
}

// MapReportToResponse converts a domain report to its response.
func MapReportToResponse(report *reportsDomain.Report) ReportResponse {
	return ReportResponse{
		ID:        report.ID.String(),
		OwnerID:   report.OwnerID.String(),
		Title:     report.Title,
		Content:   report.Content,
		CreatedAt: report.CreatedAt,
	}
}

// MapReportsToListResponse converts a slice of domain reports to a list response.
func MapReportsToListResponse(reports []*reportsDomain.Report) ListReportsResponse {
	data := make([]ReportResponse, 0, len(reports))
	for _, report := range reports {
		data = append(data, MapReportToResponse(report))
	}
	return ListReportsResponse{Data: data}
}
