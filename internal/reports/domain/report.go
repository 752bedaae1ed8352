// Package domain defines the health report read model. Report authoring
// lives in another system; this service only reads snapshots for sharing.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/healthshare/internal/errors"
)

// Report is a read-only health report snapshot.
type Report struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Title     string
	Content   string
	CreatedAt time.Time
}

// ErrReportNotFound indicates no report matches the given id.
var ErrReportNotFound = errors.Wrap(errors.ErrNotFound, "report not found")
