// Package http provides the HTTP server, router and shared middleware.
package http

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/allisson/healthshare/internal/errors"
	"github.com/allisson/healthshare/internal/httputil"
	sharingDomain "github.com/allisson/healthshare/internal/sharing/domain"
)

// Trusted gateway headers carrying the authenticated caller. The upstream
// session layer terminates authentication; these headers are only reachable
// through it.
const (
	headerUserID   = "X-User-Id"
	headerUserRole = "X-User-Role"
)

// CustomLoggerMiddleware logs HTTP requests with the request id, status and
// latency of each call.
func CustomLoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info("http request",
			slog.String("request_id", requestid.Get(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}

// IdentityMiddleware establishes the caller identity from the trusted gateway
// headers and stores it in the request context.
//
// Error handling:
//   - Missing or malformed X-User-Id → 401 Unauthorized
//   - Missing or unknown X-User-Role → 401 Unauthorized
func IdentityMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := uuid.Parse(c.GetHeader(headerUserID))
		if err != nil {
			logger.Debug("identity rejected: missing or malformed user id header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		role, ok := parseRole(c.GetHeader(headerUserRole))
		if !ok {
			logger.Debug("identity rejected: missing or unknown role header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		httputil.SetIdentity(c, sharingDomain.Identity{
			UserID: userID,
			Role:   role,
		})

		c.Next()
	}
}

// parseRole maps a gateway role header value onto a known role.
func parseRole(value string) (sharingDomain.Role, bool) {
	switch sharingDomain.Role(value) {
	case sharingDomain.RolePatient:
		return sharingDomain.RolePatient, true
	case sharingDomain.RoleDoctor:
		return sharingDomain.RoleDoctor, true
	case sharingDomain.RoleAdmin:
		return sharingDomain.RoleAdmin, true
	default:
		return "", false
	}
}
