package server

import (
	"strings"

	"github.com/civicworks/caseboard/internal/identity"
	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

const headerRequestID = "X-Request-ID"

// RequestContext stamps request correlation material onto the context
// before any handler runs.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(headerRequestID))
		if requestID == "" {
			requestID = ulid.Make().String()
		}
		c.Header(headerRequestID, requestID)

		ctx := identity.WithRequestID(c.Request.Context(), requestID)
		ctx = identity.WithIPAddress(ctx, c.ClientIP())
		ctx = identity.WithUserAgent(ctx, c.Request.UserAgent())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AuthRequired verifies the bearer access token and attaches the
// resulting identity to the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		claims, err := s.authsvc.Verify(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		userID, err := identity.ParseUserID(claims.UserID)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ident := identity.Identity{
			UserID:   userID,
			Username: claims.Username,
			Role:     claims.Role,
		}
		if claims.RegionID != "" {
			if regionID, err := identity.ParseUserID(claims.RegionID); err == nil {
				ident.RegionID = regionID
			}
		}

		c.Request = c.Request.WithContext(identity.WithIdentity(c.Request.Context(), ident))
		c.Next()
	}
}

// authorize gates a route on the caller's role class. Region scoping
// happens in the services, not here.
func (s *Server) authorize(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := identity.FromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		if err := s.authzSvc.Authorize(c.Request.Context(), ident.Role, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// UploadRateLimit throttles spreadsheet ingestion per user. The limiter
// fails open, so only an explicit denial produces a 429.
func (s *Server) UploadRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.uploadLimiter == nil {
			c.Next()
			return
		}

		if _, allowed := s.uploadLimiter.Allow(c.Request.Context()); !allowed {
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
