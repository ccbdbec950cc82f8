package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/league-auth/internal/common"
	"github.com/dmitrijs2005/league-auth/internal/logging"
	"github.com/dmitrijs2005/league-auth/internal/server/auth"
	"github.com/gin-gonic/gin"
)

const (
	ctxUsername  = "username"
	ctxRole      = "role"
	ctxExpiresAt = "expiresAt"
)

const bearerPrefix = "Bearer "

// accessTokenMiddleware admits requests carrying a valid bearer access token
// and stores its subject, role and expiry on the gin context.
func accessTokenMiddleware(tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		if !strings.HasPrefix(header, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))

		claims, err := tokens.ParseClaims(token)
		if err != nil {
			writeError(c, err)
			return
		}

		c.Set(ctxUsername, claims.Subject)
		c.Set(ctxRole, claims.Role)
		c.Set(ctxExpiresAt, claims.ExpiresAt.Time)
		c.Next()
	}
}

// requestLogger logs one line per request. Bodies are never logged.
func requestLogger(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		l.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
