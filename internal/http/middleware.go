package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"listing-progress/internal/auth"
)

const identityKey = "identity"

// requireIdentity resolves the caller before any handler runs. Handlers read the
// identity only from the context, never from the request payload.
func (h *Handler) requireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := h.resolver.Resolve(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			entry := h.logger.WithFields(logrus.Fields{
				"method": c.Request.Method,
				"path":   c.Request.URL.Path,
			})
			if errors.Is(err, auth.ErrMissingCredential) {
				entry.Warn("request without bearer token")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No authorization token provided"})
				return
			}
			entry.WithError(err).Warn("rejected bearer token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

func identityFrom(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	identity, ok := v.(auth.Identity)
	return identity, ok
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}
		if identity, ok := identityFrom(c); ok {
			fields["user_id"] = identity.UserID
		}
		logger.WithFields(fields).Debug("request")
	}
}
