package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/models"
)

const actorContextKey = "actor"

// ActorMiddleware resolves the calling user from the X-User-ID header and
// stores it in the request context. Requests without a known user are
// rejected before they reach any handler.
func (h *Handlers) ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing X-User-ID header"})
			return
		}

		user, err := h.userRepo.GetByID(userID)
		if err != nil {
			h.logger.Error("Failed to resolve user", zap.String("user_id", userID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve user"})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}

		c.Set(actorContextKey, user)
		c.Next()
	}
}

// actorFrom returns the user stored by ActorMiddleware. It is only valid on
// routes behind that middleware.
func actorFrom(c *gin.Context) *models.User {
	return c.MustGet(actorContextKey).(*models.User)
}
