package handlers

import (
	"net/http"
	"strings"

	"lightsensord/internal/service"

	"github.com/gin-gonic/gin"
)

// operatorIDKey holds the authenticated operator in the gin context.
const operatorIDKey = "operatorId"

const (
	errMissingAuthHeader = "missing Authorization header"
	errBadAuthHeader     = "invalid Authorization header format"
	errBadToken          = "invalid or expired token"
)

// bearerToken extracts the token from "Bearer <token>". The scheme is
// case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// operatorMiddleware authenticates the operator and attaches its ID to the
// request context, so sensor events written by the handler name their actor.
func (h *Handler) operatorMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errMissingAuthHeader})
		return
	}
	token, ok := bearerToken(header)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errBadAuthHeader})
		return
	}

	operatorID, err := h.services.ParseToken(token)
	if err != nil || operatorID <= 0 {
		if h.log != nil {
			h.log.Infow("operator_token_rejected", "path", c.FullPath(), "err", err)
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errBadToken})
		return
	}

	c.Set(operatorIDKey, operatorID)
	c.Request = c.Request.WithContext(service.WithOperator(c.Request.Context(), operatorID))
	c.Next()
}
