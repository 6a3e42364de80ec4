package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "zenstream/internal/errors"
)

// writeError renders {"error": {...}}. A nil error is treated as internal.
func writeError(c *gin.Context, apiErr *apperrors.APIError) {
	if apiErr == nil {
		apiErr = apperrors.Internal("")
	}
	c.JSON(apiErr.Status, gin.H{"error": apiErr})
}

func writeInvalidJSON(c *gin.Context) {
	writeError(c, apperrors.BadRequest("invalid_json", "invalid request body"))
}
