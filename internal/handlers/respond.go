// Package handlers exposes the HTTP surface over gin.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rental-billing-backend/internal/apperrors"
)

// respondError maps an application error to its HTTP status, keeping the
// stable kind in the body. Unknown errors are reported as 500 without
// leaking internals.
func respondError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	switch kind {
	case apperrors.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": kind})
	case apperrors.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "kind": kind})
	case apperrors.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "kind": kind})
	case apperrors.KindStorage:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "kind": kind})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
