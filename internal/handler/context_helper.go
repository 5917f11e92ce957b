package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/schoolworks/sis-api/internal/middleware"
	"github.com/schoolworks/sis-api/internal/models"
)

// claimsFromContext returns the JWT claims the auth middleware stored,
// or nil on unauthenticated routes.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, _ := c.Value(middleware.ContextUserKey).(*models.JWTClaims)
	return claims
}

// pageQuery parses the shared page/limit parameters. Unparseable values
// come back as zero and pick up the service-side defaults.
func pageQuery(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, size
}

// sortQuery parses the shared sort/order parameters.
func sortQuery(c *gin.Context) (by, order string) {
	return c.Query("sort"), c.Query("order")
}
