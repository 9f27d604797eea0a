package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/staffplan-api/pkg/errors"
	"github.com/noah-isme/staffplan-api/pkg/response"
)

// FeatureHeader names the response header listing the feature serving a route.
const FeatureHeader = "X-Planning-Feature"

// Feature gates a route group behind a config toggle. Disabled features answer
// 404 so clients cannot tell them apart from unknown routes.
func Feature(name string, enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s is disabled", name)))
			return
		}
		c.Writer.Header().Set(FeatureHeader, name)
		c.Next()
	}
}
