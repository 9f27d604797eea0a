package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/staffplan-api/internal/middleware"
	appErrors "github.com/noah-isme/staffplan-api/pkg/errors"
)

func bindingError(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
}

// metaWithCache records the cache outcome and returns the response metadata.
func metaWithCache(c *gin.Context, hit bool) map[string]interface{} {
	middleware.SetCacheHit(c, hit)
	return middleware.ExtractMeta(c)
}
