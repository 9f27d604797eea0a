package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/staffplan-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "staffplan", nil)
	ctx := context.Background()

	var dest map[string]int
	err := repo.Get(ctx, "layout:x", &dest)
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
	assert.NoError(t, repo.Set(ctx, "layout:x", map[string]int{"a": 1}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "layout:*"))
	assert.NoError(t, repo.Ping(ctx))
}

func TestCacheRepositoryKeyNamespace(t *testing.T) {
	assert.Equal(t, "staffplan:report:abc", NewCacheRepository(nil, "staffplan", nil).key("report:abc"))
	assert.Equal(t, "report:abc", NewCacheRepository(nil, "", nil).key("report:abc"))
}
