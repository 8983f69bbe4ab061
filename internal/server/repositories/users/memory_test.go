package users

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptobulldev/userdash/internal/common"
	"github.com/cryptobulldev/userdash/internal/server/models"
)

func newMemoryRepo() *MemoryRepository {
	r := NewMemoryRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	r.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	return r
}

func TestMemory_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	r := newMemoryRepo()

	u, err := r.Create(ctx, &models.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "h"})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, *u, *got)

	got, err = r.GetUserByLogin(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = r.Create(ctx, &models.User{Name: "Other", Email: "Alice@Example.com"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = r.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = r.GetUserByLogin(ctx, "missing@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemory_List(t *testing.T) {
	ctx := context.Background()
	r := newMemoryRepo()
	for i := 1; i <= 5; i++ {
		_, err := r.Create(ctx, &models.User{Name: fmt.Sprintf("user%d", i), Email: fmt.Sprintf("u%d@example.com", i)})
		require.NoError(t, err)
	}
	_, err := r.Create(ctx, &models.User{Name: "Zed", Email: "zed@other.org"})
	require.NoError(t, err)

	page, total, err := r.List(ctx, models.ListParams{Offset: 0, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 6, total)
	require.Len(t, page, 2)
	assert.Equal(t, "Zed", page[0].Name, "newest first")
	assert.Equal(t, "user5", page[1].Name)

	page, total, err = r.List(ctx, models.ListParams{Offset: 4, Limit: 2, Search: "EXAMPLE"})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 1)
	assert.Equal(t, "user1", page[0].Name)

	page, total, err = r.List(ctx, models.ListParams{Offset: 50, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 6, total)
	assert.Empty(t, page)
}

func TestMemory_Update(t *testing.T) {
	ctx := context.Background()
	r := newMemoryRepo()
	a, _ := r.Create(ctx, &models.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "h1"})
	_, _ = r.Create(ctx, &models.User{Name: "Bob", Email: "bob@example.com"})

	name := "Alice B"
	got, err := r.Update(ctx, a.ID, models.UserUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", got.Name)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "h1", got.PasswordHash)

	taken := "BOB@example.com"
	_, err = r.Update(ctx, a.ID, models.UserUpdate{Email: &taken})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	own := "ALICE@example.com"
	_, err = r.Update(ctx, a.ID, models.UserUpdate{Email: &own})
	assert.NoError(t, err, "re-casing your own email is allowed")

	_, err = r.Update(ctx, "missing", models.UserUpdate{Name: &name})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemory_Delete(t *testing.T) {
	ctx := context.Background()
	r := newMemoryRepo()
	a, _ := r.Create(ctx, &models.User{Name: "Alice", Email: "alice@example.com"})

	require.NoError(t, r.Delete(ctx, a.ID))
	assert.ErrorIs(t, r.Delete(ctx, a.ID), common.ErrorNotFound)
	_, err := r.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
