package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/granaflow/backend/internal/model"
	"github.com/granaflow/backend/internal/store"
)

func newCategoryService(st store.Store) *CategoryService {
	svc := NewCategoryService(st)
	svc.now = fixedClock(testNow)
	return svc
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newCategoryService(st)

	require.NoError(t, svc.SeedDefaults(ctx))
	first, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, len(defaultCategories))

	require.NoError(t, svc.SeedDefaults(ctx))
	second, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, second, len(defaultCategories))

	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestSeedDefaultsIncludesFallbackChain(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newCategoryService(st)
	require.NoError(t, svc.SeedDefaults(ctx))

	idx, err := svc.Index(ctx)
	require.NoError(t, err)
	catID, subID, err := idx.Resolve(fallbackCategoryName, fallbackSubcategoryName)
	require.NoError(t, err)
	assert.NotEmpty(t, catID)
	assert.NotEmpty(t, subID)
}

func TestResolveFallsBackThroughChain(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newCategoryService(st)
	require.NoError(t, svc.SeedDefaults(ctx))
	idx, err := svc.Index(ctx)
	require.NoError(t, err)

	otherID, uncatID, err := idx.Resolve("Other", "Uncategorized")
	require.NoError(t, err)

	t.Run("exact match case-insensitive", func(t *testing.T) {
		catID, subID, err := idx.Resolve("food", "groceries")
		require.NoError(t, err)
		assert.NotEqual(t, otherID, catID)
		assert.NotEmpty(t, subID)
	})
	t.Run("unknown subcategory falls to category Other", func(t *testing.T) {
		catID, subID, err := idx.Resolve("Food", "Caviar")
		require.NoError(t, err)
		foodID, foodOtherID, rerr := idx.Resolve("Food", "Other")
		require.NoError(t, rerr)
		assert.Equal(t, foodID, catID)
		assert.Equal(t, foodOtherID, subID)
	})
	t.Run("unknown category falls to Other/Uncategorized", func(t *testing.T) {
		catID, subID, err := idx.Resolve("Cryptozoology", "Sightings")
		require.NoError(t, err)
		assert.Equal(t, otherID, catID)
		assert.Equal(t, uncatID, subID)
	})
}

func TestResolveFailsWithoutSeed(t *testing.T) {
	ctx := context.Background()
	svc := newCategoryService(store.NewMemoryStore())
	idx, err := svc.Index(ctx)
	require.NoError(t, err)

	_, _, err = idx.Resolve("Food", "Groceries")
	var nferr *CategoryNotFoundError
	require.ErrorAs(t, err, &nferr)
}

func TestDefaultCategoryCannotBeDeleted(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newCategoryService(st)
	require.NoError(t, svc.SeedDefaults(ctx))

	cats, err := svc.List(ctx)
	require.NoError(t, err)
	var verr *ValidationError
	require.ErrorAs(t, svc.Delete(ctx, cats[0].ID), &verr)

	custom, err := svc.Create(ctx, &model.Category{Name: "Pets", Color: "#000000"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, custom.ID))
}
