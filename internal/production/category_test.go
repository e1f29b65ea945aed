package production_test

import (
	"testing"

	"github.com/horno-sanmarino/bakery-api/internal/production"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupID(t *testing.T) {
	assert.Equal(t, "today-cakes-enteros", production.GroupID(production.BucketToday, "Cakes Enteros"))
	assert.Equal(t, "delayed-otros", production.GroupID(production.BucketDelayed, "Otros"))
	assert.Equal(t, "future-pack-de-turrones", production.GroupID(production.BucketFuture, "Pack  de   Turrones"))
}

func TestGroupByCategory_PreferenceOrder(t *testing.T) {
	items := []production.Item{
		{ProductName: "a", Category: "individual"},
		{ProductName: "b", Category: "cakes enteros"},
		{ProductName: "c", Category: "panetton"},
	}

	groups := production.GroupByCategory(production.BucketToday, items, nil, nil)

	require.Len(t, groups, 3)
	assert.Equal(t, "cakes enteros", groups[0].Name)
	assert.Equal(t, "panetton", groups[1].Name)
	assert.Equal(t, "individual", groups[2].Name)
}

func TestGroupByCategory_UnknownsAfterKnownAlphabetically(t *testing.T) {
	items := []production.Item{
		{ProductName: "a", Category: "zumos"},
		{ProductName: "b", Category: "bocaditos"},
		{ProductName: "c", Category: "individual"},
	}

	groups := production.GroupByCategory(production.BucketToday, items, nil, nil)

	require.Len(t, groups, 3)
	assert.Equal(t, "individual", groups[0].Name)
	assert.Equal(t, "bocaditos", groups[1].Name)
	assert.Equal(t, "zumos", groups[2].Name)
}

func TestGroupByCategory_OtrosAlwaysLast(t *testing.T) {
	items := []production.Item{
		{ProductName: "a", Category: production.CategoryOther},
		{ProductName: "b", Category: "zz desconocida"},
		{ProductName: "c", Category: "cakes enteros"},
		{ProductName: "d", Category: ""}, // empty collapses into Otros
	}

	groups := production.GroupByCategory(production.BucketToday, items, nil, nil)

	require.Len(t, groups, 3)
	assert.Equal(t, "cakes enteros", groups[0].Name)
	assert.Equal(t, "zz desconocida", groups[1].Name)
	assert.Equal(t, production.CategoryOther, groups[2].Name)
	assert.Len(t, groups[2].Items, 2)
}

func TestGroupByCategory_CollapseState(t *testing.T) {
	items := []production.Item{
		{ProductName: "a", Category: "individual"},
		{ProductName: "b", Category: "panetton"},
	}
	collapsed := map[string]struct{}{
		production.GroupID(production.BucketToday, "panetton"): {},
	}

	groups := production.GroupByCategory(production.BucketToday, items, nil, collapsed)

	require.Len(t, groups, 2)
	assert.Equal(t, "panetton", groups[0].Name)
	assert.False(t, groups[0].Expanded)
	assert.Equal(t, "individual", groups[1].Name)
	assert.True(t, groups[1].Expanded)
}

func TestGroupByCategory_CustomOrder(t *testing.T) {
	items := []production.Item{
		{ProductName: "a", Category: "individual"},
		{ProductName: "b", Category: "panetton"},
	}

	groups := production.GroupByCategory(production.BucketToday, items, []string{"individual", "panetton"}, nil)

	require.Len(t, groups, 2)
	assert.Equal(t, "individual", groups[0].Name)
	assert.Equal(t, "panetton", groups[1].Name)
}
