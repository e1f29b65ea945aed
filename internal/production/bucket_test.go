package production_test

import (
	"testing"
	"time"

	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"github.com/horno-sanmarino/bakery-api/internal/production"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guayaquil(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(production.BusinessTimezone)
	require.NoError(t, err)
	return loc
}

func TestBoundsAt(t *testing.T) {
	loc := guayaquil(t)

	// 2024-06-15 14:30 local time
	now := time.Date(2024, 6, 15, 14, 30, 0, 0, loc)
	bounds := production.BoundsAt(now, loc)

	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, loc), bounds.StartOfToday)
	assert.Equal(t, time.Date(2024, 6, 16, 0, 0, 0, 0, loc), bounds.StartOfTomorrow)
	assert.Equal(t, time.Date(2024, 6, 17, 0, 0, 0, 0, loc), bounds.StartOfFuture)
}

func TestBoundsAt_ConvertsFromUTC(t *testing.T) {
	loc := guayaquil(t)

	// 03:00 UTC is still the previous day in Guayaquil (UTC-5)
	now := time.Date(2024, 6, 15, 3, 0, 0, 0, time.UTC)
	bounds := production.BoundsAt(now, loc)

	assert.Equal(t, time.Date(2024, 6, 14, 0, 0, 0, 0, loc), bounds.StartOfToday)
}

func TestClassify(t *testing.T) {
	loc := guayaquil(t)
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, loc)
	bounds := production.BoundsAt(now, loc)

	tests := []struct {
		name     string
		delivery time.Time
		want     production.Bucket
	}{
		{"yesterday evening", time.Date(2024, 6, 14, 20, 0, 0, 0, loc), production.BucketDelayed},
		{"last week", time.Date(2024, 6, 8, 9, 0, 0, 0, loc), production.BucketDelayed},
		{"midnight today", time.Date(2024, 6, 15, 0, 0, 0, 0, loc), production.BucketToday},
		{"this afternoon", time.Date(2024, 6, 15, 16, 0, 0, 0, loc), production.BucketToday},
		{"end of today", time.Date(2024, 6, 15, 23, 59, 59, 0, loc), production.BucketToday},
		{"midnight tomorrow", time.Date(2024, 6, 16, 0, 0, 0, 0, loc), production.BucketTomorrow},
		{"tomorrow noon", time.Date(2024, 6, 16, 12, 0, 0, 0, loc), production.BucketTomorrow},
		{"day after tomorrow", time.Date(2024, 6, 17, 0, 0, 0, 0, loc), production.BucketFuture},
		{"next month", time.Date(2024, 7, 20, 10, 0, 0, 0, loc), production.BucketFuture},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := bounds.Classify(tt.delivery)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_ZeroDelivery(t *testing.T) {
	loc := guayaquil(t)
	bounds := production.BoundsAt(time.Date(2024, 6, 15, 12, 0, 0, 0, loc), loc)

	_, ok := bounds.Classify(time.Time{})
	assert.False(t, ok, "orders without a delivery date belong to no bucket")
}

func TestPartition(t *testing.T) {
	loc := guayaquil(t)
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, loc)

	orders := []production.OrderRef{
		{ID: "a", Delivery: time.Date(2024, 6, 14, 10, 0, 0, 0, loc)},
		{ID: "b", Delivery: time.Date(2024, 6, 15, 18, 0, 0, 0, loc)},
		{ID: "c", Delivery: time.Date(2024, 6, 16, 9, 0, 0, 0, loc)},
		{ID: "d", Delivery: time.Date(2024, 6, 30, 9, 0, 0, 0, loc)},
		{ID: "e"}, // no delivery date
	}

	buckets := production.Partition(orders, now, loc)

	assert.Len(t, buckets[production.BucketDelayed], 1)
	assert.Len(t, buckets[production.BucketToday], 1)
	assert.Len(t, buckets[production.BucketTomorrow], 1)
	assert.Len(t, buckets[production.BucketFuture], 1)
	assert.Equal(t, "a", buckets[production.BucketDelayed][0].ID)
	assert.Equal(t, "b", buckets[production.BucketToday][0].ID)
	assert.Equal(t, "c", buckets[production.BucketTomorrow][0].ID)
	assert.Equal(t, "d", buckets[production.BucketFuture][0].ID)
}

func TestBucketIsValid(t *testing.T) {
	for _, b := range production.Buckets {
		assert.True(t, b.IsValid())
	}
	assert.False(t, production.Bucket("yesterday").IsValid())
	assert.False(t, production.Bucket("").IsValid())
}

func TestOrderRefActive(t *testing.T) {
	pending := 0
	tests := []struct {
		name string
		ref  production.OrderRef
		want bool
	}{
		{"pending with demand", production.OrderRef{Stage: domain.StagePending, Quantity: 3}, true},
		{"in process with demand", production.OrderRef{Stage: domain.StageInProcess, Quantity: 3}, true},
		{"finished", production.OrderRef{Stage: domain.StageFinished, Quantity: 3}, false},
		{"void", production.OrderRef{Stage: domain.StageVoid, Quantity: 3}, false},
		{"fully produced", production.OrderRef{Stage: domain.StageInProcess, Quantity: 3, Pending: &pending}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ref.Active())
		})
	}
}
