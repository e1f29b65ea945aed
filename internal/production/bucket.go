// Package production implements the demand-aggregation core of the bakery:
// classifying orders into delivery-time buckets, aggregating line items into
// per-product production demand, and grouping demand by category.
//
// The package is pure: it performs no I/O and owns no state. The summary
// service feeds it from the database and the summary board feeds it from API
// responses, so both sides bucket and aggregate identically.
package production

import "time"

// BusinessTimezone is the bakery's local timezone. Bucket boundaries are
// computed against this zone no matter where the process runs.
const BusinessTimezone = "America/Guayaquil"

// Bucket is one of the four delivery-time windows of the production board
type Bucket string

const (
	BucketDelayed  Bucket = "delayed"
	BucketToday    Bucket = "today"
	BucketTomorrow Bucket = "tomorrow"
	BucketFuture   Bucket = "future"
)

// Buckets lists all buckets in board order
var Buckets = []Bucket{BucketDelayed, BucketToday, BucketTomorrow, BucketFuture}

// CriticalBuckets are fetched first when loading is staged; the remaining
// buckets load as a background refinement.
var CriticalBuckets = []Bucket{BucketDelayed, BucketToday}

// BackgroundBuckets complete the board after the critical buckets
var BackgroundBuckets = []Bucket{BucketTomorrow, BucketFuture}

// IsValid checks if the Bucket is a valid enum value
func (b Bucket) IsValid() bool {
	switch b {
	case BucketDelayed, BucketToday, BucketTomorrow, BucketFuture:
		return true
	}
	return false
}

// Boundaries holds the calendar-day cut points used to classify deliveries
type Boundaries struct {
	StartOfToday    time.Time
	StartOfTomorrow time.Time
	StartOfFuture   time.Time
}

// BoundsAt computes the bucket boundaries for the calendar day containing
// now, in the given location.
func BoundsAt(now time.Time, loc *time.Location) Boundaries {
	local := now.In(loc)
	startOfToday := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return Boundaries{
		StartOfToday:    startOfToday,
		StartOfTomorrow: startOfToday.AddDate(0, 0, 1),
		StartOfFuture:   startOfToday.AddDate(0, 0, 2),
	}
}

// Classify places a delivery timestamp into exactly one bucket. The second
// return is false for a missing (zero) timestamp: such orders belong to no
// bucket rather than silently landing in today.
func (bd Boundaries) Classify(delivery time.Time) (Bucket, bool) {
	if delivery.IsZero() {
		return "", false
	}
	switch {
	case delivery.Before(bd.StartOfToday):
		return BucketDelayed, true
	case delivery.Before(bd.StartOfTomorrow):
		return BucketToday, true
	case delivery.Before(bd.StartOfFuture):
		return BucketTomorrow, true
	default:
		return BucketFuture, true
	}
}

// Partition splits orders into buckets by delivery date. Orders without a
// delivery timestamp are excluded entirely.
func Partition(orders []OrderRef, now time.Time, loc *time.Location) map[Bucket][]OrderRef {
	bounds := BoundsAt(now, loc)
	out := make(map[Bucket][]OrderRef, len(Buckets))
	for _, o := range orders {
		bucket, ok := bounds.Classify(o.Delivery)
		if !ok {
			continue
		}
		out[bucket] = append(out[bucket], o)
	}
	return out
}
