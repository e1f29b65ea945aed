package production

import (
	"sort"
	"time"

	"github.com/horno-sanmarino/bakery-api/internal/domain"
)

// OrderRef is the projection of one order line item that the aggregation
// core works on. The service layer builds these from database rows, the
// summary board builds them from API responses.
type OrderRef struct {
	ID          string
	ProductName string
	Category    string
	Client      string
	Delivery    time.Time
	Stage       domain.ProductionStage
	Quantity    int
	Pending     *int
}

// Remaining returns the quantity still to be produced, preferring the
// explicit pending counter over the gross quantity.
func (o OrderRef) Remaining() int {
	if o.Pending != nil {
		return *o.Pending
	}
	return o.Quantity
}

// Active reports whether the order still demands production: not finished,
// not void, and with remaining quantity.
func (o OrderRef) Active() bool {
	return o.Stage.Active() && o.Remaining() > 0
}

// Item is the aggregated production demand for one product within a bucket
type Item struct {
	ProductName   string
	Category      string
	TotalQuantity int
	Urgency       time.Time
	Orders        []OrderRef
}

// Aggregate groups order references by product name and sums their demand.
// Orders that are finished, void or fully produced are excluded unless
// includeInactive is set (raw mode); products left with no contributing
// orders are dropped. Urgency is the earliest delivery among the orders
// that contribute. Items come back sorted by urgency, then product name,
// so output is deterministic regardless of input order.
func Aggregate(orders []OrderRef, includeInactive bool) []Item {
	type group struct {
		category string
		orders   []OrderRef
	}
	groups := make(map[string]*group)
	names := make([]string, 0)

	for _, o := range orders {
		if !includeInactive && !o.Active() {
			continue
		}
		g, ok := groups[o.ProductName]
		if !ok {
			g = &group{}
			groups[o.ProductName] = g
			names = append(names, o.ProductName)
		}
		if g.category == "" {
			g.category = o.Category
		}
		g.orders = append(g.orders, o)
	}

	items := make([]Item, 0, len(names))
	for _, name := range names {
		g := groups[name]
		item := Item{
			ProductName: name,
			Category:    g.category,
			Orders:      g.orders,
		}
		if item.Category == "" {
			item.Category = CategoryOther
		}
		for _, o := range g.orders {
			item.TotalQuantity += o.Remaining()
			if item.Urgency.IsZero() || o.Delivery.Before(item.Urgency) {
				item.Urgency = o.Delivery
			}
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		if !items[i].Urgency.Equal(items[j].Urgency) {
			return items[i].Urgency.Before(items[j].Urgency)
		}
		return items[i].ProductName < items[j].ProductName
	})
	return items
}
