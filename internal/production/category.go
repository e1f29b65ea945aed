package production

import (
	"sort"
	"strings"
)

// CategoryOther is the fallback category for products without one. It always
// sorts last on the board.
const CategoryOther = "Otros"

// DefaultCategoryOrder is the board's category preference order. Categories
// not listed here sort after the known ones, alphabetically; CategoryOther
// is force-appended to the tail and need not be listed.
var DefaultCategoryOrder = []string{
	"cakes enteros",
	"cakes porcion",
	"pack de turrones",
	"panetton",
	"secos market",
	"individual",
	"panaderais",
}

// CategoryGroup is a bucket's demand for one category
type CategoryGroup struct {
	ID       string
	Name     string
	Items    []Item
	Expanded bool
}

// GroupID derives the stable identifier used to persist a category's
// collapse state across refreshes: bucket name plus the category lowercased
// with whitespace runs collapsed to hyphens.
func GroupID(bucket Bucket, category string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(category)), "-")
	return string(bucket) + "-" + norm
}

// GroupByCategory partitions a bucket's items by category and orders the
// groups by the preference list. Unknown categories follow the known ones in
// alphabetical order; CategoryOther is always last. Groups whose ID is in
// collapsed come back with Expanded false.
func GroupByCategory(bucket Bucket, items []Item, order []string, collapsed map[string]struct{}) []CategoryGroup {
	if order == nil {
		order = DefaultCategoryOrder
	}
	rank := make(map[string]int, len(order))
	for i, name := range order {
		if name == CategoryOther {
			continue
		}
		rank[name] = i
	}
	// ranks after every explicit entry: unknown categories, then Otros
	unknownRank := len(order)
	otherRank := len(order) + 1

	byName := make(map[string][]Item)
	names := make([]string, 0)
	for _, item := range items {
		cat := item.Category
		if cat == "" {
			cat = CategoryOther
		}
		if _, ok := byName[cat]; !ok {
			names = append(names, cat)
		}
		byName[cat] = append(byName[cat], item)
	}

	rankOf := func(name string) int {
		if name == CategoryOther {
			return otherRank
		}
		if r, ok := rank[name]; ok {
			return r
		}
		return unknownRank
	}

	sort.Slice(names, func(i, j int) bool {
		ri, rj := rankOf(names[i]), rankOf(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})

	groups := make([]CategoryGroup, 0, len(names))
	for _, name := range names {
		id := GroupID(bucket, name)
		_, isCollapsed := collapsed[id]
		groups = append(groups, CategoryGroup{
			ID:       id,
			Name:     name,
			Items:    byName[name],
			Expanded: !isCollapsed,
		})
	}
	return groups
}
