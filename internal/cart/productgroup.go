package cart

import "sort"

// ResetProductGroups renumbers product groups to the dense sequence 1..n, keeping their
// relative order, and returns the relabelled items plus one action per item whose group moved.
// Items without a group (0) are left alone.
func ResetProductGroups(items []LineItem) ([]LineItem, []UpdateAction) {
	seen := make(map[int]struct{})
	for _, item := range items {
		if item.Custom.ProductGroup > 0 {
			seen[item.Custom.ProductGroup] = struct{}{}
		}
	}

	keys := make([]int, 0, len(seen))
	for group := range seen {
		keys = append(keys, group)
	}
	sort.Ints(keys)

	dense := make(map[int]int, len(keys))
	for i, group := range keys {
		dense[group] = i + 1
	}

	out := make([]LineItem, len(items))
	var deltas []UpdateAction
	for i, item := range items {
		out[i] = item
		current := item.Custom.ProductGroup
		if current <= 0 {
			continue
		}
		next := dense[current]
		if next == current {
			continue
		}
		out[i].Custom.ProductGroup = next
		deltas = append(deltas, SetCustomField(item.ID, FieldProductGroup, next))
	}
	return out, deltas
}
