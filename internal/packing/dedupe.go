package packing

type dedupeKey struct {
	name     string
	category Category
	priority Priority
}

// Dedupe merges items sharing name, category and priority by summing their
// quantities. The first-seen item keeps its other fields and its position.
func Dedupe(items []Item) []Item {
	index := make(map[dedupeKey]int, len(items))
	out := make([]Item, 0, len(items))
	for _, item := range items {
		key := dedupeKey{item.Name, item.Category, item.Priority}
		if i, ok := index[key]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		index[key] = len(out)
		out = append(out, item)
	}
	return out
}
