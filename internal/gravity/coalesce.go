package gravity

// Coalesce runs nearest-neighbor-sorted single-pass coalescing over bodies
// that are already sorted by nearest-neighbour distance.
//
// The scan keeps a current body. If the next body collides with it, the two
// are replaced by current.Merge(next) and the merged body stays current, so
// a third body adjacent to the merge is tested against the combined result.
// Otherwise current is emitted and next takes its place.
//
// The pass is not iterated to a fixed point. Two colliding bodies that are
// not adjacent in sort order, before or after merging, stay separate until
// a later tick brings them together. This is an accepted approximation of
// exact collision resolution.
func Coalesce(sorted []Body) ([]Body, []Merge) {
	if len(sorted) == 0 {
		return []Body{}, nil
	}

	out := make([]Body, 0, len(sorted))
	var merges []Merge

	current := sorted[0]
	for _, next := range sorted[1:] {
		if current.Colliding(next) {
			merges = append(merges, Merge{Survivor: current.id, Absorbed: next.id})
			current = current.Merge(next)
			continue
		}
		out = append(out, current)
		current = next
	}
	out = append(out, current)

	return out, merges
}
