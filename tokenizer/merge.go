package tokenizer

// Merge returns a copy of ids with every non-overlapping occurrence of pair,
// scanning left to right, replaced by id.
func Merge(ids []int, pair Pair, id int) []int {
	merged := make([]int, 0, len(ids))
	for i := 0; i < len(ids); {
		if i+1 < len(ids) && ids[i] == pair.Left && ids[i+1] == pair.Right {
			merged = append(merged, id)
			i += 2
			continue
		}

		merged = append(merged, ids[i])
		i++
	}

	return merged
}
