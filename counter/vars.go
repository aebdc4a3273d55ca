package counter

// Helpers over sorted variable lists. Bags keep their variables sorted
// ascending, so unions, intersections and position lookups are all two-pointer
// merges.

// mergeVars returns the sorted union of a and b.
func mergeVars(a, b []int64) []int64 {
	out := make([]int64, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// intersectVars returns the sorted intersection of a and b.
func intersectVars(a, b []int64) []int64 {
	var out []int64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// positionsOf returns, for each variable of sub, its index within super.
// Every variable of sub must appear in super.
func positionsOf(sub, super []int64) []int {
	out := make([]int, len(sub))
	j := 0
	for i, v := range sub {
		for super[j] != v {
			j++
		}
		out[i] = j
		j++
	}
	return out
}

// complementPositions returns the indices within super of the variables that
// do not appear in sub.
func complementPositions(sub, super []int64) []int {
	var out []int
	j := 0
	for i, v := range super {
		if j < len(sub) && sub[j] == v {
			j++
			continue
		}
		out = append(out, i)
	}
	return out
}
