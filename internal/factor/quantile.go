package factor

import "sort"

// assignQuantiles splits values into q equal-population buckets labeled
// 1..q, lowest values in bucket 1.
//
// The element at sorted position i (0-based, n values) goes to bucket
// ceil(i*q/(n-1)), floored at 1. For distinct values this matches a quantile
// cut on linearly interpolated percentiles, so bucket sizes differ by at
// most one. Equal values share the bucket of the first sorted position of
// their group, which keeps boundary ties together in the lower bucket.
//
// ok is false when fewer than q values exist or any bucket ends up empty;
// every value is then assigned to bucket 1. A tie that only swallows a cut
// point (for example three equal minimums out of ten with q=5) still leaves
// every bucket populated, so it is binned rather than rejected; a strict
// unique-edge quantile cut would reject it.
func assignQuantiles(values []float64, q int) (buckets []int, ok bool) {
	n := len(values)
	buckets = make([]int, n)
	for i := range buckets {
		buckets[i] = 1
	}
	if n == 0 {
		return buckets, true
	}
	if n < q || n < 2 {
		return buckets, false
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	counts := make([]int, q+1)
	groupBucket := 1
	for pos, idx := range order {
		if pos == 0 || values[idx] != values[order[pos-1]] {
			groupBucket = bucketAt(pos, n, q)
		}
		buckets[idx] = groupBucket
		counts[groupBucket]++
	}

	for k := 1; k <= q; k++ {
		if counts[k] == 0 {
			for i := range buckets {
				buckets[i] = 1
			}
			return buckets, false
		}
	}

	return buckets, true
}

// bucketAt is ceil(pos*q/(n-1)) clamped to [1, q]
func bucketAt(pos, n, q int) int {
	k := (pos*q + n - 2) / (n - 1)
	if k < 1 {
		k = 1
	}
	if k > q {
		k = q
	}
	return k
}
