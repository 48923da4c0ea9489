package logging

// ProgressSampler thins per-row progress into one report per percentage
// bucket. A sampler covers a single pass over a known number of rows.
type ProgressSampler struct {
	total      int
	bucketSize float64
	lastBucket int
}

// NewProgressSampler tracks a pass over total rows, reporting whenever the
// completed share enters a new bucket of bucketSize percent (default 5).
func NewProgressSampler(total int, bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 || bucketSize > 100 {
		bucketSize = 5
	}
	return &ProgressSampler{total: total, bucketSize: bucketSize, lastBucket: -1}
}

// Tick records that done rows are complete. It returns the completed
// percentage and whether this tick should be reported. The first tick and the
// final row are always reported.
func (s *ProgressSampler) Tick(done int) (float64, bool) {
	if s == nil || s.total <= 0 {
		return -1, false
	}
	done = min(max(done, 0), s.total)
	percent := float64(done) / float64(s.total) * 100
	bucket := int(percent / s.bucketSize)
	final := done == s.total
	switch {
	case final && s.lastBucket == s.finalBucket():
		return percent, false
	case !final && bucket <= s.lastBucket:
		return percent, false
	case final:
		s.lastBucket = s.finalBucket()
	default:
		s.lastBucket = bucket
	}
	return percent, true
}

func (s *ProgressSampler) finalBucket() int {
	return int(100/s.bucketSize) + 1
}
