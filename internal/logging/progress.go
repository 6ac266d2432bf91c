package logging

// ProgressSampler decides when sweep progress is worth a log line. It emits on
// the first observation, on every phase change, and whenever the completed
// fraction crosses a new bucket boundary.
type ProgressSampler struct {
	bucketPercent float64
	phase         string
	bucket        int
}

// NewProgressSampler returns a sampler with the given bucket width in percent
// (10 when non-positive).
func NewProgressSampler(bucketPercent float64) *ProgressSampler {
	if bucketPercent <= 0 {
		bucketPercent = 10
	}
	return &ProgressSampler{bucketPercent: bucketPercent, bucket: -1}
}

// Observe reports whether done/total in phase should be logged.
func (s *ProgressSampler) Observe(phase string, done, total int) bool {
	if s == nil {
		return true
	}
	emit := false
	if phase != s.phase {
		s.phase = phase
		s.bucket = -1
		emit = true
	}
	if total <= 0 {
		return emit
	}
	if done > total {
		done = total
	}
	bucket := int(float64(done) * 100 / float64(total) / s.bucketPercent)
	if bucket > s.bucket {
		s.bucket = bucket
		emit = true
	}
	return emit
}

// Percent returns done/total as a percentage clamped to [0, 100].
func Percent(done, total int) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(done) * 100 / float64(total)
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
