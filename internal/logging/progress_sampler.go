package logging

import "strings"

// ProgressSampler suppresses repetitive progress logs while preserving signal
// when the category or percentage bucket changes.
type ProgressSampler struct {
	bucketSize   float64
	lastCategory string
	lastBucket   int
}

// NewProgressSampler constructs a sampler that emits when the percent crosses
// bucket boundaries (default 25%) or when the category changes.
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 25
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether a progress event should be logged. A negative
// percent means unknown and only a category change emits.
func (s *ProgressSampler) ShouldLog(percent float64, category string) bool {
	if s == nil {
		return true
	}
	category = strings.TrimSpace(category)
	emit := false
	if category != "" && category != s.lastCategory {
		s.lastCategory = category
		emit = true
		s.lastBucket = -1
	}
	if percent >= 0 {
		bucket := int(percent / s.bucketSize)
		if percent >= 100 {
			bucket = int(100 / s.bucketSize)
		}
		if bucket > s.lastBucket {
			s.lastBucket = bucket
			emit = true
		}
	}
	return emit
}

// Reset clears the sampler state.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastCategory = ""
	s.lastBucket = -1
}
