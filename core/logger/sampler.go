package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// Default share of high-volume debug events that get logged.
const (
	defaultSampleNum = 1
	defaultSampleDen = 50
)

type ratio struct{ num, den uint64 }

// ratioSampler lets num out of every den events through. A zero ratio lets
// everything through.
type ratioSampler struct {
	ratio atomic.Pointer[ratio]
	seq   atomic.Uint64
}

func newRatioSampler(num, den int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(num, den)
	return s
}

// Set replaces the ratio and restarts the cycle.
func (s *ratioSampler) Set(num, den int) {
	r := &ratio{}
	if num > 0 && den > 0 {
		r.num, r.den = uint64(min(num, den)), uint64(den)
	}
	s.ratio.Store(r)
	s.seq.Store(0)
}

// Allow reports whether the next event passes.
func (s *ratioSampler) Allow() bool {
	r := s.ratio.Load()
	if r == nil || r.den == 0 {
		return true
	}
	return (s.seq.Add(1)-1)%r.den < r.num
}

// parseSampleRatio reads "all", "N/M" (N of every M) or "M" (1 of every M).
// A zero or negative part means every event. ok is false for anything else.
func parseSampleRatio(raw string) (num, den int, ok bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "all" {
		return 0, 0, true
	}
	numPart, denPart, hasSlash := strings.Cut(raw, "/")
	if !hasSlash {
		numPart, denPart = "1", raw
	}
	n, err := strconv.Atoi(strings.TrimSpace(numPart))
	if err != nil {
		return 0, 0, false
	}
	d, err := strconv.Atoi(strings.TrimSpace(denPart))
	if err != nil {
		return 0, 0, false
	}
	if n <= 0 || d <= 0 {
		return 0, 0, true
	}
	return n, d, true
}
