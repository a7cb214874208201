package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// ratioSampler admits numerator out of every denominator calls. A zero
// ratio disables sampling, meaning every call is admitted.
type ratioSampler struct {
	spec atomic.Uint64 // numerator in high 32 bits, denominator in low 32
	seq  atomic.Uint64
}

func newRatioSampler(numerator, denominator int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(numerator, denominator)
	return s
}

// Set replaces the sampling ratio. Non-positive values disable sampling.
func (s *ratioSampler) Set(numerator, denominator int) {
	if numerator <= 0 || denominator <= 0 {
		s.spec.Store(0)
		s.seq.Store(0)
		return
	}
	if numerator > denominator {
		numerator = denominator
	}
	s.spec.Store(uint64(numerator)<<32 | uint64(uint32(denominator)))
	s.seq.Store(0)
}

// Allow reports whether the caller won this round of sampling.
func (s *ratioSampler) Allow() bool {
	packed := s.spec.Load()
	if packed == 0 {
		return true
	}
	num := packed >> 32
	den := packed & 0xffffffff
	slot := (s.seq.Add(1) - 1) % den
	return slot < num
}

// parseRatioSpec understands "N/M" fractions and bare integers, where a
// bare integer M means 1/M. Returns (0, 0) when the value is unusable.
func parseRatioSpec(spec string) (int, int) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, 0
	}
	if num, den, ok := strings.Cut(spec, "/"); ok {
		n, errN := strconv.Atoi(strings.TrimSpace(num))
		d, errD := strconv.Atoi(strings.TrimSpace(den))
		if errN == nil && errD == nil {
			return n, d
		}
		return 0, 0
	}
	v, err := strconv.Atoi(spec)
	if err != nil || v <= 0 {
		return 0, 0
	}
	return 1, v
}
