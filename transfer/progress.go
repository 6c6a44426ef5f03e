package transfer

import (
	"context"
	"io"
	"math"
	"sync"
	"time"
)

// Percent is round(loaded*100/total), clamped to 0..100.
func Percent(loaded, total int64) int {
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(float64(loaded) * 100 / float64(total)))
	return max(0, min(pct, 100))
}

// progressReader reports the raw percentage of the body consumed by the transport.
type progressReader struct {
	r      io.Reader
	total  int64
	loaded int64
	last   int
	report func(int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		if pct := Percent(p.loaded, p.total); pct > p.last {
			p.last = pct
			if p.report != nil {
				p.report(pct)
			}
		}
	}
	return n, err
}

// Smoother turns bursty raw progress into a display value that climbs in small steps.
// The display never exceeds the raw target, which stays capped at 99 until Complete.
type Smoother struct {
	mu        sync.Mutex
	step      float64
	raw       int
	display   float64
	uploading bool
	completed bool
}

func NewSmoother(step float64) *Smoother {
	if step <= 0 {
		step = 0.8
	}
	return &Smoother{step: step}
}

// Start begins a new session from zero.
func (s *Smoother) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = 0
	s.display = 0
	s.uploading = true
	s.completed = false
}

// SetRaw records the latest raw percentage. Stale lower values are ignored.
func (s *Smoother) SetRaw(pct int) {
	pct = max(0, min(pct, 100))
	s.mu.Lock()
	defer s.mu.Unlock()
	if pct > s.raw {
		s.raw = pct
	}
}

// Complete marks the transfer done: raw becomes 100 and the target may reach it.
// The display keeps stepping; it is not moved here.
func (s *Smoother) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.uploading {
		return
	}
	s.raw = 100
	s.completed = true
}

// Stop ends the session; the display resets to zero.
func (s *Smoother) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploading = false
	s.display = 0
}

func (s *Smoother) target() float64 {
	raw := s.raw
	if !s.completed && raw > 99 {
		raw = 99
	}
	return float64(min(raw, 100))
}

// Tick advances the display one step toward the target and returns it.
func (s *Smoother) Tick() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.uploading {
		s.display = 0
		return 0
	}
	t := s.target()
	switch {
	case s.display+s.step < t:
		s.display += s.step
	case s.display < t:
		s.display = t
	}
	return s.display
}

func (s *Smoother) Display() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.display
}

func (s *Smoother) Raw() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raw
}

func (s *Smoother) Uploading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploading
}

// Run ticks every interval until ctx is done or the session stops uploading.
func (s *Smoother) Run(ctx context.Context, interval time.Duration, onTick func(display float64)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.Uploading() {
				return
			}
			d := s.Tick()
			if onTick != nil {
				onTick(d)
			}
		}
	}
}
