package transfer

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(0, 0))
	assert.Equal(t, 33, Percent(1, 3))
	assert.Equal(t, 67, Percent(2, 3))
	assert.Equal(t, 100, Percent(5, 3))
}

func TestProgressReaderReportsIncreasing(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 1000)
	var seen []int
	r := &progressReader{r: bytes.NewReader(data), total: int64(len(data)), report: func(p int) { seen = append(seen, p) }}
	buf := make([]byte, 7)
	for {
		if _, err := r.Read(buf); err == io.EOF {
			break
		}
	}
	require.NotEmpty(t, seen)
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i], seen[i-1])
	}
	assert.Equal(t, 100, seen[len(seen)-1])
}

func TestSmootherCapsAt99UntilComplete(t *testing.T) {
	s := NewSmoother(0.8)
	s.Start()
	s.SetRaw(100)

	prev := 0.0
	for range 500 {
		d := s.Tick()
		assert.GreaterOrEqual(t, d, prev)
		assert.LessOrEqual(t, d, 99.0)
		prev = d
	}
	assert.Equal(t, 99.0, s.Display())

	s.Complete()
	assert.InDelta(t, 99.8, s.Tick(), 1e-9)
	assert.Equal(t, 100.0, s.Tick())
	assert.Equal(t, 100.0, s.Tick())
}

func TestSmootherStepsAfterComplete(t *testing.T) {
	s := NewSmoother(0.8)
	s.Start()
	s.SetRaw(100)
	first := s.Tick()
	s.Complete()
	assert.Equal(t, first, s.Display(), "Complete does not move the display")

	prev := first
	for range 200 {
		d := s.Tick()
		assert.GreaterOrEqual(t, d, prev)
		assert.LessOrEqual(t, d-prev, 0.8+1e-9)
		assert.LessOrEqual(t, d, 100.0)
		prev = d
	}
	assert.Equal(t, 100.0, prev)
}

func TestSmootherNeverExceedsRaw(t *testing.T) {
	s := NewSmoother(0.8)
	s.Start()
	s.SetRaw(10)
	for range 100 {
		assert.LessOrEqual(t, s.Tick(), 10.0)
	}
	assert.Equal(t, 10.0, s.Display())

	// stale lower value is ignored
	s.SetRaw(4)
	assert.Equal(t, 10, s.Raw())
	assert.Equal(t, 10.0, s.Tick())
}

func TestSmootherStepsThenSnaps(t *testing.T) {
	s := NewSmoother(0.8)
	s.Start()
	s.SetRaw(1)
	assert.InDelta(t, 0.8, s.Tick(), 1e-9)
	assert.Equal(t, 1.0, s.Tick())
}

func TestSmootherStopResets(t *testing.T) {
	s := NewSmoother(0.8)
	s.Start()
	s.SetRaw(50)
	s.Tick()
	s.Stop()
	assert.False(t, s.Uploading())
	assert.Equal(t, 0.0, s.Display())
	assert.Equal(t, 0.0, s.Tick())

	s.Complete()
	assert.Equal(t, 0.0, s.Display(), "complete after stop is ignored")
}

func TestSmootherRunStopsWithSession(t *testing.T) {
	s := NewSmoother(0.8)
	s.Start()
	s.SetRaw(20)

	done := make(chan struct{})
	go func() {
		s.Run(context.Background(), time.Millisecond, nil)
		close(done)
	}()
	require.Eventually(t, func() bool { return s.Display() == 20 }, time.Second, time.Millisecond)
	s.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}
