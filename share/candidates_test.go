package share

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyoez/resume-intake/types"
)

type recordingHub struct {
	mu     sync.Mutex
	events []*types.Notification
}

func (h *recordingHub) Broadcast(n *types.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, n)
}

func rec(name string) types.CandidateRecord {
	return types.CandidateRecord{Name: name, Email: name + "@x.com", Status: types.DefaultStatus}
}

func names(records []types.CandidateRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func TestIngestAppend(t *testing.T) {
	s := NewCandidateStore(time.Minute, Append, nil)
	assert.NotNil(t, s.Load())
	assert.Empty(t, s.Load())

	s.Ingest([]types.CandidateRecord{rec("Ann")})
	got := s.Ingest([]types.CandidateRecord{rec("Bob"), rec("Cy")})
	assert.Equal(t, []string{"Ann", "Bob", "Cy"}, names(got))
	assert.Equal(t, []string{"Ann", "Bob", "Cy"}, names(s.Load()))
}

func TestIngestReplace(t *testing.T) {
	s := NewCandidateStore(time.Minute, FullReplace, nil)
	s.Ingest([]types.CandidateRecord{rec("Ann")})
	s.Ingest([]types.CandidateRecord{rec("Bob")})
	assert.Equal(t, []string{"Bob"}, names(s.Load()))
}

func TestLoadReturnsCopy(t *testing.T) {
	s := NewCandidateStore(time.Minute, Append, nil)
	s.Ingest([]types.CandidateRecord{rec("Ann")})
	got := s.Load()
	got[0].Name = "Mutated"
	assert.Equal(t, "Ann", s.Load()[0].Name)
}

func TestClearAndBroadcast(t *testing.T) {
	hub := &recordingHub{}
	s := NewCandidateStore(time.Minute, Append, hub)
	s.Ingest([]types.CandidateRecord{rec("Ann"), rec("Bob")})
	s.Clear()
	assert.Empty(t, s.Load())

	require.Len(t, hub.events, 2)
	assert.Equal(t, types.NotifyTypeCandidatesUpdated, hub.events[0].Type)
	assert.Equal(t, 2, hub.events[0].Data["total"])
	assert.Equal(t, 0, hub.events[1].Data["total"])
}

func TestSnapshotRestore(t *testing.T) {
	s := NewCandidateStore(time.Minute, Append, nil)
	s.Ingest([]types.CandidateRecord{rec("Ann"), rec("Bob")})
	data, err := s.Snapshot()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name":"Ann"`)

	other := NewCandidateStore(time.Minute, Append, nil)
	other.Ingest([]types.CandidateRecord{rec("Old")})
	require.NoError(t, other.Restore(data))
	assert.Equal(t, []string{"Ann", "Bob"}, names(other.Load()))

	assert.Error(t, other.Restore([]byte("{")))
}

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, FullReplace, ParsePolicy("REPLACE"))
	assert.Equal(t, Append, ParsePolicy("append"))
	assert.Equal(t, Append, ParsePolicy("whatever"))
	assert.Equal(t, "replace", FullReplace.String())
}
