package share

import (
	"fmt"
	"strings"
	"sync"
	"time"

	ttlworker "github.com/FloatTech/ttl"
	"github.com/bytedance/sonic"

	"github.com/moyoez/resume-intake/tool"
	"github.com/moyoez/resume-intake/types"
)

const (
	// CandidatesKey names the single shared slot.
	CandidatesKey = "candidates"
	DefaultTTL    = 60 * time.Minute
)

// IngestPolicy decides how a new batch meets what is already stored.
type IngestPolicy int

const (
	Append IngestPolicy = iota
	FullReplace
)

func (p IngestPolicy) String() string {
	if p == FullReplace {
		return tool.IngestPolicyReplace
	}
	return tool.IngestPolicyAppend
}

// ParsePolicy maps the config value; anything unknown is Append.
func ParsePolicy(s string) IngestPolicy {
	if strings.EqualFold(s, tool.IngestPolicyReplace) {
		return FullReplace
	}
	return Append
}

// CandidateStore is the session-scoped slot shared by the upload flow and the table view.
// Every write goes through Ingest so the merge policy is applied in one place.
type CandidateStore struct {
	mu     sync.RWMutex
	slot   *ttlworker.Cache[string, []types.CandidateRecord]
	policy IngestPolicy
	hub    types.NotifyHub
}

// NewCandidateStore creates a store whose slot expires after ttl of inactivity. hub may be nil.
func NewCandidateStore(ttl time.Duration, policy IngestPolicy, hub types.NotifyHub) *CandidateStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CandidateStore{
		slot:   ttlworker.NewCache[string, []types.CandidateRecord](ttl),
		policy: policy,
		hub:    hub,
	}
}

func (s *CandidateStore) Policy() IngestPolicy {
	return s.policy
}

// Load returns a copy of the stored sequence, never nil.
func (s *CandidateStore) Load() []types.CandidateRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.slot.Get(CandidatesKey)
	out := make([]types.CandidateRecord, len(stored))
	copy(out, stored)
	return out
}

// Ingest writes a batch with the store's policy and returns the resulting sequence.
func (s *CandidateStore) Ingest(records []types.CandidateRecord) []types.CandidateRecord {
	return s.IngestWith(records, s.policy)
}

func (s *CandidateStore) IngestWith(records []types.CandidateRecord, policy IngestPolicy) []types.CandidateRecord {
	s.mu.Lock()
	var next []types.CandidateRecord
	switch policy {
	case FullReplace:
		next = make([]types.CandidateRecord, len(records))
		copy(next, records)
	default:
		existing := s.slot.Get(CandidatesKey)
		next = make([]types.CandidateRecord, 0, len(existing)+len(records))
		next = append(next, existing...)
		next = append(next, records...)
	}
	s.slot.Set(CandidatesKey, next)
	s.mu.Unlock()

	tool.DefaultLogger.Infof("[Store] Ingested %d candidates (%s), %d stored", len(records), policy, len(next))
	s.broadcast(len(records), len(next))

	out := make([]types.CandidateRecord, len(next))
	copy(out, next)
	return out
}

// Clear empties the slot, as the end of a session would.
func (s *CandidateStore) Clear() {
	s.mu.Lock()
	s.slot.Delete(CandidatesKey)
	s.mu.Unlock()
	tool.DefaultLogger.Infof("[Store] Cleared candidates")
	s.broadcast(0, 0)
}

// Snapshot serializes the slot as a JSON array.
func (s *CandidateStore) Snapshot() ([]byte, error) {
	data, err := sonic.Marshal(s.Load())
	if err != nil {
		return nil, fmt.Errorf("failed to serialize candidates: %w", err)
	}
	return data, nil
}

// Restore replaces the slot with a JSON array produced by Snapshot.
func (s *CandidateStore) Restore(data []byte) error {
	var records []types.CandidateRecord
	if err := sonic.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse candidates: %w", err)
	}
	s.IngestWith(records, FullReplace)
	return nil
}

func (s *CandidateStore) broadcast(added, total int) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(&types.Notification{
		ID:      tool.GenerateShortID(),
		Type:    types.NotifyTypeCandidatesUpdated,
		Title:   "Candidates Updated",
		Message: fmt.Sprintf("%d candidates stored", total),
		Data: map[string]any{
			"added": added,
			"total": total,
		},
	})
}
