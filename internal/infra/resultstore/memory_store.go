package resultstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/yanqian/doc-summarizer/internal/domain/summarizer"
)

const defaultCapacity = 100

type resultRecord struct {
	payload   domain.Result
	expiresAt time.Time
}

// MemoryStore keeps the most recent results in process memory. Once full,
// the oldest result is evicted.
type MemoryStore struct {
	mu       sync.RWMutex
	capacity int
	ttl      time.Duration
	results  map[uuid.UUID]resultRecord
	order    []uuid.UUID
	now      func() time.Time
}

// NewMemoryStore constructs a store holding at most capacity results for ttl.
// A zero ttl keeps results until evicted.
func NewMemoryStore(capacity int, ttl time.Duration) *MemoryStore {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &MemoryStore{
		capacity: capacity,
		ttl:      ttl,
		results:  make(map[uuid.UUID]resultRecord),
		now:      time.Now,
	}
}

// Save implements summarizer.ResultStore.
func (s *MemoryStore) Save(_ context.Context, result domain.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp := time.Time{}
	if s.ttl > 0 {
		exp = s.now().Add(s.ttl)
	}
	if _, exists := s.results[result.ID]; !exists {
		s.order = append(s.order, result.ID)
	}
	s.results[result.ID] = resultRecord{payload: result, expiresAt: exp}

	for len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.results, oldest)
	}
	return nil
}

// Get implements summarizer.ResultStore.
func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (domain.Result, bool, error) {
	s.mu.RLock()
	record, ok := s.results[id]
	s.mu.RUnlock()
	if !ok {
		return domain.Result{}, false, nil
	}
	if s.hasExpired(record.expiresAt) {
		s.mu.Lock()
		s.remove(id)
		s.mu.Unlock()
		return domain.Result{}, false, nil
	}
	return record.payload, true, nil
}

// Len returns the number of results currently held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

func (s *MemoryStore) remove(id uuid.UUID) {
	delete(s.results, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

func (s *MemoryStore) hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(s.now())
}

var _ domain.ResultStore = (*MemoryStore)(nil)
