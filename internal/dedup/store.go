package dedup

import "sync"

// SignatureStore is an in-memory set of trade signatures for one ingestion
// run. It is seeded from the durable store's existing signatures and grows as
// new trades are accepted; it is never persisted itself, since durability
// comes from the trades written through the batch sink.
type SignatureStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewSignatureStore creates an empty store.
func NewSignatureStore() *SignatureStore {
	return &SignatureStore{
		seen: make(map[string]struct{}),
	}
}

// Seed loads existing signatures. Called once per run before fetching starts.
func (s *SignatureStore) Seed(existing map[string]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sig := range existing {
		s.seen[sig] = struct{}{}
	}
}

// Contains reports whether sig has been seen.
func (s *SignatureStore) Contains(sig string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[sig]
	return ok
}

// Add records sig as seen.
func (s *SignatureStore) Add(sig string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[sig] = struct{}{}
}

// CheckAndAdd records sig and reports whether it was new. The check and the
// insert are one atomic unit so concurrent callers cannot both claim a
// signature.
func (s *SignatureStore) CheckAndAdd(sig string) (isNew bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[sig]; ok {
		return false
	}
	s.seen[sig] = struct{}{}
	return true
}

// Len returns the number of distinct signatures seen.
func (s *SignatureStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
