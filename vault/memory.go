package vault

import "sync"

// MemStore is an in-memory Store for tests and for hosts that explicitly
// opted out of OS-backed storage. It offers no at-rest protection and must
// never be selected implicitly.
type MemStore struct {
	mu       sync.RWMutex
	items    map[string][]byte
	authed   map[string]bool
	authFunc AuthFunc
}

var _ Store = (*MemStore)(nil)

// NewMemStore returns an empty in-memory store. authFunc may be nil, in
// which case Options.RequireAuth reads are allowed through.
func NewMemStore(authFunc AuthFunc) *MemStore {
	return &MemStore{
		items:    make(map[string][]byte),
		authed:   make(map[string]bool),
		authFunc: authFunc,
	}
}

func (s *MemStore) Set(key string, value []byte, opts Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	s.items[key] = cp
	s.authed[key] = opts.RequireAuth
	return nil
}

func (s *MemStore) Get(key string, opts Options) ([]byte, bool, error) {
	s.mu.RLock()
	v, ok := s.items[key]
	// Items stored with RequireAuth demand a gesture on every read, the
	// way a native credential store enforces item attributes.
	needAuth := opts.RequireAuth || s.authed[key]
	s.mu.RUnlock()

	if needAuth && s.authFunc != nil {
		ok, err := s.authFunc("read " + key)
		if err != nil {
			return nil, false, wrapStoreError("get", key, err)
		}
		if !ok {
			return nil, false, ErrAuthDenied
		}
	}

	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (s *MemStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	delete(s.authed, key)
	return nil
}

func (s *MemStore) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	return keys, nil
}

func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string][]byte)
	s.authed = make(map[string]bool)
	return nil
}

func (s *MemStore) Available() bool {
	return s != nil
}
