package scanner

import (
	"sync"
)

// Scan states per account. An account with no entry at all has never been
// scanned in this process lifetime; status queries report it as
// StatusUnknown.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusError      = "error"
	StatusUnknown    = "unknown"
)

// StatusStore tracks per-account scan status. Implementations must make
// every operation atomic per key: SetIfAbsent is what prevents two concurrent
// requests from both starting a scan for the same account. Different
// accounts' entries are fully independent.
//
// MemoryStatusStore keeps status in process memory. utils.RedisStatusStore
// implements the same contract on redis for multi-replica deployments.
type StatusStore interface {
	// Get returns the stored status, empty string when the account has no entry.
	Get(username string) (string, error)
	Set(username string, status string) error
	// SetIfAbsent sets the status only when no entry exists yet and reports
	// whether it did.
	SetIfAbsent(username string, status string) (bool, error)
}

type MemoryStatusStore struct {
	m        sync.RWMutex
	statuses map[string]string
}

var _ StatusStore = (*MemoryStatusStore)(nil)

func NewMemoryStatusStore() *MemoryStatusStore {
	return &MemoryStatusStore{statuses: make(map[string]string)}
}

func (s *MemoryStatusStore) Get(username string) (string, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	return s.statuses[username], nil
}

func (s *MemoryStatusStore) Set(username string, status string) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.statuses[username] = status
	return nil
}

func (s *MemoryStatusStore) SetIfAbsent(username string, status string) (bool, error) {
	s.m.Lock()
	defer s.m.Unlock()
	if _, ok := s.statuses[username]; ok {
		return false, nil
	}
	s.statuses[username] = status
	return true, nil
}
