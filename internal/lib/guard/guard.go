package guard

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Operation kinds that may have at most one invocation in flight.
const (
	AdminToggle     = "admin-toggle"
	Save            = "save"
	UploadToLibrary = "upload-to-library"
)

// UploadToSlot is the key of an upload into one slot of a row. The row is
// named by id so the key survives row moves.
func UploadToSlot(rowID uuid.UUID, item int) string {
	return fmt.Sprintf("upload-to-slot:%s:%d", rowID, item)
}

// Set tracks in-flight operations by key.
type Set struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewSet() *Set {
	return &Set{active: make(map[string]struct{})}
}

// TryAcquire marks key as in flight. It returns false when key already is;
// otherwise the returned release must be called once the operation ends.
func (s *Set) TryAcquire(key string) (release func(), ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.active[key]; busy {
		return nil, false
	}
	s.active[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.active, key)
			s.mu.Unlock()
		})
	}, true
}

func (s *Set) Busy(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, busy := s.active[key]
	return busy
}
