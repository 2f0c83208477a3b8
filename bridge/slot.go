package bridge

import (
	"sync"

	"github.com/npillmayer/fontbridge/core"
	"github.com/npillmayer/fontbridge/core/font/babelfont"
)

// Slot is a cache for at most one parsed font. Operations on the cached
// font are serialized: a Slot admits a single operation at a time.
//
// If an operation panics, the slot is poisoned and refuses further
// operations with EINTERNAL until the next Store or Clear.
type Slot struct {
	sync.Mutex
	font     *babelfont.Font
	poisoned bool
}

// NewSlot creates an empty cache slot.
func NewSlot() *Slot {
	return &Slot{}
}

// Store puts a font into the slot, replacing any font held before.
func (s *Slot) Store(f *babelfont.Font) {
	s.Lock()
	defer s.Unlock()
	s.font = f
	s.poisoned = false
}

// Clear empties the slot.
func (s *Slot) Clear() {
	s.Lock()
	defer s.Unlock()
	s.font = nil
	s.poisoned = false
}

// IsEmpty is true if the slot holds no font.
func (s *Slot) IsEmpty() bool {
	s.Lock()
	defer s.Unlock()
	return s.font == nil
}

// WithCached runs op on the cached font while holding exclusive access to
// the slot. It fails with ENOTCACHED if the slot is empty. op must not keep
// a reference to the font beyond its return, nor modify it.
func WithCached[R any](s *Slot, op func(f *babelfont.Font) (R, error)) (result R, err error) {
	s.Lock()
	defer s.Unlock()
	if s.poisoned {
		return result, core.Error(core.EINTERNAL, "font cache unusable after an earlier failure, store or clear to reset")
	}
	if s.font == nil {
		return result, core.Error(core.ENOTCACHED, "no font cached")
	}
	defer func() {
		if r := recover(); r != nil {
			s.poisoned = true
			tracer().Errorf("operation on cached font panicked: %v", r)
			err = core.Error(core.EINTERNAL, "operation on cached font failed: %v", r)
		}
	}()
	return op(s.font)
}
