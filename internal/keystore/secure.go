package keystore

import (
	"runtime"
	"sync"
)

// secureBytes holds key material in locked memory when the platform allows it,
// and zeroes it on destroy.
type secureBytes struct {
	data   []byte
	locked bool
	mu     sync.Mutex
}

// newSecureBytes copies data into a locked buffer.
func newSecureBytes(data []byte) *secureBytes {
	buf := make([]byte, len(data))
	copy(buf, data)

	sb := &secureBytes{data: buf}
	sb.locked = mlock(buf)

	runtime.SetFinalizer(sb, func(s *secureBytes) {
		s.destroy()
	})
	return sb
}

// bytes returns the buffer, or nil after destroy.
func (s *secureBytes) bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// isLocked reports whether mlock succeeded.
func (s *secureBytes) isLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// destroy zeroes and unlocks the buffer. Safe to call more than once.
func (s *secureBytes) destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return
	}
	zero(s.data)
	if s.locked {
		munlock(s.data)
		s.locked = false
	}
	s.data = nil
	runtime.SetFinalizer(s, nil)
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
