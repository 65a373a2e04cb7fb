package session

// Slot is the single-value store for the pending post-sign-in redirect
// path. At most one intent exists at a time; Set overwrites any prior
// value (last writer wins). Peek reads without consuming, Take reads
// and clears. Only the consumer that completes the gate chain calls
// Take.
type Slot interface {
	Set(path string)
	Peek() string
	Take() string
}

// MemorySlot is an in-process Slot. The HTTP layer uses a cookie-backed
// implementation so the intent survives the provider round trip.
type MemorySlot struct {
	value string
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (s *MemorySlot) Set(path string) {
	s.value = path
}

func (s *MemorySlot) Peek() string {
	return s.value
}

func (s *MemorySlot) Take() string {
	v := s.value
	s.value = ""
	return v
}

var _ Slot = (*MemorySlot)(nil)
