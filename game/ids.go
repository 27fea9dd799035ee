package game

import (
	"sync"
	"time"
)

// IDSequence hands out increasing player ids. It is safe for concurrent use.
type IDSequence struct {
	next PlayerID
	mu   sync.Mutex
}

// NewIDSequence starts a sequence at seed.
func NewIDSequence(seed int64) *IDSequence {
	return &IDSequence{next: PlayerID(seed)}
}

// NewIDSequenceFromClock seeds a sequence with the current Unix time.
func NewIDSequenceFromClock() *IDSequence {
	return NewIDSequence(time.Now().Unix())
}

// Next returns a fresh id.
func (s *IDSequence) Next() PlayerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	return id
}
