package broadcast

import (
	"sync"
	"sync/atomic"
)

// Policy decides what a full mailbox does with an incoming message.
type Policy uint8

const (
	// KeepLatest evicts the oldest buffered message so the newest one always fits.
	KeepLatest Policy = iota
	// DropNewest keeps the buffered messages and discards the incoming one.
	DropNewest
)

// String implements fmt.Stringer.
func (p Policy) String() string {
	switch p {
	case KeepLatest:
		return "keep_latest"
	case DropNewest:
		return "drop_newest"
	default:
		return "unknown"
	}
}

// mailbox is a bounded FIFO with a one-slot readiness signal.
type mailbox[T any] struct {
	mu       sync.Mutex
	buf      []Message[T]
	capacity int
	policy   Policy
	ready    chan struct{}
	dropped  atomic.Uint64
}

func newMailbox[T any](capacity int, policy Policy) *mailbox[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &mailbox[T]{
		buf:      make([]Message[T], 0, capacity),
		capacity: capacity,
		policy:   policy,
		ready:    make(chan struct{}, 1),
	}
}

// push stores msg and reports whether it was accepted and how many buffered
// messages were evicted to make room for it.
func (m *mailbox[T]) push(msg Message[T]) (accepted bool, evicted int) {
	m.mu.Lock()
	if len(m.buf) == m.capacity {
		if m.policy == DropNewest {
			m.mu.Unlock()
			m.dropped.Add(1)
			return false, 0
		}
		var zero Message[T]
		copy(m.buf, m.buf[1:])
		m.buf[len(m.buf)-1] = zero
		m.buf = m.buf[:len(m.buf)-1]
		evicted = 1
	}
	m.buf = append(m.buf, msg)
	m.mu.Unlock()

	if evicted > 0 {
		m.dropped.Add(uint64(evicted))
	}
	m.signal()
	return true, evicted
}

// take removes the oldest buffered message.
func (m *mailbox[T]) take() (Message[T], bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero Message[T]
	if len(m.buf) == 0 {
		return zero, false
	}

	msg := m.buf[0]
	copy(m.buf, m.buf[1:])
	m.buf[len(m.buf)-1] = zero
	m.buf = m.buf[:len(m.buf)-1]

	if len(m.buf) > 0 {
		m.signal()
	}
	return msg, true
}

func (m *mailbox[T]) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buf)
}

func (m *mailbox[T]) signal() {
	select {
	case m.ready <- struct{}{}:
	default:
	}
}
