package resilience

import "sync"

// KeyedMutex serializes critical sections per key. Reconciliation passes use
// it so that two operations touching the same round never interleave.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func (m *KeyedMutex) Lock(key string) {
	m.mu.Lock()
	if m.locks == nil {
		m.locks = make(map[string]*keyedLock)
	}
	l, ok := m.locks[key]
	if !ok {
		l = &keyedLock{}
		m.locks[key] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
}

func (m *KeyedMutex) Unlock(key string) {
	m.mu.Lock()
	l, ok := m.locks[key]
	if ok {
		l.refs--
		if l.refs <= 0 {
			delete(m.locks, key)
		}
	}
	m.mu.Unlock()

	if ok {
		l.mu.Unlock()
	}
}
