package core

import "sync"

// recursiveRWLock is a reader-preferring reader/writer lock. A reader never
// waits for a queued writer, only for an active one, so a goroutine holding
// a read lock may take it again. Writers wait until no reader is left.
//
// The zero value is unlocked.
type recursiveRWLock struct {
	mu      sync.Mutex
	cond    sync.Cond
	readers int
	writing bool
}

func (l *recursiveRWLock) wait() {
	if l.cond.L == nil {
		l.cond.L = &l.mu
	}
	l.cond.Wait()
}

func (l *recursiveRWLock) RLock() {
	l.mu.Lock()
	for l.writing {
		l.wait()
	}
	l.readers++
	l.mu.Unlock()
}

func (l *recursiveRWLock) RUnlock() {
	l.mu.Lock()
	if l.readers <= 0 {
		l.mu.Unlock()
		panic("core: RUnlock of unlocked list")
	}
	l.readers--
	if l.readers == 0 {
		l.cond.Broadcast()
	}
	l.mu.Unlock()
}

func (l *recursiveRWLock) Lock() {
	l.mu.Lock()
	for l.writing || l.readers > 0 {
		l.wait()
	}
	l.writing = true
	l.mu.Unlock()
}

func (l *recursiveRWLock) Unlock() {
	l.mu.Lock()
	l.writing = false
	l.cond.Broadcast()
	l.mu.Unlock()
}
