package download

import "sync"

// pathLocks serializes the exists-check-then-write sequence per target path.
// Entries are reference counted and dropped once nobody holds them.
type pathLocks struct {
	mu sync.Mutex
	m  map[string]*pathLock
}

type pathLock struct {
	sync.Mutex
	refs int
}

func (l *pathLocks) lock(p string) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[string]*pathLock)
	}
	e, ok := l.m[p]
	if !ok {
		e = &pathLock{}
		l.m[p] = e
	}
	e.refs++
	l.mu.Unlock()

	e.Lock()
	return func() {
		e.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.m, p)
		}
		l.mu.Unlock()
	}
}
