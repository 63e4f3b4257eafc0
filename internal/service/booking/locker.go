package booking

import (
	"context"
	"sync"
)

// Locker serializes read-validate-commit sequences per event. Bookings for
// different events never contend.
type Locker interface {
	LockEvent(ctx context.Context, eventID string) (unlock func(), err error)
}

// LocalLocker is an in-process Locker. Entries are dropped once no caller
// holds or waits for them.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*eventLock
}

type eventLock struct {
	sem  chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*eventLock)}
}

func (l *LocalLocker) LockEvent(ctx context.Context, eventID string) (func(), error) {
	l.mu.Lock()
	el, ok := l.locks[eventID]
	if !ok {
		el = &eventLock{sem: make(chan struct{}, 1)}
		l.locks[eventID] = el
	}
	el.refs++
	l.mu.Unlock()

	select {
	case el.sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-el.sem
				l.put(eventID, el)
			})
		}, nil
	case <-ctx.Done():
		l.put(eventID, el)
		return nil, ctx.Err()
	}
}

func (l *LocalLocker) put(eventID string, el *eventLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	el.refs--
	if el.refs == 0 {
		delete(l.locks, eventID)
	}
}

func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
