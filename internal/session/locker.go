package session

import (
	"context"
	"fmt"
	"sync"

	"talentscout/interview/internal/models"
)

// Locker serializes work on a single session. Unlock must be called exactly
// once; extra calls are ignored.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// LockMode selects what a second writer does while a session is busy.
type LockMode string

const (
	// LockQueue makes later writers wait their turn.
	LockQueue LockMode = "queue"
	// LockFail rejects later writers with ErrConcurrentModification.
	LockFail LockMode = "fail"
)

func ParseLockMode(raw string) (LockMode, error) {
	switch LockMode(raw) {
	case LockQueue, "":
		return LockQueue, nil
	case LockFail:
		return LockFail, nil
	}
	return "", fmt.Errorf("%w: unknown lock mode %q", models.ErrValidation, raw)
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// LocalLocker is an in-process Locker. Locks are released from the table once
// nobody holds or waits for them.
type LocalLocker struct {
	mode  LockMode
	mu    sync.Mutex
	locks map[string]*keyLock
}

func NewLocalLocker(mode LockMode) *LocalLocker {
	return &LocalLocker{mode: mode, locks: make(map[string]*keyLock)}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	if l.mode == LockFail {
		select {
		case kl.ch <- struct{}{}:
		default:
			l.release(key, kl)
			return nil, fmt.Errorf("%w: interview %s is busy", models.ErrConcurrentModification, key)
		}
	} else {
		select {
		case kl.ch <- struct{}{}:
		case <-ctx.Done():
			l.release(key, kl)
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.ch
			l.release(key, kl)
		})
	}, nil
}

func (l *LocalLocker) release(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}
