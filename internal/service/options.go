package service

import (
	"sync"
	"time"
)

// Option configures a service.
type Option func(*options)

type options struct {
	now   func() time.Time
	locks *keyedMutex
}

// WithClock replaces the wall clock, mainly for tests and replays.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func withLocks(locks *keyedMutex) Option {
	return func(o *options) {
		o.locks = locks
	}
}

func applyOptions(opts []Option) options {
	o := options{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}
	if o.locks == nil {
		o.locks = newKeyedMutex()
	}
	return o
}

// keyedMutex serializes work per record key. Callers that need several
// keys take resource keys before user keys.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func resourceKey(id string) string { return "resource:" + id }
func userKey(id string) string     { return "user:" + id }
