package services

import "github.com/moby/locker"

// keyedMutex serialises work per key. Entries are dropped by the locker once
// no goroutine holds or waits for them.
type keyedMutex struct {
	l *locker.Locker
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{l: locker.New()}
}

// Lock acquires the lock for key and returns its release function.
func (k *keyedMutex) Lock(key string) func() {
	k.l.Lock(key)
	return func() {
		_ = k.l.Unlock(key)
	}
}
