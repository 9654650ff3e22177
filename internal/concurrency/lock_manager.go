package concurrency

import (
	"sync"
)

// Key prefixes so cycle and client locks never share a mutex
const (
	cycleKeyPrefix  = "cycle:"
	clientKeyPrefix = "client:"
)

// LockManager hands out one mutex per key
type LockManager struct {
	locks sync.Map
}

// NewLockManager creates a new LockManager
func NewLockManager() *LockManager {
	return &LockManager{}
}

// GetLock returns a mutex for the given key
func (lm *LockManager) GetLock(key string) *sync.Mutex {
	lock, _ := lm.locks.LoadOrStore(key, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// Lock acquires the mutex for key and returns its release function
func (lm *LockManager) Lock(key string) func() {
	mu := lm.GetLock(key)
	mu.Lock()
	return mu.Unlock
}

// CycleKey is the lock key serializing mutations of one crop cycle and its children
func CycleKey(cycleID string) string {
	return cycleKeyPrefix + cycleID
}

// ClientKey is the lock key serializing recommendation generation for one client
func ClientKey(clientID string) string {
	return clientKeyPrefix + clientID
}
