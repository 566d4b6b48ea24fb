package lockstore

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"
)

type mockTimeProvider struct {
	currentTime time.Time
	mutex       sync.Mutex
}

func (mtp *mockTimeProvider) Now() time.Time {
	mtp.mutex.Lock()
	defer mtp.mutex.Unlock()
	return mtp.currentTime
}

func (mtp *mockTimeProvider) Add(d time.Duration) {
	mtp.mutex.Lock()
	mtp.currentTime = mtp.currentTime.Add(d)
	mtp.mutex.Unlock()
}

func TestLockSerializesSameKey(t *testing.T) {
	store := New()

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := store.Lock("doc:42")
			defer unlock()
			// Unsynchronized increment; the race detector flags this if the
			// lock does not actually serialize holders of the same key.
			counter++
		}()
	}
	wg.Wait()

	if counter != 200 {
		t.Errorf("expected 200 increments, got %d", counter)
	}
}

func TestLockDifferentKeysDoNotBlock(t *testing.T) {
	store := New()

	unlockA := store.Lock("doc:1")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := store.Lock("doc:2")
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("lock on an unrelated key blocked")
	}
}

func TestConcurrentLockingWithCleanup(t *testing.T) {
	startTime := time.Now()
	mtp := &mockTimeProvider{currentTime: startTime}
	store := New()
	store.timeProvider = mtp

	threshold := 5 * time.Minute
	cleanupInterval := 100 * time.Millisecond

	store.StartCleanup(threshold, cleanupInterval)
	defer store.StopCleanup()

	var wg sync.WaitGroup
	for i := 0; i < 500; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("session:%d", rand.Intn(50))
			unlock := store.Lock(key)
			unlock()
		}()
	}
	wg.Wait()

	// All entries idle; advance past the threshold and sweep.
	mtp.Add(threshold + time.Second)
	store.performCleanup(threshold)

	if size := store.size(); size != 0 {
		t.Errorf("expected all idle entries swept, %d remain", size)
	}
}

func TestCleanupSkipsHeldLocks(t *testing.T) {
	mtp := &mockTimeProvider{currentTime: time.Now()}
	store := New()
	store.timeProvider = mtp

	unlock := store.Lock("doc:9")

	mtp.Add(time.Hour)
	store.performCleanup(time.Minute)

	if size := store.size(); size != 1 {
		t.Fatalf("held lock was swept, %d entries remain", size)
	}

	unlock()
	mtp.Add(time.Hour)
	store.performCleanup(time.Minute)
	if size := store.size(); size != 0 {
		t.Errorf("released lock survived cleanup, %d entries remain", size)
	}
}
