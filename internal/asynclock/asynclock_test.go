package asynclock

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMutexExclusion(t *testing.T) {
	var mu Mutex
	var counter int
	var wg sync.WaitGroup
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := mu.Lock(ctx); err != nil {
				t.Errorf("Lock: %v", err)
				return
			}
			defer mu.Unlock()
			counter++
		}()
	}
	wg.Wait()
	if counter != 50 {
		t.Fatalf("counter = %d, want 50", counter)
	}
}

func TestMutexContextCancel(t *testing.T) {
	var mu Mutex
	if err := mu.Lock(context.Background()); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := mu.Lock(ctx); err == nil {
		t.Fatalf("expected context deadline error while held")
	}
}

func TestMutexUnlockWithoutLockPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic unlocking an unlocked mutex")
		}
	}()
	var mu Mutex
	mu.Unlock()
}
