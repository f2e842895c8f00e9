package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolRunsAllJobs(t *testing.T) {
	var ran atomic.Int32
	jobs := make([]FetchJob, 20)
	for i := range jobs {
		jobs[i] = func(ctx context.Context) error {
			ran.Add(1)
			return nil
		}
	}

	if err := NewPool(4).Run(context.Background(), jobs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ran.Load(); got != 20 {
		t.Errorf("expected 20 jobs run, got %d", got)
	}
}

func TestPoolReportsFirstError(t *testing.T) {
	boom := errors.New("boom")
	jobs := []FetchJob{
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error { return boom },
		func(ctx context.Context) error { return nil },
	}

	if err := NewPool(2).Run(context.Background(), jobs); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestLimiterSeparatesDomains(t *testing.T) {
	// One request per second with burst 1: a second hit on the same domain
	// would block, but a different domain must not.
	l := NewLimiter(1, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx, "https://a.example.com/feed"); err != nil {
		t.Fatalf("first wait on a: %v", err)
	}
	if err := l.Wait(ctx, "https://b.example.com/feed"); err != nil {
		t.Fatalf("first wait on b should not be throttled by a: %v", err)
	}
	if err := l.Wait(ctx, "https://a.example.com/other"); err == nil {
		t.Error("second wait on a inside the window should hit the deadline")
	}
}

func TestLimiterRejectsBadURL(t *testing.T) {
	l := NewLimiter(1, 1)
	if err := l.Wait(context.Background(), "://not-a-url"); err == nil {
		t.Error("expected parse error")
	}
}
