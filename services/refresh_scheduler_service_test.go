package services

import (
	"context"
	"testing"
	"time"
)

type signalRefresher struct {
	calls chan struct{}
}

func (r *signalRefresher) Refresh(ctx context.Context) error {
	select {
	case r.calls <- struct{}{}:
	default:
	}
	return nil
}

func TestRefreshSchedulerService_InvalidSpec(t *testing.T) {
	if _, err := NewRefreshSchedulerService(context.Background(), &signalRefresher{}, "every hour"); err == nil {
		t.Error("expected error for invalid cron schedule")
	}
}

func TestRefreshSchedulerService_Runs(t *testing.T) {
	target := &signalRefresher{calls: make(chan struct{}, 1)}
	scheduler, err := NewRefreshSchedulerService(context.Background(), target, "* * * * * *")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	select {
	case <-target.calls:
	case <-time.After(3 * time.Second):
		t.Fatal("expected refresh to run within 3 seconds")
	}
}
