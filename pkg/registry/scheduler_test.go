package registry

import (
	"context"
	"testing"
	"time"
)

func TestScheduler_EmptySchedule(t *testing.T) {
	s := NewScheduler("", func() {}, quietLogger())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.IsRunning() {
		t.Error("scheduler without a schedule should not run")
	}
	if s.NextRun() != nil {
		t.Error("NextRun() should be nil without a schedule")
	}
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := NewScheduler("every tuesday", func() {}, quietLogger())
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("Start() should reject an invalid cron expression")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewScheduler("*/5 * * * *", func() {}, quietLogger())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !s.IsRunning() {
		t.Fatal("scheduler should be running")
	}
	if err := s.Start(ctx); err == nil {
		t.Error("second Start() should fail")
	}

	next := s.NextRun()
	if next == nil || !next.After(time.Now()) {
		t.Errorf("NextRun() = %v, want a future time", next)
	}

	cancel()
	deadline := time.Now().Add(2 * time.Second)
	for s.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("scheduler did not stop after context cancellation")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
