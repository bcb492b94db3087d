package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/i474232898/weather-history/internal/weather"
)

type chanRunner chan []string

func (c chanRunner) RunBatch(_ context.Context, names []string) (weather.BatchReport, error) {
	c <- names
	return weather.BatchReport{RunID: "test"}, nil
}

func TestScheduler_RunsImmediately(t *testing.T) {
	runs := make(chanRunner, 1)
	s := New([]string{"London", "Paris"}, time.Hour, runs)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	select {
	case names := <-runs:
		if len(names) != 2 || names[0] != "London" {
			t.Errorf("batch names = %v", names)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("batch did not start")
	}
}

func TestScheduler_NoLocations(t *testing.T) {
	runs := make(chanRunner, 1)
	s := New(nil, time.Hour, runs)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	select {
	case names := <-runs:
		t.Fatalf("unexpected batch for %v", names)
	case <-time.After(100 * time.Millisecond):
	}
}
