package main

import (
	"context"
	"errors"
	"os"
	"testing"
)

type appStub struct {
	startErr error
	stopErr  error
	done     chan os.Signal
	started  bool
	stopped  bool
}

func (a *appStub) Start(context.Context) error {
	a.started = true
	return a.startErr
}

func (a *appStub) Stop(context.Context) error {
	a.stopped = true
	return a.stopErr
}

func (a *appStub) Done() <-chan os.Signal { return a.done }

func TestRunStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	app := &appStub{done: make(chan os.Signal)}

	if err := run(ctx, app); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !app.started || !app.stopped {
		t.Fatalf("expected start and stop, got %+v", app)
	}
}

func TestRunStopsOnAppDone(t *testing.T) {
	app := &appStub{done: make(chan os.Signal, 1)}
	app.done <- os.Interrupt

	if err := run(context.Background(), app); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !app.stopped {
		t.Fatal("expected stop after shutdown signal")
	}
}

func TestRunReportsErrors(t *testing.T) {
	boom := errors.New("boom")

	app := &appStub{startErr: boom, done: make(chan os.Signal)}
	if err := run(context.Background(), app); !errors.Is(err, boom) || app.stopped {
		t.Fatalf("expected start error without stop, got %v stopped=%v", err, app.stopped)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	app = &appStub{stopErr: boom, done: make(chan os.Signal)}
	if err := run(ctx, app); !errors.Is(err, boom) {
		t.Fatalf("expected stop error, got %v", err)
	}
}
