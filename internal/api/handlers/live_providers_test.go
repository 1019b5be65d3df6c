package handlers

import (
	"context"
	"sync"
	"testing"

	"github.com/interviewpro/backend/internal/interview"
)

type fakeGatewayWriter struct {
	mu   sync.Mutex
	msgs []map[string]any
}

func (f *fakeGatewayWriter) writeJSON(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := v.(map[string]any); ok {
		f.msgs = append(f.msgs, m)
	}
	return nil
}

func drainEvents(r *wsRecognizer) []interview.Event {
	var out []interview.Event
	for {
		select {
		case ev := <-r.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestRecognizerHoldsFinalsAcrossRestart(t *testing.T) {
	r := newWSRecognizer(&fakeGatewayWriter{}, nil, "")

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	r.handleTranscript("first half", true, "")

	// lease restart: Stop flushes and ends, the next Start resumes capture
	r.Stop()
	r.handleTranscript("late flush", true, "")
	r.handleTranscript("interim noise", false, "")
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("restart Start: %v", err)
	}

	events := drainEvents(r)
	var finals []string
	endeds := 0
	for _, ev := range events {
		switch {
		case ev.Ended:
			endeds++
		case ev.Final:
			finals = append(finals, ev.Transcript)
		default:
			t.Errorf("unexpected interim event %q while the engine was stopped", ev.Transcript)
		}
	}
	if endeds != 1 {
		t.Errorf("got %d end events, want 1", endeds)
	}
	if len(finals) != 2 || finals[0] != "first half" || finals[1] != "late flush" {
		t.Errorf("finals = %q, want [first half, late flush]", finals)
	}
}

func TestRecognizerAbortDiscardsHeldFinals(t *testing.T) {
	r := newWSRecognizer(&fakeGatewayWriter{}, nil, "")

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	r.Stop()
	r.handleTranscript("tail of the old answer", true, "")
	r.Abort()
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start after abort: %v", err)
	}

	for _, ev := range drainEvents(r) {
		if ev.Transcript != "" {
			t.Errorf("aborted capture leaked transcript %q", ev.Transcript)
		}
	}
}
