package interview

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeClient struct {
	mu        sync.Mutex
	questions []string
	qErr      error

	finishErr   error
	finishCalls int
	finished    []QA
}

func (f *fakeClient) GenerateQuestions(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.qErr != nil {
		return nil, f.qErr
	}
	out := make([]string, len(f.questions))
	copy(out, f.questions)
	return out, nil
}

func (f *fakeClient) FinishRound(ctx context.Context, answers []QA) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finishCalls++
	if f.finishErr != nil {
		err := f.finishErr
		f.finishErr = nil // fail once, then succeed on retry
		return err
	}
	f.finished = append([]QA(nil), answers...)
	return nil
}

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.finishCalls
}

func (f *fakeClient) submitted() []QA {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]QA(nil), f.finished...)
}

type fakeRecognizer struct {
	mu       sync.Mutex
	events   chan Event
	started  int
	stopped  int
	aborted  int
	startErr error
}

func newFakeRecognizer() *fakeRecognizer {
	return &fakeRecognizer{events: make(chan Event, 64)}
}

func (f *fakeRecognizer) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
	return f.startErr
}

func (f *fakeRecognizer) Stop() {
	f.mu.Lock()
	f.stopped++
	f.mu.Unlock()
	f.events <- Event{Ended: true}
}

func (f *fakeRecognizer) Abort() {
	f.mu.Lock()
	f.aborted++
	f.mu.Unlock()
}

func (f *fakeRecognizer) Events() <-chan Event { return f.events }

func (f *fakeRecognizer) emit(ev Event) { f.events <- ev }

func (f *fakeRecognizer) starts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started
}

type fakeSynth struct {
	mu       sync.Mutex
	spoken   []Utterance
	speakErr error
	delay    time.Duration
	cancel   chan struct{}
}

func newFakeSynth() *fakeSynth {
	return &fakeSynth{cancel: make(chan struct{}, 1)}
}

func (f *fakeSynth) Speak(ctx context.Context, u Utterance) error {
	f.mu.Lock()
	f.spoken = append(f.spoken, u)
	err := f.speakErr
	delay := f.delay
	f.mu.Unlock()
	if err != nil {
		return err
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		case <-f.cancel:
		}
	}
	return nil
}

func (f *fakeSynth) Cancel() {
	select {
	case f.cancel <- struct{}{}:
	default:
	}
}

func (f *fakeSynth) utterances() []Utterance {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Utterance(nil), f.spoken...)
}

type fakeStream struct {
	mu    sync.Mutex
	stops int
}

func (f *fakeStream) Stop() {
	f.mu.Lock()
	f.stops++
	f.mu.Unlock()
}

func (f *fakeStream) stopCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

type fakeMedia struct {
	mu      sync.Mutex
	caps    Capabilities
	capsErr error

	// acquire decides each Acquire call; nil means success.
	acquire  func(c Constraints) (MediaStream, error)
	acquired []Constraints
	stream   *fakeStream
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{
		caps: Capabilities{
			SecureOrigin:      true,
			MediaDevices:      true,
			SpeechRecognition: true,
			SpeechSynthesis:   true,
			AudioInputs:       1,
		},
		stream: &fakeStream{},
	}
}

func (f *fakeMedia) Capabilities(ctx context.Context) (Capabilities, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.caps, f.capsErr
}

func (f *fakeMedia) Acquire(ctx context.Context, c Constraints) (MediaStream, error) {
	f.mu.Lock()
	f.acquired = append(f.acquired, c)
	fn := f.acquire
	f.mu.Unlock()
	if fn != nil {
		return fn(c)
	}
	return f.stream, nil
}

func (f *fakeMedia) requests() []Constraints {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Constraints(nil), f.acquired...)
}

type shownQuestion struct {
	index int
	total int
	text  string
}

type noticeEvent struct {
	level   NoticeLevel
	message string
}

// recordingSink captures machine events for polling assertions.
type recordingSink struct {
	mu        sync.Mutex
	phases    []Phase
	questions []shownQuestion
	answers   []string
	notices   []noticeEvent
	manual    []bool
}

func (s *recordingSink) PhaseChanged(p Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phases = append(s.phases, p)
}

func (s *recordingSink) QuestionShown(index, total int, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = append(s.questions, shownQuestion{index, total, text})
}

func (s *recordingSink) AnswerChanged(index int, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = append(s.answers, text)
}

func (s *recordingSink) Notice(level NoticeLevel, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, noticeEvent{level, message})
}

func (s *recordingSink) ManualModeChanged(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manual = append(s.manual, on)
}

func (s *recordingSink) questionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.questions)
}

func (s *recordingSink) lastPhase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.phases) == 0 {
		return ""
	}
	return s.phases[len(s.phases)-1]
}

func (s *recordingSink) noticeCount(level NoticeLevel) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, ev := range s.notices {
		if ev.level == level {
			n++
		}
	}
	return n
}

func (s *recordingSink) manualOn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.manual) == 0 {
		return false
	}
	return s.manual[len(s.manual)-1]
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func waitPhase(t *testing.T, m *Machine, p Phase) {
	t.Helper()
	waitFor(t, "phase "+string(p), func() bool { return m.Phase() == p })
}
