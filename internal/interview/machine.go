package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var (
	ErrQuestionGeneration = errors.New("question generation failed")
	ErrAlreadyInitialized = errors.New("session already initialized")
	ErrTornDown           = errors.New("session is torn down")
	ErrSpeaking           = errors.New("question is being read")
	ErrListening          = errors.New("recording in progress")
	ErrManualMode         = errors.New("voice capture is disabled")
	ErrNoAnswers          = errors.New("no answers to submit")
	ErrSubmitFailed       = errors.New("submission failed")
)

// Config tunes one interview session.
type Config struct {
	// RestartInterval is the recognition lease period: how often the engine
	// is transparently stopped and restarted to dodge platform timeouts.
	// Deployment-tuned; zero disables the lease.
	RestartInterval time.Duration

	// PostSpeechDelay is the gap between the end of a question announcement
	// and the start of capture. Defaults to one second.
	PostSpeechDelay time.Duration

	SpeechRate  float64 // defaults to 0.9
	SpeechPitch float64 // defaults to 1.1

	// Terms overrides the mis-heard-term correction table; nil uses the
	// stock software-interview table.
	Terms map[string]string
}

// Deps are the session's collaborators. Client is required; the others may
// be nil, which pre-selects manual input (and silent announcements).
type Deps struct {
	Client      RoundClient
	Recognizer  Recognizer
	Synthesizer Synthesizer
	Media       MediaDevices
	Sink        Sink
}

// Machine drives exactly one interview round: announce each question, capture
// a spoken or typed answer, advance, submit the full answer set. It owns the
// recognition/synthesis/media resources for the round and releases them all
// in Teardown, which is safe to call any number of times on any exit path.
type Machine struct {
	mu sync.Mutex

	cfg    Config
	client RoundClient
	recog  Recognizer
	synth  Synthesizer
	media  MediaDevices
	sink   Sink

	ctx    context.Context
	cancel context.CancelFunc

	phase      Phase
	questions  []string
	answers    []string
	idx        int
	transcript *Transcript

	manual        bool // typed input only
	voiceDisabled bool // hard denial; sticky until RetryVoice
	silent        bool // synthesis unavailable; visual-only questions

	speaking  bool
	listening bool
	paused    bool // lease-driven stop in flight; end event restarts

	initialized bool
	tornDown    bool

	// gen invalidates in-flight announce goroutines when the session moves
	// to another question or is torn down.
	gen int

	stream MediaStream
	lease  *lease
}

func New(cfg Config, deps Deps) *Machine {
	if cfg.PostSpeechDelay == 0 {
		cfg.PostSpeechDelay = time.Second
	}
	if cfg.SpeechRate == 0 {
		cfg.SpeechRate = 0.9
	}
	if cfg.SpeechPitch == 0 {
		cfg.SpeechPitch = 1.1
	}
	sink := deps.Sink
	if sink == nil {
		sink = NopSink{}
	}
	var lex *Lexicon
	if cfg.Terms != nil {
		lex = NewLexicon(cfg.Terms)
	} else {
		lex = DefaultLexicon()
	}

	return &Machine{
		cfg:        cfg,
		client:     deps.Client,
		recog:      deps.Recognizer,
		synth:      deps.Synthesizer,
		media:      deps.Media,
		sink:       sink,
		phase:      PhaseLoading,
		transcript: NewTranscript(lex),
	}
}

// Initialize fetches the question list, probes and acquires media, and
// announces the first question. An unrecoverable fetch failure aborts the
// session: no partial state is retained and the caller should navigate away.
func (m *Machine) Initialize(ctx context.Context) error {
	m.mu.Lock()
	if m.tornDown {
		m.mu.Unlock()
		return ErrTornDown
	}
	if m.initialized {
		m.mu.Unlock()
		return ErrAlreadyInitialized
	}
	m.initialized = true
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.setPhaseLocked(PhaseLoading)
	client := m.client
	cctx := m.ctx
	m.mu.Unlock()

	questions, err := client.GenerateQuestions(cctx)
	if err != nil || len(questions) == 0 {
		m.mu.Lock()
		m.setPhaseLocked(PhaseAborted)
		m.sink.Notice(NoticeError, "Failed to generate interview questions")
		m.mu.Unlock()
		m.Teardown()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrQuestionGeneration, err)
		}
		return ErrQuestionGeneration
	}

	m.mu.Lock()
	if m.tornDown {
		m.mu.Unlock()
		return ErrTornDown
	}
	m.questions = questions
	m.answers = make([]string, len(questions))
	m.mu.Unlock()

	m.setupMedia()

	m.mu.Lock()
	if m.tornDown {
		m.mu.Unlock()
		return ErrTornDown
	}
	if m.recog != nil {
		go m.consumeEvents()
		m.lease = newLease(m.cfg.RestartInterval, m.renewRecognition)
	}
	gen := m.gen
	m.mu.Unlock()

	go m.announce(0, gen)
	return nil
}

// setupMedia probes capability once, then walks the acquisition fallback
// chain: full AV at ideal resolution, reduced resolution, audio only, and
// finally manual input. Each step down emits its own notice.
func (m *Machine) setupMedia() {
	m.mu.Lock()
	media := m.media
	ctx := m.ctx
	m.mu.Unlock()

	if media == nil || m.recog == nil {
		m.mu.Lock()
		m.enterManualLocked("Voice capture is not available here. You can type your answers using the edit box.")
		m.mu.Unlock()
		return
	}

	caps, err := media.Capabilities(ctx)
	if err == nil {
		switch {
		case !caps.SecureOrigin:
			m.mu.Lock()
			m.enterManualLocked("Voice capture needs a secure (HTTPS) connection. You can type your answers.")
			m.mu.Unlock()
			return
		case !caps.MediaDevices || caps.AudioInputs == 0:
			m.mu.Lock()
			m.enterManualLocked("No microphone was found. You can type your answers.")
			m.mu.Unlock()
			return
		case !caps.SpeechRecognition:
			m.mu.Lock()
			m.enterManualLocked("Speech recognition is not supported here. You can answer manually using the edit box.")
			m.mu.Unlock()
			return
		}
	}

	steps := []struct {
		c      Constraints
		notice string
	}{
		{Constraints{Video: true, Width: 1280, Height: 720, Audio: true}, ""},
		{Constraints{Video: true, Width: 640, Height: 480, Audio: true}, "Retrying camera at lower resolution."},
		{Constraints{Audio: true}, "Could not access camera. Continuing with audio only."},
	}

	for _, step := range steps {
		if step.notice != "" {
			m.mu.Lock()
			m.sink.Notice(NoticeWarning, step.notice)
			m.mu.Unlock()
		}

		stream, aerr := media.Acquire(ctx, step.c)
		if aerr == nil {
			m.mu.Lock()
			if m.tornDown {
				m.mu.Unlock()
				stream.Stop()
				return
			}
			m.stream = stream
			m.mu.Unlock()
			return
		}

		var me *MediaError
		if errors.As(aerr, &me) && me.Code == ErrNotAllowed {
			m.mu.Lock()
			m.voiceDisabled = true
			m.enterManualLocked("Camera and microphone access was denied. You can type your answers.")
			m.mu.Unlock()
			return
		}
	}

	m.mu.Lock()
	m.enterManualLocked("Could not access a camera or microphone. You can type your answers.")
	m.mu.Unlock()
}

// announce reads question index aloud (or shows it silently), then opens
// capture after the configured delay. gen guards against the session having
// moved on while speech was in flight.
func (m *Machine) announce(index, gen int) {
	m.mu.Lock()
	if m.tornDown || gen != m.gen || index != m.idx {
		m.mu.Unlock()
		return
	}
	m.setPhaseLocked(PhaseAsking)
	m.sink.QuestionShown(index, len(m.questions), m.questions[index])

	text := m.questions[index]
	synth := m.synth
	silent := synth == nil || m.silent
	if !silent {
		m.speaking = true
	}
	rate, pitch := m.cfg.SpeechRate, m.cfg.SpeechPitch
	delay := m.cfg.PostSpeechDelay
	ctx := m.ctx
	m.mu.Unlock()

	if !silent {
		err := synth.Speak(ctx, Utterance{Text: text, Rate: rate, Pitch: pitch})
		m.mu.Lock()
		m.speaking = false
		if err != nil && ctx.Err() == nil && !m.silent {
			m.silent = true
			m.sink.Notice(NoticeWarning, "Audio playback is unavailable. Questions will be shown on screen only.")
		}
		stale := m.tornDown || gen != m.gen
		m.mu.Unlock()
		if stale {
			return
		}
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
	}

	m.beginCapture(gen)
}

func (m *Machine) beginCapture(gen int) {
	m.mu.Lock()
	if m.tornDown || gen != m.gen {
		m.mu.Unlock()
		return
	}
	if m.manual || m.voiceDisabled || m.recog == nil {
		m.setPhaseLocked(PhaseReviewing)
		m.mu.Unlock()
		return
	}
	if m.listening {
		m.setPhaseLocked(PhaseListening)
		m.mu.Unlock()
		return
	}
	m.paused = false
	m.listening = true
	m.setPhaseLocked(PhaseListening)
	m.sink.Notice(NoticeInfo, "Speak now...")
	r := m.recog
	ctx := m.ctx
	m.mu.Unlock()

	if err := r.Start(ctx); err != nil {
		m.mu.Lock()
		m.listening = false
		if m.phase == PhaseListening {
			m.setPhaseLocked(PhaseReviewing)
		}
		m.sink.Notice(NoticeWarning, "Could not start speech recognition. You can type your answer.")
		m.mu.Unlock()
	}
}

func (m *Machine) consumeEvents() {
	events := m.recog.Events()
	for {
		select {
		case <-m.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.handleEvent(ev)
		}
	}
}

func (m *Machine) handleEvent(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tornDown {
		return
	}

	switch {
	case ev.Err != nil:
		switch ev.Err.Code {
		case ErrNoSpeech:
			// benign: the engine heard nothing, keep listening
		case ErrAborted:
			// initiated by us
		case ErrNotAllowed, ErrAudioCapture:
			m.listening = false
			m.voiceDisabled = true
			if m.phase == PhaseListening {
				m.setPhaseLocked(PhaseReviewing)
			}
			m.enterManualLocked("Microphone access was denied. You can type your answers instead.")
		default:
			m.listening = false
			if m.phase == PhaseListening {
				m.setPhaseLocked(PhaseReviewing)
			}
			m.sink.Notice(NoticeWarning, "Speech recognition ran into a problem. You can retry the mic or type your answer.")
		}

	case ev.Ended:
		if !m.listening {
			return // stale end after an abort or error
		}
		if m.paused && !m.manual {
			// lease-driven restart: keep the committed transcript intact
			m.paused = false
			r := m.recog
			ctx := m.ctx
			go func() { _ = r.Start(ctx) }()
			return
		}
		m.listening = false
		m.transcript.ClearInterim()
		if m.phase == PhaseListening {
			m.setPhaseLocked(PhaseReviewing)
		}

	default:
		if !m.listening {
			// result from a capture that was already aborted; the session has
			// moved to another question and must not absorb it
			return
		}
		if ev.Final {
			m.transcript.AppendFinal(ev.Transcript)
		} else {
			m.transcript.SetInterim(ev.Transcript)
		}
		m.sink.AnswerChanged(m.idx, m.transcript.Text())
	}
}

// renewRecognition is the lease callback: stop the engine with the paused
// flag set so the end event restarts it instead of finalizing.
func (m *Machine) renewRecognition() {
	m.mu.Lock()
	if m.tornDown || !m.listening || m.manual || m.paused {
		m.mu.Unlock()
		return
	}
	m.paused = true
	r := m.recog
	m.mu.Unlock()
	r.Stop()
}

// StartCapture turns the microphone on from review state.
func (m *Machine) StartCapture() error {
	m.mu.Lock()
	if err := m.usableLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	if m.speaking {
		m.mu.Unlock()
		return ErrSpeaking
	}
	if m.manual || m.voiceDisabled || m.recog == nil {
		m.mu.Unlock()
		return ErrManualMode
	}
	if m.listening {
		m.mu.Unlock()
		return nil
	}
	gen := m.gen
	m.mu.Unlock()

	m.beginCapture(gen)
	return nil
}

// StopCapture turns the microphone off; the engine's end event finalizes.
func (m *Machine) StopCapture() {
	m.mu.Lock()
	if !m.listening {
		m.mu.Unlock()
		return
	}
	m.paused = false
	r := m.recog
	m.mu.Unlock()
	r.Stop()
}

// EditAnswer replaces the buffered answer with user-typed text. Allowed at
// any time except while actively listening in voice mode.
func (m *Machine) EditAnswer(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usableLocked(); err != nil {
		return err
	}
	if m.listening && !m.manual {
		return ErrListening
	}
	m.transcript.Replace(text)
	m.sink.AnswerChanged(m.idx, m.transcript.Text())
	return nil
}

// Advance commits the current answer and moves to the next question, or to
// submission when this was the last one.
func (m *Machine) Advance(ctx context.Context) error {
	m.mu.Lock()
	if err := m.usableLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	if m.speaking {
		m.mu.Unlock()
		return ErrSpeaking
	}
	if m.phase != PhaseListening && m.phase != PhaseReviewing {
		m.mu.Unlock()
		return fmt.Errorf("cannot advance from phase %q", m.phase)
	}

	var r Recognizer
	if m.listening {
		m.listening = false
		m.paused = false
		r = m.recog
	}

	m.answers[m.idx] = m.transcript.Committed()
	m.transcript.Reset()

	if m.idx < len(m.questions)-1 {
		m.idx++
		m.gen++
		next := m.idx
		gen := m.gen
		m.mu.Unlock()
		if r != nil {
			r.Abort()
		}
		go m.announce(next, gen)
		return nil
	}

	m.gen++
	m.setPhaseLocked(PhaseSubmitting)
	m.mu.Unlock()
	if r != nil {
		r.Abort()
	}
	return m.Submit(ctx)
}

// Submit sends the non-empty answers, in question order. With nothing to
// send it fails locally without a network call. A transport failure keeps
// the session in Submitting so the caller can retry.
func (m *Machine) Submit(ctx context.Context) error {
	m.mu.Lock()
	if err := m.usableLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	if m.phase == PhaseReviewing || m.phase == PhaseListening {
		// direct submit of the last question without Advance
		m.answers[m.idx] = m.transcript.Committed()
	}
	m.setPhaseLocked(PhaseSubmitting)

	payload := make([]QA, 0, len(m.questions))
	for i, q := range m.questions {
		if strings.TrimSpace(m.answers[i]) == "" {
			continue
		}
		payload = append(payload, QA{Question: q, Answer: m.answers[i]})
	}
	if len(payload) == 0 {
		m.sink.Notice(NoticeWarning, "Please answer at least one question before finishing.")
		m.setPhaseLocked(PhaseReviewing)
		m.mu.Unlock()
		return ErrNoAnswers
	}

	client := m.client
	m.mu.Unlock()

	err := client.FinishRound(ctx, payload)

	m.mu.Lock()
	if m.tornDown {
		m.mu.Unlock()
		return ErrTornDown
	}
	if err != nil {
		m.sink.Notice(NoticeError, "Failed to submit interview answers. Please try again.")
		m.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}
	m.setPhaseLocked(PhaseDone)
	m.sink.Notice(NoticeInfo, "Interview completed successfully!")
	m.mu.Unlock()

	m.Teardown()
	return nil
}

// ReplayQuestion re-announces the current question, interrupting any speech
// already in progress. The buffered answer is preserved.
func (m *Machine) ReplayQuestion() error {
	m.mu.Lock()
	if err := m.usableLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	synth := m.synth
	speaking := m.speaking
	m.gen++
	idx, gen := m.idx, m.gen
	m.mu.Unlock()

	if speaking && synth != nil {
		synth.Cancel()
	}
	go m.announce(idx, gen)
	return nil
}

// StopSpeaking interrupts the current announcement.
func (m *Machine) StopSpeaking() {
	m.mu.Lock()
	synth := m.synth
	speaking := m.speaking
	m.mu.Unlock()
	if speaking && synth != nil {
		synth.Cancel()
	}
}

// RetryVoice re-runs the media chain after the user explicitly asks for it.
// Manual mode is never left implicitly (fallback is monotonic), so this is
// the only path back to voice capture.
func (m *Machine) RetryVoice() {
	m.mu.Lock()
	if m.tornDown || !m.initialized || (!m.manual && !m.voiceDisabled) {
		m.mu.Unlock()
		return
	}
	m.manual = false
	m.voiceDisabled = false
	m.sink.ManualModeChanged(false)
	m.mu.Unlock()

	m.setupMedia()
}

// Teardown releases every held resource: media stream, recognition engine,
// speech synthesis, lease timer. Idempotent; safe on every exit path.
func (m *Machine) Teardown() {
	m.mu.Lock()
	if m.tornDown {
		m.mu.Unlock()
		return
	}
	m.tornDown = true
	m.listening = false
	m.speaking = false
	m.paused = false
	cancel := m.cancel
	ls := m.lease
	r := m.recog
	s := m.synth
	st := m.stream
	m.stream = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	ls.Stop()
	if r != nil {
		r.Abort()
	}
	if s != nil {
		s.Cancel()
	}
	if st != nil {
		st.Stop()
	}
}

func (m *Machine) usableLocked() error {
	if m.tornDown {
		return ErrTornDown
	}
	if !m.initialized {
		return errors.New("session not initialized")
	}
	return nil
}

func (m *Machine) enterManualLocked(notice string) {
	if !m.manual {
		m.manual = true
		m.sink.ManualModeChanged(true)
	}
	if notice != "" {
		m.sink.Notice(NoticeWarning, notice)
	}
	if m.phase == PhaseListening {
		m.setPhaseLocked(PhaseReviewing)
	}
}

func (m *Machine) setPhaseLocked(p Phase) {
	if m.phase == p {
		return
	}
	m.phase = p
	m.sink.PhaseChanged(p)
}

// Accessors (snapshot reads).

func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

func (m *Machine) Questions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.questions))
	copy(out, m.questions)
	return out
}

func (m *Machine) CurrentIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.idx
}

func (m *Machine) CurrentAnswer() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transcript.Text()
}

func (m *Machine) ManualMode() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.manual
}

func (m *Machine) Speaking() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speaking
}

func (m *Machine) Listening() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listening
}
