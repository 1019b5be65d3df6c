package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/interviewpro/backend/internal/interview"
	"github.com/interviewpro/backend/internal/providers/stt"
	"github.com/interviewpro/backend/internal/providers/tts"
	"github.com/interviewpro/backend/internal/services"
)

// jsonWriter is the outbound half of the gateway connection.
type jsonWriter interface {
	writeJSON(v any) error
}

// wsConn serializes writes to one websocket connection.
type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

// wsSink forwards machine events to the client as JSON messages.
type wsSink struct {
	conn *wsConn
}

func (s *wsSink) PhaseChanged(p interview.Phase) {
	_ = s.conn.writeJSON(map[string]any{"type": "phase", "phase": string(p)})
}

func (s *wsSink) QuestionShown(index, total int, text string) {
	_ = s.conn.writeJSON(map[string]any{"type": "question", "index": index, "total": total, "text": text})
}

func (s *wsSink) AnswerChanged(index int, text string) {
	_ = s.conn.writeJSON(map[string]any{"type": "answer", "index": index, "text": text})
}

func (s *wsSink) Notice(level interview.NoticeLevel, message string) {
	_ = s.conn.writeJSON(map[string]any{"type": "notice", "level": string(level), "message": message})
}

func (s *wsSink) ManualModeChanged(on bool) {
	_ = s.conn.writeJSON(map[string]any{"type": "manual", "on": on})
}

// wsRecognizer bridges the client's speech pipeline into the Recognizer
// contract. The client either runs recognition itself and streams transcript
// messages, or streams raw audio chunks that are transcribed server-side.
type wsRecognizer struct {
	conn     jsonWriter
	stt      stt.Provider
	language string
	events   chan interview.Event

	mu     sync.Mutex
	active bool
	// held buffers finals that arrive between a lease-driven Stop and the
	// restarting Start; they belong to the answer still being captured.
	held []interview.Event
}

func newWSRecognizer(conn jsonWriter, sttp stt.Provider, language string) *wsRecognizer {
	if language == "" {
		language = "en-US"
	}
	return &wsRecognizer{conn: conn, stt: sttp, language: language, events: make(chan interview.Event, 64)}
}

func (r *wsRecognizer) Start(ctx context.Context) error {
	r.mu.Lock()
	r.active = true
	held := r.held
	r.held = nil
	r.mu.Unlock()
	for _, ev := range held {
		r.emit(ev)
	}
	return r.conn.writeJSON(map[string]any{"type": "listen", "on": true})
}

func (r *wsRecognizer) Stop() {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return
	}
	r.active = false
	r.mu.Unlock()
	_ = r.conn.writeJSON(map[string]any{"type": "listen", "on": false})
	r.emit(interview.Event{Ended: true})
}

func (r *wsRecognizer) Abort() {
	r.mu.Lock()
	r.held = nil
	if !r.active {
		r.mu.Unlock()
		return
	}
	r.active = false
	r.mu.Unlock()
	_ = r.conn.writeJSON(map[string]any{"type": "listen", "on": false})
}

func (r *wsRecognizer) Events() <-chan interview.Event { return r.events }

// handleTranscript feeds a client-side recognition result (or engine error)
// into the event stream.
func (r *wsRecognizer) handleTranscript(text string, final bool, errCode string) {
	if errCode != "" {
		r.emit(interview.Event{Err: &interview.RecognitionError{Code: interview.ErrorCode(errCode)}})
		return
	}
	if strings.TrimSpace(text) == "" {
		return
	}
	if final {
		r.deliverFinal(text)
		return
	}
	r.mu.Lock()
	active := r.active
	r.mu.Unlock()
	if active {
		r.emit(interview.Event{Transcript: text, Final: false})
	}
}

// deliverFinal emits a final fragment, holding it while the engine is between
// a restart's Stop and Start so it lands after the flush instead of vanishing.
func (r *wsRecognizer) deliverFinal(text string) {
	r.mu.Lock()
	if !r.active {
		r.held = append(r.held, interview.Event{Transcript: text, Final: true})
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	r.emit(interview.Event{Transcript: text, Final: true})
}

// handleAudioChunk transcribes a base64 audio chunk server-side and emits the
// result as a final fragment. Transcription runs off the read loop.
func (r *wsRecognizer) handleAudioChunk(ctx context.Context, audioBase64 string) {
	if r.stt == nil {
		r.emit(interview.Event{Err: &interview.RecognitionError{
			Code: interview.ErrAudioCapture, Message: "server-side transcription is not configured",
		}})
		return
	}

	raw := audioBase64
	if i := strings.Index(raw, ","); i >= 0 {
		raw = raw[i+1:] // strip data:...;base64,
	}
	audio, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(audio) == 0 {
		return
	}

	go func() {
		text, _, terr := r.stt.Transcribe(ctx, audio, r.language)
		if terr != nil {
			r.emit(interview.Event{Err: &interview.RecognitionError{Code: interview.ErrNetwork, Message: "transcription failed"}})
			return
		}
		if strings.TrimSpace(text) != "" {
			r.deliverFinal(text)
		}
	}()
}

func (r *wsRecognizer) emit(ev interview.Event) {
	select {
	case r.events <- ev:
	default:
		// the machine has stopped draining; drop rather than block the socket
	}
}

// wsSynthesizer asks the client to speak the question with its local voices
// and waits for the playback acknowledgement.
type wsSynthesizer struct {
	conn *wsConn

	mu      sync.Mutex
	pending chan struct{}
}

func newWSSynthesizer(conn *wsConn) *wsSynthesizer {
	return &wsSynthesizer{conn: conn}
}

func (s *wsSynthesizer) Speak(ctx context.Context, u interview.Utterance) error {
	ack := make(chan struct{})
	s.mu.Lock()
	s.pending = ack
	s.mu.Unlock()

	if err := s.conn.writeJSON(map[string]any{
		"type": "speak", "text": u.Text, "rate": u.Rate, "pitch": u.Pitch,
	}); err != nil {
		return err
	}

	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(2 * time.Minute):
		return errors.New("speech playback timed out")
	}
}

func (s *wsSynthesizer) Cancel() {
	_ = s.conn.writeJSON(map[string]any{"type": "speak_cancel"})
	s.release()
}

// release unblocks a pending Speak; used for both tts_done and cancellation.
func (s *wsSynthesizer) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		close(s.pending)
		s.pending = nil
	}
}

// serverSynthesizer renders the question to MP3 server-side and ships the
// audio to the client, which plays it and acknowledges with tts_done. Used
// when a cloud voice is configured; otherwise the client's local voices do
// the speaking via wsSynthesizer.
type serverSynthesizer struct {
	conn *wsConn
	tts  tts.Provider

	mu      sync.Mutex
	pending chan struct{}
}

func newServerSynthesizer(conn *wsConn, ttsp tts.Provider) *serverSynthesizer {
	return &serverSynthesizer{conn: conn, tts: ttsp}
}

func (s *serverSynthesizer) Speak(ctx context.Context, u interview.Utterance) error {
	audio, err := s.tts.Synthesize(ctx, tts.Request{
		Text:     u.Text,
		Language: "en-US",
		Rate:     u.Rate,
		Pitch:    u.Pitch,
	})
	if err != nil {
		return err
	}

	ack := make(chan struct{})
	s.mu.Lock()
	s.pending = ack
	s.mu.Unlock()

	if err := s.conn.writeJSON(map[string]any{
		"type":         "audio",
		"audio_base64": base64.StdEncoding.EncodeToString(audio),
	}); err != nil {
		return err
	}

	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(2 * time.Minute):
		return errors.New("audio playback timed out")
	}
}

func (s *serverSynthesizer) Cancel() {
	_ = s.conn.writeJSON(map[string]any{"type": "speak_cancel"})
	s.release()
}

func (s *serverSynthesizer) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		close(s.pending)
		s.pending = nil
	}
}

// wsMedia proxies capability probing and stream acquisition to the client.
type wsMedia struct {
	conn *wsConn
	caps interview.Capabilities

	mu      sync.Mutex
	pending chan mediaResult
}

type mediaResult struct {
	ok      bool
	errCode string
}

func newWSMedia(conn *wsConn, caps interview.Capabilities) *wsMedia {
	return &wsMedia{conn: conn, caps: caps}
}

func (m *wsMedia) Capabilities(ctx context.Context) (interview.Capabilities, error) {
	return m.caps, nil
}

func (m *wsMedia) Acquire(ctx context.Context, c interview.Constraints) (interview.MediaStream, error) {
	result := make(chan mediaResult, 1)
	m.mu.Lock()
	m.pending = result
	m.mu.Unlock()

	if err := m.conn.writeJSON(map[string]any{
		"type": "media_request",
		"video": c.Video, "width": c.Width, "height": c.Height, "audio": c.Audio,
	}); err != nil {
		return nil, err
	}

	select {
	case res := <-result:
		if !res.ok {
			code := interview.ErrorCode(res.errCode)
			if code == "" {
				code = interview.ErrAudioCapture
			}
			return nil, &interview.MediaError{Code: code}
		}
		return &wsStream{conn: m.conn}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(30 * time.Second):
		return nil, &interview.MediaError{Code: interview.ErrAudioCapture, Message: "media request timed out"}
	}
}

func (m *wsMedia) handleResult(ok bool, errCode string) {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()
	if pending != nil {
		pending <- mediaResult{ok: ok, errCode: errCode}
	}
}

type wsStream struct {
	conn *wsConn
	once sync.Once
}

func (s *wsStream) Stop() {
	s.once.Do(func() {
		_ = s.conn.writeJSON(map[string]any{"type": "media_release"})
	})
}

// roundClient adapts the interview service to the machine's backend view for
// one authorized student/space/round triple.
type roundClient struct {
	svc       services.InterviewService
	studentID string
	spaceID   primitive.ObjectID
	roundName string
}

func (r *roundClient) GenerateQuestions(ctx context.Context) ([]string, error) {
	return r.svc.StartRound(ctx, r.studentID, r.spaceID, r.roundName)
}

func (r *roundClient) FinishRound(ctx context.Context, answers []interview.QA) error {
	out := make([]services.Answer, 0, len(answers))
	for _, qa := range answers {
		out = append(out, services.Answer{Question: qa.Question, Answer: qa.Answer})
	}
	return r.svc.FinishRound(ctx, r.studentID, r.spaceID, r.roundName, out)
}
