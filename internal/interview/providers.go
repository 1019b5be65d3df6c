package interview

import (
	"context"
	"fmt"
)

// ErrorCode is the recognition/media error taxonomy. The values mirror the
// codes reported by browser speech engines so shims can pass them through.
type ErrorCode string

const (
	ErrNoSpeech     ErrorCode = "no-speech"
	ErrAudioCapture ErrorCode = "audio-capture"
	ErrNotAllowed   ErrorCode = "not-allowed"
	ErrNetwork      ErrorCode = "network"
	ErrAborted      ErrorCode = "aborted"
)

type RecognitionError struct {
	Code    ErrorCode
	Message string
}

func (e *RecognitionError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Event is one recognition engine occurrence: a transcript fragment, an
// error, or the engine coming to rest (Ended). After Ended the engine emits
// nothing until restarted.
type Event struct {
	Transcript string
	Final      bool

	Err   *RecognitionError
	Ended bool
}

// Recognizer is a continuous speech-to-text engine with interim and final
// results. Implementations deliver events on a single channel so the machine
// can sequence them deterministically.
type Recognizer interface {
	Start(ctx context.Context) error
	// Stop ends capture gracefully; pending finals are flushed before the
	// Ended event.
	Stop()
	// Abort ends capture immediately, discarding pending results. No events
	// are delivered for the aborted session; the channel stays quiet until
	// the next Start.
	Abort()
	Events() <-chan Event
}

type Utterance struct {
	Text  string
	Rate  float64
	Pitch float64
}

// Synthesizer reads a question aloud. Speak blocks until playback finishes,
// the context is canceled, or Cancel is called. Voice selection is the
// implementation's concern (best-effort preference order, then any voice).
type Synthesizer interface {
	Speak(ctx context.Context, u Utterance) error
	Cancel()
}

// Capabilities is the one-shot probe taken at session start, used to
// pre-select manual mode instead of failing later.
type Capabilities struct {
	SecureOrigin      bool
	MediaDevices      bool
	SpeechRecognition bool
	SpeechSynthesis   bool
	AudioInputs       int
}

type Constraints struct {
	Video  bool
	Width  int
	Height int
	Audio  bool
}

type MediaStream interface {
	Stop()
}

type MediaError struct {
	Code    ErrorCode
	Message string
}

func (e *MediaError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MediaDevices acquires the camera/microphone stream. Acquire failures carry
// a MediaError so the machine can distinguish a hard permission denial from
// a constraint that merely needs relaxing.
type MediaDevices interface {
	Capabilities(ctx context.Context) (Capabilities, error)
	Acquire(ctx context.Context, c Constraints) (MediaStream, error)
}

// QA is one submitted question/answer pair, in question order.
type QA struct {
	Question string
	Answer   string
}

// RoundClient is the machine's view of the backend: fetch the ordered
// question list, submit the answer set.
type RoundClient interface {
	GenerateQuestions(ctx context.Context) ([]string, error)
	FinishRound(ctx context.Context, answers []QA) error
}
