package interview

type Phase string

const (
	PhaseLoading    Phase = "loading"
	PhaseAsking     Phase = "asking"
	PhaseListening  Phase = "listening"
	PhaseReviewing  Phase = "reviewing"
	PhaseSubmitting Phase = "submitting"
	PhaseDone       Phase = "done"
	PhaseAborted    Phase = "aborted"
)

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Sink observes machine progress. Implementations must not call back into
// the machine from inside a callback; callbacks run with internal state
// settled but are delivered synchronously.
type Sink interface {
	PhaseChanged(p Phase)
	QuestionShown(index, total int, text string)
	AnswerChanged(index int, text string)
	Notice(level NoticeLevel, message string)
	ManualModeChanged(on bool)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) PhaseChanged(Phase)             {}
func (NopSink) QuestionShown(int, int, string) {}
func (NopSink) AnswerChanged(int, string)      {}
func (NopSink) Notice(NoticeLevel, string)     {}
func (NopSink) ManualModeChanged(bool)         {}
