package interview

import "strings"

// Transcript accumulates one answer across recognition engine restarts.
// Final results are corrected through the lexicon and appended to the
// committed text; interim results are held separately and replaced on every
// update. Restarting the engine must never truncate or duplicate committed
// text, so the committed buffer is only ever appended to (or explicitly
// replaced by a manual edit).
//
// Not safe for concurrent use; the machine serializes access.
type Transcript struct {
	lex       *Lexicon
	committed string
	interim   string
}

func NewTranscript(lex *Lexicon) *Transcript {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &Transcript{lex: lex}
}

// AppendFinal commits a finalized recognition result.
func (t *Transcript) AppendFinal(text string) {
	text = strings.TrimSpace(t.lex.Apply(text))
	if text == "" {
		return
	}
	if t.committed == "" {
		t.committed = text
	} else {
		t.committed += " " + text
	}
	t.interim = ""
}

// SetInterim replaces the live, not-yet-final tail.
func (t *Transcript) SetInterim(text string) {
	t.interim = t.lex.Apply(text)
}

func (t *Transcript) ClearInterim() {
	t.interim = ""
}

// Replace swaps the whole committed answer for user-typed text.
func (t *Transcript) Replace(text string) {
	t.committed = text
	t.interim = ""
}

// Committed is the answer as it would be submitted: final results only.
func (t *Transcript) Committed() string {
	return t.committed
}

// Text is the display text: committed plus the live interim tail.
func (t *Transcript) Text() string {
	if t.interim == "" {
		return t.committed
	}
	if t.committed == "" {
		return t.interim
	}
	return t.committed + " " + t.interim
}

func (t *Transcript) Reset() {
	t.committed = ""
	t.interim = ""
}

// Words counts the words in the display text.
func (t *Transcript) Words() int {
	s := strings.TrimSpace(t.Text())
	if s == "" {
		return 0
	}
	return len(strings.Fields(s))
}
