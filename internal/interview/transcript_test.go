package interview

import "testing"

func TestTranscriptAccumulatesAcrossRestarts(t *testing.T) {
	tr := NewTranscript(nil)

	tr.AppendFinal("first fragment")
	tr.SetInterim("second")
	if got := tr.Text(); got != "first fragment second" {
		t.Errorf("Text() = %q", got)
	}
	if got := tr.Committed(); got != "first fragment" {
		t.Errorf("Committed() = %q", got)
	}

	// an engine restart clears the interim tail but never committed text
	tr.ClearInterim()
	if got := tr.Text(); got != "first fragment" {
		t.Errorf("Text() after restart = %q", got)
	}

	tr.AppendFinal("second fragment")
	if got := tr.Committed(); got != "first fragment second fragment" {
		t.Errorf("Committed() = %q", got)
	}
}

func TestTranscriptInterimReplacedNotAppended(t *testing.T) {
	tr := NewTranscript(nil)
	tr.SetInterim("hel")
	tr.SetInterim("hello wor")
	tr.SetInterim("hello world")
	if got := tr.Text(); got != "hello world" {
		t.Errorf("Text() = %q", got)
	}
	if tr.Committed() != "" {
		t.Error("interim text must not be committed")
	}
}

func TestTranscriptFinalSupersedesInterim(t *testing.T) {
	tr := NewTranscript(nil)
	tr.SetInterim("hello wor")
	tr.AppendFinal("hello world")
	if got := tr.Text(); got != "hello world" {
		t.Errorf("Text() = %q", got)
	}
}

func TestTranscriptReplace(t *testing.T) {
	tr := NewTranscript(nil)
	tr.AppendFinal("spoken words")
	tr.SetInterim("more")
	tr.Replace("typed instead")
	if got := tr.Committed(); got != "typed instead" {
		t.Errorf("Committed() = %q", got)
	}
	if got := tr.Text(); got != "typed instead" {
		t.Errorf("Text() = %q", got)
	}
}

func TestTranscriptAppliesLexiconToFinals(t *testing.T) {
	tr := NewTranscript(DefaultLexicon())
	tr.AppendFinal("i used sequel at work")
	if got := tr.Committed(); got != "i used SQL at work" {
		t.Errorf("Committed() = %q", got)
	}
}

func TestTranscriptIgnoresEmptyFinals(t *testing.T) {
	tr := NewTranscript(nil)
	tr.AppendFinal("hello")
	tr.AppendFinal("   ")
	tr.AppendFinal("")
	if got := tr.Committed(); got != "hello" {
		t.Errorf("Committed() = %q", got)
	}
}

func TestTranscriptWords(t *testing.T) {
	tr := NewTranscript(nil)
	if tr.Words() != 0 {
		t.Errorf("Words() on empty = %d", tr.Words())
	}
	tr.AppendFinal("one two three")
	tr.SetInterim("four")
	if got := tr.Words(); got != 4 {
		t.Errorf("Words() = %d, want 4", got)
	}
}
