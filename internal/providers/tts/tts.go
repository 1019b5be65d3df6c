package tts

import "context"

// Request mirrors the utterance parameters the interview screen tunes:
// a preferred-voice list, speaking rate and pitch.
type Request struct {
	Text            string
	Language        string
	PreferredVoices []string
	Rate            float64 // 1.0 = normal
	Pitch           float64 // semitone offset
}

type Provider interface {
	// Synthesize returns encoded audio (MP3) for the request, falling back
	// through the preferred-voice list to the provider default.
	Synthesize(ctx context.Context, req Request) ([]byte, error)
	Close() error
}
