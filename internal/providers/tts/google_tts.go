package tts

import (
	"context"
	"os"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	texttospeechpb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"
)

type GoogleTTS struct {
	c *texttospeech.Client
}

func NewGoogleTTS(ctx context.Context) (*GoogleTTS, error) {
	var opts []option.ClientOption
	if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	c, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GoogleTTS{c: c}, nil
}

func (g *GoogleTTS) Close() error { return g.c.Close() }

func (g *GoogleTTS) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	lang := req.Language
	if lang == "" {
		lang = "en-US"
	}
	rate := req.Rate
	if rate == 0 {
		rate = 1.0
	}

	voice := &texttospeechpb.VoiceSelectionParams{LanguageCode: lang}
	if name, ok := g.pickVoice(ctx, lang, req.PreferredVoices); ok {
		voice.Name = name
	}

	resp, err := g.c.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: req.Text},
		},
		Voice: voice,
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			SpeakingRate:  rate,
			Pitch:         req.Pitch,
		},
	})
	if err != nil {
		return nil, err
	}
	return resp.AudioContent, nil
}

// pickVoice walks the preference list against the voices the service
// actually offers; a miss falls back to the service default for the
// language rather than failing.
func (g *GoogleTTS) pickVoice(ctx context.Context, lang string, preferred []string) (string, bool) {
	if len(preferred) == 0 {
		return "", false
	}
	resp, err := g.c.ListVoices(ctx, &texttospeechpb.ListVoicesRequest{LanguageCode: lang})
	if err != nil || len(resp.Voices) == 0 {
		return "", false
	}
	available := make(map[string]struct{}, len(resp.Voices))
	for _, v := range resp.Voices {
		available[v.Name] = struct{}{}
	}
	for _, p := range preferred {
		if _, ok := available[p]; ok {
			return p, true
		}
	}
	return "", false
}
