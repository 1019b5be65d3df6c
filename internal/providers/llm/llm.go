package llm

import "context"

type Provider interface {
	// GenerateText returns the full completion for a prompt.
	GenerateText(ctx context.Context, prompt string) (string, error)
	Close() error
}
