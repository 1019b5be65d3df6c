package extract

import "context"

// Provider extracts plain text from an uploaded resume document.
type Provider interface {
	Extract(ctx context.Context, data []byte, mimeType string) (string, error)
	Close() error
}

// Supported resume MIME types.
const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)
