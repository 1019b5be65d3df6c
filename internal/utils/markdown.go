package utils

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// RenderMarkdown converts model-generated markdown (round summaries, resume
// summaries, job descriptions) to sanitized HTML safe to hand to the SPA.
func RenderMarkdown(src string) string {
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		// fall back to plain-text escaping
		return sanitizer.Sanitize(src)
	}
	return sanitizer.Sanitize(buf.String())
}
