package extract

import (
	"context"
	"errors"
	"fmt"
	"os"

	documentai "cloud.google.com/go/documentai/apiv1"
	documentaipb "cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
)

// DocAI extracts document text with a Document AI OCR processor.
type DocAI struct {
	c *documentai.DocumentProcessorClient

	processorName string // projects/{p}/locations/{l}/processors/{id}
}

func NewDocAI(ctx context.Context, projectID, location, processorID string) (*DocAI, error) {
	if projectID == "" || location == "" || processorID == "" {
		return nil, errors.New("docai: project, location, and processor are required")
	}

	opts := []option.ClientOption{
		option.WithEndpoint(location + "-documentai.googleapis.com:443"),
	}
	if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}

	c, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &DocAI{
		c:             c,
		processorName: fmt.Sprintf("projects/%s/locations/%s/processors/%s", projectID, location, processorID),
	}, nil
}

func (d *DocAI) Close() error { return d.c.Close() }

func (d *DocAI) Extract(ctx context.Context, data []byte, mimeType string) (string, error) {
	if mimeType != MimePDF && mimeType != MimeDOCX {
		return "", fmt.Errorf("docai: unsupported mime type %q", mimeType)
	}

	resp, err := d.c.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: d.processorName,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: mimeType,
			},
		},
	})
	if err != nil {
		return "", err
	}

	text := resp.GetDocument().GetText()
	if text == "" {
		return "", errors.New("docai: no text extracted")
	}
	return text, nil
}
