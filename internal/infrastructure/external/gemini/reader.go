package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/garyjia/rendicion/internal/ai"
	"github.com/garyjia/rendicion/internal/application/port"
)

// SourceName identifies readings produced by this reader
const SourceName = "gemini"

// Config configures the Gemini receipt reader
type Config struct {
	APIKey string
	Model  string
}

// Reader implements port.ReceiptReader using a Gemini multimodal model
type Reader struct {
	client  *genai.Client
	model   string
	prompts *ai.PromptConfig
	catalog port.CatalogProvider
	logger  *zap.Logger
}

var _ port.ReceiptReader = (*Reader)(nil)

// NewReader creates the Gemini client. Call Close when done.
func NewReader(ctx context.Context, cfg Config, prompts *ai.PromptConfig, catalog port.CatalogProvider, logger *zap.Logger) (*Reader, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if prompts == nil {
		prompts = ai.DefaultPrompts()
	}
	return &Reader{
		client:  client,
		model:   cfg.Model,
		prompts: prompts,
		catalog: catalog,
		logger:  logger,
	}, nil
}

// Name returns the reader name
func (r *Reader) Name() string { return SourceName }

// Close releases the client
func (r *Reader) Close() error {
	return r.client.Close()
}

// ReadReceipt sends the image with the extraction prompt and parses the JSON answer
func (r *Reader) ReadReceipt(ctx context.Context, img port.ReceiptImage) port.Result[*port.ReceiptReading] {
	if len(img.Data) == 0 {
		return port.Err[*port.ReceiptReading](port.KindInvalidInput, "empty image")
	}

	prompt, err := r.prompts.ReceiptPrompt(r.catalog.Catalog())
	if err != nil {
		return port.Err[*port.ReceiptReading](port.KindInvalidInput, "failed to render prompt: %v", err)
	}

	cfg := r.prompts.ReceiptReading
	model := r.client.GenerativeModel(r.model)
	model.SetTemperature(cfg.Temperature)
	if cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(cfg.MaxTokens))
	}
	if cfg.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(cfg.System)}}
	}
	model.ResponseMIMEType = "application/json"

	r.logger.Info("Reading receipt with Gemini",
		zap.String("model", r.model),
		zap.String("mime_type", img.MIMEType),
		zap.Int("size", len(img.Data)))

	resp, err := model.GenerateContent(ctx,
		genai.Text(prompt),
		genai.Blob{
			MIMEType: img.MIMEType,
			Data:     img.Data,
		},
	)
	if err != nil {
		r.logger.Error("Gemini API call failed", zap.Error(err))
		return port.Err[*port.ReceiptReading](classify(ctx, err), "Gemini API call failed: %v", err)
	}

	return parseResponse(resp)
}

// parseResponse turns the first candidate's text into a reading
func parseResponse(resp *genai.GenerateContentResponse) port.Result[*port.ReceiptReading] {
	content := strings.TrimSpace(responseText(resp))
	if content == "" {
		return port.Err[*port.ReceiptReading](port.KindEmpty, "empty response from Gemini API")
	}

	guess, err := ai.ParseGuess(content)
	if err != nil {
		return port.Partial(&port.ReceiptReading{Text: content, Source: SourceName, Unparsed: true},
			port.KindUnparseable, "failed to parse response: %v", err)
	}

	return port.Ok(&port.ReceiptReading{
		Text:   guess.FullText,
		Guess:  guess,
		Source: SourceName,
	})
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range c.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

// classify maps Gemini errors onto boundary error kinds. The API reports
// quota problems as 429 RESOURCE_EXHAUSTED and bad keys as 400 or 403.
func classify(ctx context.Context, err error) port.ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return port.KindTimeout
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		switch gErr.Code {
		case http.StatusTooManyRequests:
			return port.KindRateLimited
		case http.StatusBadRequest, http.StatusForbidden:
			return port.KindInvalidInput
		case http.StatusGatewayTimeout:
			return port.KindTimeout
		}
		return port.KindUpstream
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "429"):
		return port.KindRateLimited
	case strings.Contains(msg, "DEADLINE_EXCEEDED"):
		return port.KindTimeout
	case strings.Contains(msg, "PERMISSION_DENIED") || strings.Contains(msg, "API_KEY_INVALID"):
		return port.KindInvalidInput
	}
	return port.KindUpstream
}
