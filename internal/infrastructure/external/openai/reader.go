package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/garyjia/rendicion/internal/ai"
	"github.com/garyjia/rendicion/internal/application/port"
)

// SourceName identifies readings produced by this reader
const SourceName = "openai"

// Config configures the OpenAI receipt reader
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Reader implements port.ReceiptReader using a vision chat model
type Reader struct {
	client  *openai.Client
	model   string
	prompts *ai.PromptConfig
	catalog port.CatalogProvider
	logger  *zap.Logger
}

var _ port.ReceiptReader = (*Reader)(nil)

// NewReader creates a new OpenAI receipt reader
func NewReader(cfg Config, prompts *ai.PromptConfig, catalog port.CatalogProvider, logger *zap.Logger) *Reader {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if prompts == nil {
		prompts = ai.DefaultPrompts()
	}
	return &Reader{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		prompts: prompts,
		catalog: catalog,
		logger:  logger,
	}
}

// Name returns the reader name
func (r *Reader) Name() string { return SourceName }

// ReadReceipt sends the image to the vision model and parses its JSON answer
func (r *Reader) ReadReceipt(ctx context.Context, img port.ReceiptImage) port.Result[*port.ReceiptReading] {
	if len(img.Data) == 0 {
		return port.Err[*port.ReceiptReading](port.KindInvalidInput, "empty image")
	}

	prompt, err := r.prompts.ReceiptPrompt(r.catalog.Catalog())
	if err != nil {
		return port.Err[*port.ReceiptReading](port.KindInvalidInput, "failed to render prompt: %v", err)
	}

	r.logger.Info("Reading receipt with Vision API",
		zap.String("model", r.model),
		zap.String("mime_type", img.MIMEType),
		zap.Int("size", len(img.Data)))

	cfg := r.prompts.ReceiptReading
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: cfg.System,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    fmt.Sprintf("data:%s;base64,%s", img.MIMEType, base64.StdEncoding.EncodeToString(img.Data)),
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		r.logger.Error("Vision API call failed", zap.Error(err))
		return port.Err[*port.ReceiptReading](classify(ctx, err), "vision API call failed: %v", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return port.Err[*port.ReceiptReading](port.KindEmpty, "no response from Vision API")
	}

	content := resp.Choices[0].Message.Content
	guess, err := ai.ParseGuess(content)
	if err != nil {
		r.logger.Error("Failed to parse Vision API response",
			zap.Error(err),
			zap.String("content", content))
		return port.Partial(&port.ReceiptReading{Text: content, Source: SourceName, Unparsed: true},
			port.KindUnparseable, "failed to parse response: %v", err)
	}

	r.logger.Info("Receipt read successfully",
		zap.String("amount", guess.Amount.String()),
		zap.String("country", guess.Country),
		zap.String("concept", guess.TypeCode+"/"+guess.ArticleCode))

	return port.Ok(&port.ReceiptReading{
		Text:   guess.FullText,
		Guess:  guess,
		Source: SourceName,
	})
}

// classify maps client errors onto boundary error kinds
func classify(ctx context.Context, err error) port.ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return port.KindTimeout
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch {
	case status == http.StatusTooManyRequests:
		return port.KindRateLimited
	case status == http.StatusBadRequest || status == http.StatusRequestEntityTooLarge:
		return port.KindInvalidInput
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		return port.KindTimeout
	default:
		return port.KindUpstream
	}
}
