package tesseract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Config configures the Tesseract engine
type Config struct {
	Languages []string // e.g. spa, eng
}

// Engine runs Tesseract through gosseract. A client is created per call
// because gosseract clients are not safe for concurrent use.
type Engine struct {
	languages []string
}

// NewEngine creates a new Engine
func NewEngine(cfg Config) *Engine {
	langs := cfg.Languages
	if len(langs) == 0 {
		langs = []string{"spa"}
	}
	return &Engine{languages: langs}
}

type result struct {
	text string
	err  error
}

// Text recognizes the text of an encoded image. Tesseract cannot be
// interrupted, so on cancellation the call returns early and the worker
// finishes in the background.
func (e *Engine) Text(ctx context.Context, image []byte) (string, error) {
	done := make(chan result, 1)
	go func() {
		text, err := e.run(image)
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.text, r.err
	}
}

func (e *Engine) run(image []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.languages...); err != nil {
		return "", fmt.Errorf("failed to set languages: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return "", fmt.Errorf("failed to set page segmentation: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("failed to load image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract failed: %w", err)
	}
	return text, nil
}
