package ocr

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/garyjia/rendicion/internal/application/port"
)

// Engine recognizes text in an encoded image
type Engine interface {
	Text(ctx context.Context, image []byte) (string, error)
}

// Recognizer implements port.TextRecognizer: it cleans up the photo and
// hands it to an OCR engine.
type Recognizer struct {
	engine Engine
	logger *zap.Logger
}

var _ port.TextRecognizer = (*Recognizer)(nil)

// NewRecognizer creates a new Recognizer
func NewRecognizer(engine Engine, logger *zap.Logger) *Recognizer {
	return &Recognizer{engine: engine, logger: logger}
}

// Recognize returns the text of the receipt image. Formats the decoder does
// not know are sent to the engine untouched.
func (r *Recognizer) Recognize(ctx context.Context, img port.ReceiptImage) (string, error) {
	if len(img.Data) == 0 {
		return "", fmt.Errorf("empty image")
	}

	data := img.Data
	src, err := imaging.Decode(bytes.NewReader(img.Data), imaging.AutoOrientation(true))
	if err != nil {
		r.logger.Debug("Skipping preprocessing", zap.String("mime_type", img.MIMEType), zap.Error(err))
	} else {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, Preprocess(src), imaging.PNG); err != nil {
			return "", fmt.Errorf("failed to encode preprocessed image: %w", err)
		}
		data = buf.Bytes()
	}

	text, err := r.engine.Text(ctx, data)
	if err != nil {
		return "", fmt.Errorf("failed to recognize text: %w", err)
	}

	text = strings.TrimSpace(text)
	r.logger.Info("OCR completed", zap.Int("chars", len(text)))
	return text, nil
}
