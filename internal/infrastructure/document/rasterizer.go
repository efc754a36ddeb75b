package document

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"

	"github.com/garyjia/rendicion/internal/application/port"
)

// DefaultDPI renders receipt pages sharp enough for OCR without
// producing oversized uploads for the vision models.
const DefaultDPI = 200

// Rasterizer renders PDF receipts with MuPDF
type Rasterizer struct {
	dpi    float64
	logger *zap.Logger
}

var _ port.DocumentRasterizer = (*Rasterizer)(nil)

// NewRasterizer creates a new Rasterizer; dpi <= 0 uses DefaultDPI
func NewRasterizer(dpi float64, logger *zap.Logger) *Rasterizer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Rasterizer{dpi: dpi, logger: logger}
}

// FirstPageJPEG renders page one of the PDF as a JPEG
func (r *Rasterizer) FirstPageJPEG(ctx context.Context, pdf []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	img, err := doc.ImageDPI(0, r.dpi)
	if err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}

	r.logger.Debug("PDF rasterized",
		zap.Int("pages", doc.NumPage()),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("size_bytes", buf.Len()))

	return buf.Bytes(), nil
}
