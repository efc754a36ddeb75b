package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/rendicion/internal/application/port"
	"github.com/garyjia/rendicion/internal/domain/receipt"
)

// Messages shown to the driver next to the draft
const (
	MessageRead       = "Ticket leído correctamente"
	MessageUnreadable = "No se pudo leer el ticket. Intentá con una foto más clara."
	MessagePartial    = "Se leyó el ticket pero no se pudieron extraer los datos automáticamente."
)

// Upload is a receipt file as received from the client
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ScanResult is the draft produced for one receipt plus where it came from
type ScanResult struct {
	Draft       receipt.ExpenseDraft `json:"datos"`
	Source      string               `json:"fuente"`
	ReceiptPath string               `json:"comprobante,omitempty"`
	Message     string               `json:"mensaje"`
}

// ScanConfig tunes the scanning workflow
type ScanConfig struct {
	Timeout        time.Duration
	MaxUploadBytes int64
}

// ScanService turns receipt images or recognized text into expense drafts
type ScanService interface {
	ScanImage(ctx context.Context, upload Upload) (*ScanResult, error)
	ScanText(ctx context.Context, text string, guess *receipt.AIGuess) *ScanResult
	Receipt(ctx context.Context, path string) ([]byte, error)
}

type scanServiceImpl struct {
	readers    []port.ReceiptReader
	ocr        port.TextRecognizer
	rasterizer port.DocumentRasterizer
	storage    port.FileStorage
	catalog    port.CatalogProvider
	cfg        ScanConfig
	logger     Logger
}

// NewScanService creates a new ScanService. Readers are tried in order; ocr,
// rasterizer and storage may be nil.
func NewScanService(
	readers []port.ReceiptReader,
	ocr port.TextRecognizer,
	rasterizer port.DocumentRasterizer,
	storage port.FileStorage,
	catalog port.CatalogProvider,
	cfg ScanConfig,
	logger Logger,
) ScanService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	return &scanServiceImpl{
		readers:    readers,
		ocr:        ocr,
		rasterizer: rasterizer,
		storage:    storage,
		catalog:    catalog,
		cfg:        cfg,
		logger:     logger,
	}
}

var allowedTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// ScanImage reads a receipt with the configured AI readers, falling back to
// local OCR, and runs the classification pipeline on the result. When every
// reader fails the returned error wraps the last *port.BoundaryError.
func (s *scanServiceImpl) ScanImage(ctx context.Context, upload Upload) (*ScanResult, error) {
	mimeType, err := s.checkUpload(upload)
	if err != nil {
		return nil, err
	}

	storedPath := s.store(ctx, upload.Data, mimeType)

	img := port.ReceiptImage{Data: upload.Data, MIMEType: mimeType}
	if mimeType == "application/pdf" {
		if s.rasterizer == nil {
			s.discard(ctx, storedPath)
			return nil, fmt.Errorf("%w: no se admiten PDF", ErrInvalidUpload)
		}
		jpeg, err := s.rasterizer.FirstPageJPEG(ctx, upload.Data)
		if err != nil {
			s.discard(ctx, storedPath)
			return nil, fmt.Errorf("%w: PDF ilegible: %v", ErrInvalidUpload, err)
		}
		img = port.ReceiptImage{Data: jpeg, MIMEType: "image/jpeg"}
	}

	reading, failure := s.read(ctx, img)
	if reading == nil {
		switch {
		case failure == nil:
			s.discard(ctx, storedPath)
			return nil, ErrNoReader
		case failure.Kind == port.KindEmpty:
			result := s.ScanText(ctx, "", nil)
			result.ReceiptPath = storedPath
			result.Message = MessageUnreadable
			return result, nil
		default:
			s.discard(ctx, storedPath)
			return nil, fmt.Errorf("failed to read receipt: %w", failure)
		}
	}

	result := s.ScanText(ctx, reading.Text, reading.Guess)
	result.Source = reading.Source
	result.ReceiptPath = storedPath
	if reading.Unparsed {
		result.Message = MessagePartial
	}
	return result, nil
}

// read tries every reader, then OCR. It returns the first usable reading,
// else the raw text of an answer no reader could decode, else the last
// failure.
func (s *scanServiceImpl) read(ctx context.Context, img port.ReceiptImage) (*port.ReceiptReading, *port.BoundaryError) {
	var last *port.BoundaryError
	var unparsed *port.ReceiptReading

	for _, reader := range s.readers {
		readCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		start := time.Now()
		res := reader.ReadReceipt(readCtx, img)
		cancel()

		if res.IsOk() {
			s.logger.Info("Receipt read", "reader", reader.Name(), "duration_ms", time.Since(start).Milliseconds())
			return res.Value(), nil
		}
		s.logger.Error("Receipt reader failed",
			"reader", reader.Name(),
			"kind", string(res.Kind()),
			"error", res.Message())
		last = &port.BoundaryError{Kind: res.Kind(), Message: res.Message()}
		if v := res.Value(); unparsed == nil && res.Kind() == port.KindUnparseable && v != nil && strings.TrimSpace(v.Text) != "" {
			unparsed = v
		}
	}

	if s.ocr == nil {
		if unparsed != nil {
			return unparsed, nil
		}
		return nil, last
	}
	text, err := s.ocr.Recognize(ctx, img)
	switch {
	case err != nil:
		s.logger.Error("OCR failed", "error", err)
		kind := port.KindUpstream
		if errors.Is(err, context.DeadlineExceeded) {
			kind = port.KindTimeout
		}
		last = &port.BoundaryError{Kind: kind, Message: err.Error()}
	case strings.TrimSpace(text) == "":
		last = &port.BoundaryError{Kind: port.KindEmpty, Message: "OCR returned no text"}
	default:
		return &port.ReceiptReading{Text: text, Source: "tesseract"}, nil
	}
	if unparsed != nil {
		return unparsed, nil
	}
	return nil, last
}

// ScanText runs the pipeline over text a client already recognized
func (s *scanServiceImpl) ScanText(_ context.Context, text string, guess *receipt.AIGuess) *ScanResult {
	draft := receipt.Analyze(s.catalog.Catalog(), text, guess)

	msg := MessageRead
	if strings.TrimSpace(draft.RawText) == "" {
		msg = MessageUnreadable
	}
	s.logger.Info("Receipt analyzed",
		"amount", draft.Amount.String(),
		"country", string(draft.Country),
		"concept", draft.Concept().String(),
		"formality", string(draft.Formality),
		"step", int(draft.Step))

	return &ScanResult{Draft: draft, Source: "texto", Message: msg}
}

func (s *scanServiceImpl) checkUpload(upload Upload) (string, error) {
	if len(upload.Data) == 0 {
		return "", fmt.Errorf("%w: no se envió imagen", ErrInvalidUpload)
	}
	if int64(len(upload.Data)) > s.cfg.MaxUploadBytes {
		return "", fmt.Errorf("%w: el archivo supera %d bytes", ErrInvalidUpload, s.cfg.MaxUploadBytes)
	}
	mimeType := http.DetectContentType(upload.Data)
	if _, ok := allowedTypes[mimeType]; !ok {
		return "", fmt.Errorf("%w: tipo %s no admitido", ErrInvalidUpload, mimeType)
	}
	return mimeType, nil
}

// store keeps the original upload; failures are logged and ignored
func (s *scanServiceImpl) store(ctx context.Context, data []byte, mimeType string) string {
	if s.storage == nil {
		return ""
	}
	rel := path.Join(time.Now().Format("2006-01"), uuid.NewString()+allowedTypes[mimeType])
	if err := s.storage.Save(ctx, rel, data); err != nil {
		s.logger.Error("Failed to store receipt", "path", rel, "error", err)
		return ""
	}
	return rel
}

// discard removes an original that no draft will reference
func (s *scanServiceImpl) discard(ctx context.Context, rel string) {
	if s.storage == nil || rel == "" {
		return
	}
	if err := s.storage.Delete(ctx, rel); err != nil {
		s.logger.Error("Failed to delete receipt", "path", rel, "error", err)
	}
}

// Receipt returns a stored original by the path reported in ScanResult
func (s *scanServiceImpl) Receipt(ctx context.Context, rel string) ([]byte, error) {
	if s.storage == nil || rel == "" || !s.storage.Exists(ctx, rel) {
		return nil, ErrReceiptNotFound
	}
	data, err := s.storage.Read(ctx, rel)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored receipt: %w", err)
	}
	return data, nil
}
