package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/rendicion/internal/application/port"
	"github.com/garyjia/rendicion/internal/domain/receipt"
)

var (
	jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	pdfBytes  = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")
)

const tollText = "AUTOPISTAS DEL SOL S.A.\nCUIT 30-12345678-9\nPEAJE\nTOTAL: $1.234,50"

func newTestScanService(readers []port.ReceiptReader, ocr port.TextRecognizer, storage port.FileStorage) ScanService {
	return NewScanService(readers, ocr, &mockRasterizer{}, storage, staticCatalog{}, ScanConfig{}, &mockLogger{})
}

func TestScanService_ScanImageWithReader(t *testing.T) {
	reader := &mockReader{name: "gemini", result: port.Ok(&port.ReceiptReading{
		Text:   tollText,
		Guess:  &receipt.AIGuess{Amount: decimal.RequireFromString("1234.5"), Country: "ARG"},
		Source: "gemini",
	})}
	storage := &mockStorage{}
	svc := newTestScanService([]port.ReceiptReader{reader}, nil, storage)

	res, err := svc.ScanImage(context.Background(), Upload{Data: jpegBytes})
	require.NoError(t, err)

	assert.Equal(t, "gemini", res.Source)
	assert.Equal(t, MessageRead, res.Message)
	assert.Equal(t, receipt.CountryARG, res.Draft.Country)
	assert.Equal(t, "TARIFA", res.Draft.TypeCode)
	assert.NotEmpty(t, res.ReceiptPath)
	assert.Contains(t, storage.saved, res.ReceiptPath)
}

func TestScanService_FallsBackToNextReaderThenOCR(t *testing.T) {
	first := &mockReader{name: "openai", result: port.Err[*port.ReceiptReading](port.KindRateLimited, "429")}
	second := &mockReader{name: "gemini", result: port.Err[*port.ReceiptReading](port.KindTimeout, "deadline")}
	ocr := &mockOCR{recognizeFunc: func(ctx context.Context, img port.ReceiptImage) (string, error) {
		return tollText, nil
	}}
	svc := newTestScanService([]port.ReceiptReader{first, second}, ocr, nil)

	res, err := svc.ScanImage(context.Background(), Upload{Data: jpegBytes})
	require.NoError(t, err)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Equal(t, "tesseract", res.Source)
	assert.True(t, decimal.RequireFromString("1234.50").Equal(res.Draft.Amount))
}

func TestScanService_ReportsLastFailureKind(t *testing.T) {
	reader := &mockReader{name: "gemini", result: port.Err[*port.ReceiptReading](port.KindRateLimited, "quota")}
	storage := &mockStorage{}
	svc := newTestScanService([]port.ReceiptReader{reader}, nil, storage)

	_, err := svc.ScanImage(context.Background(), Upload{Data: jpegBytes})
	var be *port.BoundaryError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, port.KindRateLimited, be.Kind)
	assert.Empty(t, storage.saved, "failed scans do not keep the original")
}

func TestScanService_EmptyReadingGivesDefaults(t *testing.T) {
	reader := &mockReader{name: "gemini", result: port.Err[*port.ReceiptReading](port.KindEmpty, "no text")}
	svc := newTestScanService([]port.ReceiptReader{reader}, nil, nil)

	res, err := svc.ScanImage(context.Background(), Upload{Data: jpegBytes})
	require.NoError(t, err)
	assert.Equal(t, MessageUnreadable, res.Message)
	assert.Equal(t, receipt.FallbackConcept, res.Draft.Concept())
	assert.Equal(t, receipt.FormalityInformal, res.Draft.Formality)
}

func TestScanService_UndecodableAnswerKeepsRawText(t *testing.T) {
	reader := &mockReader{name: "gemini", result: port.Partial(
		&port.ReceiptReading{Text: tollText, Source: "gemini", Unparsed: true},
		port.KindUnparseable, "failed to parse response")}
	storage := &mockStorage{}
	svc := newTestScanService([]port.ReceiptReader{reader}, nil, storage)

	res, err := svc.ScanImage(context.Background(), Upload{Data: jpegBytes})
	require.NoError(t, err)

	assert.Equal(t, MessagePartial, res.Message)
	assert.Equal(t, "gemini", res.Source)
	assert.Equal(t, tollText, res.Draft.RawText)
	assert.True(t, decimal.RequireFromString("1234.50").Equal(res.Draft.Amount))
	assert.Equal(t, receipt.Concept{TypeCode: "TARIFA", ArticleCode: "5"}, res.Draft.Concept())
	assert.NotEmpty(t, res.ReceiptPath)
	assert.Contains(t, storage.saved, res.ReceiptPath)
}

func TestScanService_OCRBeatsUndecodableAnswer(t *testing.T) {
	reader := &mockReader{name: "openai", result: port.Partial(
		&port.ReceiptReading{Text: "no puedo leer la imagen", Source: "openai", Unparsed: true},
		port.KindUnparseable, "failed to parse response")}
	ocr := &mockOCR{recognizeFunc: func(ctx context.Context, img port.ReceiptImage) (string, error) {
		return tollText, nil
	}}
	svc := newTestScanService([]port.ReceiptReader{reader}, ocr, nil)

	res, err := svc.ScanImage(context.Background(), Upload{Data: jpegBytes})
	require.NoError(t, err)
	assert.Equal(t, "tesseract", res.Source)
	assert.Equal(t, MessageRead, res.Message)
}

func TestScanService_UndecodableAnswerAfterOCRFailure(t *testing.T) {
	reader := &mockReader{name: "openai", result: port.Partial(
		&port.ReceiptReading{Text: "PEAJE\nTOTAL 900", Source: "openai", Unparsed: true},
		port.KindUnparseable, "failed to parse response")}
	ocr := &mockOCR{recognizeFunc: func(ctx context.Context, img port.ReceiptImage) (string, error) {
		return "", errors.New("tesseract crashed")
	}}
	svc := newTestScanService([]port.ReceiptReader{reader}, ocr, nil)

	res, err := svc.ScanImage(context.Background(), Upload{Data: jpegBytes})
	require.NoError(t, err)
	assert.Equal(t, MessagePartial, res.Message)
	assert.True(t, decimal.NewFromInt(900).Equal(res.Draft.Amount))
}

func TestScanService_NoReaders(t *testing.T) {
	svc := newTestScanService(nil, nil, nil)

	_, err := svc.ScanImage(context.Background(), Upload{Data: jpegBytes})
	assert.ErrorIs(t, err, ErrNoReader)
}

func TestScanService_RejectsBadUploads(t *testing.T) {
	svc := NewScanService(nil, nil, nil, nil, staticCatalog{}, ScanConfig{MaxUploadBytes: 8}, &mockLogger{})

	for name, data := range map[string][]byte{
		"empty":     nil,
		"too big":   jpegBytes,
		"not image": []byte("hello"),
	} {
		_, err := svc.ScanImage(context.Background(), Upload{Data: data})
		assert.ErrorIs(t, err, ErrInvalidUpload, name)
	}
}

func TestScanService_RasterizesPDF(t *testing.T) {
	rasterizer := &mockRasterizer{}
	var gotType string
	ocr := &mockOCR{recognizeFunc: func(ctx context.Context, img port.ReceiptImage) (string, error) {
		gotType = img.MIMEType
		return "TOTAL 10", nil
	}}
	svc := NewScanService(nil, ocr, rasterizer, nil, staticCatalog{}, ScanConfig{}, &mockLogger{})

	_, err := svc.ScanImage(context.Background(), Upload{Data: pdfBytes})
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, rasterizer.got)
	assert.Equal(t, "image/jpeg", gotType)
}

func TestScanService_ScanText(t *testing.T) {
	svc := newTestScanService(nil, nil, nil)

	res := svc.ScanText(context.Background(), tollText, nil)
	assert.Equal(t, receipt.StepOne, res.Draft.Step)
	assert.Equal(t, "AUTOPISTAS DEL SOL S.A.", res.Draft.Provider)

	empty := svc.ScanText(context.Background(), "", nil)
	assert.Equal(t, MessageUnreadable, empty.Message)
}

func TestScanService_Receipt(t *testing.T) {
	reader := &mockReader{name: "gemini", result: port.Ok(&port.ReceiptReading{Text: tollText, Source: "gemini"})}
	storage := &mockStorage{}
	svc := newTestScanService([]port.ReceiptReader{reader}, nil, storage)

	res, err := svc.ScanImage(context.Background(), Upload{Data: jpegBytes})
	require.NoError(t, err)

	data, err := svc.Receipt(context.Background(), res.ReceiptPath)
	require.NoError(t, err)
	assert.Equal(t, jpegBytes, data)

	_, err = svc.Receipt(context.Background(), "2024-01/missing.jpg")
	assert.ErrorIs(t, err, ErrReceiptNotFound)

	_, err = newTestScanService(nil, nil, nil).Receipt(context.Background(), res.ReceiptPath)
	assert.ErrorIs(t, err, ErrReceiptNotFound)
}
