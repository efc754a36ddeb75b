package port

import (
	"context"
	"io"

	"github.com/garyjia/rendicion/internal/domain/entity"
	"github.com/garyjia/rendicion/internal/domain/receipt"
)

// ReceiptImage is a photographed or rasterized receipt
type ReceiptImage struct {
	Data     []byte
	MIMEType string
}

// ReceiptReading is what an AI reader extracted from a receipt. Guess is nil
// when the reader only returned text. Unparsed marks a reading whose Text is
// the raw model answer that could not be decoded.
type ReceiptReading struct {
	Text     string
	Guess    *receipt.AIGuess
	Source   string
	Unparsed bool
}

// ReceiptReader defines AI vision operations on receipt images
type ReceiptReader interface {
	Name() string
	ReadReceipt(ctx context.Context, img ReceiptImage) Result[*ReceiptReading]
}

// TextRecognizer defines local OCR operations
type TextRecognizer interface {
	Recognize(ctx context.Context, img ReceiptImage) (string, error)
}

// DocumentRasterizer renders PDF receipts as images
type DocumentRasterizer interface {
	FirstPageJPEG(ctx context.Context, pdf []byte) ([]byte, error)
}

// Notifier tells administrators about approval events
type Notifier interface {
	TripApproved(ctx context.Context, approval *entity.TripApproval, expenseCount int) error
}

// CatalogProvider returns the active concept catalog. Implementations may
// swap the catalog at any time.
type CatalogProvider interface {
	Catalog() *receipt.Catalog
}

// ReportWriter renders a trip summary as a spreadsheet
type ReportWriter interface {
	WriteTripReport(w io.Writer, summary *entity.TripSummary) error
}
