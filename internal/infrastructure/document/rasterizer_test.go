package document

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRasterizer_RejectsBrokenInput(t *testing.T) {
	r := NewRasterizer(0, zap.NewNop())
	assert.Equal(t, float64(DefaultDPI), r.dpi)

	_, err := r.FirstPageJPEG(context.Background(), []byte("not a pdf"))
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.FirstPageJPEG(ctx, []byte("%PDF-1.4"))
	assert.ErrorIs(t, err, context.Canceled)
}
