package port

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult(t *testing.T) {
	ok := Ok(42)
	assert.True(t, ok.IsOk())
	v, err := ok.Unwrap()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Empty(t, ok.Kind())

	failed := Err[*ReceiptReading](KindRateLimited, "quota exceeded after %d calls", 3)
	assert.False(t, failed.IsOk())
	assert.Nil(t, failed.Value())
	assert.Equal(t, KindRateLimited, failed.Kind())
	assert.Equal(t, "quota exceeded after 3 calls", failed.Message())

	_, err = failed.Unwrap()
	var be *BoundaryError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, KindRateLimited, be.Kind)
	assert.Equal(t, "RATE_LIMITED: quota exceeded after 3 calls", err.Error())
}

func TestPartial(t *testing.T) {
	res := Partial(&ReceiptReading{Text: "raw answer", Unparsed: true}, KindUnparseable, "bad json")

	assert.False(t, res.IsOk())
	assert.Equal(t, KindUnparseable, res.Kind())
	require.NotNil(t, res.Value())
	assert.Equal(t, "raw answer", res.Value().Text)

	v, err := res.Unwrap()
	assert.Error(t, err)
	assert.Equal(t, "raw answer", v.Text)
}
