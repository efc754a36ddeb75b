package gemini

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/garyjia/rendicion/internal/application/port"
)

func response(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func TestParseResponse(t *testing.T) {
	t.Run("json answer", func(t *testing.T) {
		res := parseResponse(response(genai.Text(`{"importe": 15000, "fecha": "2024-05-02", "pais": "CHL", "textoCompleto": "RUTA 5 SUR PEAJE"}`)))
		require.True(t, res.IsOk(), res.Message())
		reading := res.Value()
		assert.Equal(t, SourceName, reading.Source)
		assert.Equal(t, "RUTA 5 SUR PEAJE", reading.Text)
		assert.True(t, decimal.NewFromInt(15000).Equal(reading.Guess.Amount))
		assert.Equal(t, "CHL", reading.Guess.Country)
	})

	t.Run("split parts", func(t *testing.T) {
		res := parseResponse(response(genai.Text(`{"importe": "1.250,00",`), genai.Text(` "pais": "URY"}`)))
		require.True(t, res.IsOk(), res.Message())
		assert.Equal(t, "URY", res.Value().Guess.Country)
	})

	t.Run("no candidates", func(t *testing.T) {
		res := parseResponse(&genai.GenerateContentResponse{})
		assert.Equal(t, port.KindEmpty, res.Kind())
	})

	t.Run("blank text", func(t *testing.T) {
		res := parseResponse(response(genai.Text("  ")))
		assert.Equal(t, port.KindEmpty, res.Kind())
	})

	t.Run("prose", func(t *testing.T) {
		res := parseResponse(response(genai.Text(" La imagen está borrosa. ")))
		assert.Equal(t, port.KindUnparseable, res.Kind())
		require.NotNil(t, res.Value())
		assert.Equal(t, "La imagen está borrosa.", res.Value().Text)
		assert.Equal(t, SourceName, res.Value().Source)
		assert.True(t, res.Value().Unparsed)
	})
}

func TestClassify(t *testing.T) {
	expired, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-expired.Done()

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want port.ErrorKind
	}{
		{"quota", context.Background(), &googleapi.Error{Code: 429}, port.KindRateLimited},
		{"wrapped quota", context.Background(), fmt.Errorf("call: %w", &googleapi.Error{Code: 429}), port.KindRateLimited},
		{"bad key", context.Background(), &googleapi.Error{Code: 403}, port.KindInvalidInput},
		{"bad request", context.Background(), &googleapi.Error{Code: 400}, port.KindInvalidInput},
		{"server", context.Background(), &googleapi.Error{Code: 503}, port.KindUpstream},
		{"grpc quota text", context.Background(), errors.New("rpc error: code = ResourceExhausted desc = RESOURCE_EXHAUSTED"), port.KindRateLimited},
		{"deadline", context.Background(), context.DeadlineExceeded, port.KindTimeout},
		{"expired context", expired, errors.New("transport closed"), port.KindTimeout},
		{"other", context.Background(), errors.New("connection reset"), port.KindUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.ctx, tt.err))
		})
	}
}
