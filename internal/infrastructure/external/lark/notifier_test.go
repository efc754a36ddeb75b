package lark

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/rendicion/internal/domain/entity"
)

type fakeSender struct {
	chatID string
	text   string
	err    error
}

func (f *fakeSender) SendText(_ context.Context, chatID, text string) (string, error) {
	f.chatID, f.text = chatID, text
	if f.err != nil {
		return "", f.err
	}
	return "om_1", nil
}

func TestNotifier_TripApproved(t *testing.T) {
	approval := &entity.TripApproval{
		TripNumber:  4521,
		ApprovedBy:  "Administrador",
		ApprovedAt:  time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC),
		TotalAmount: decimal.RequireFromString("15230.5"),
	}

	t.Run("sends text to chat", func(t *testing.T) {
		sender := &fakeSender{}
		n := &Notifier{sender: sender, chatID: "oc_admin", logger: zap.NewNop()}

		require.NoError(t, n.TripApproved(context.Background(), approval, 3))
		assert.Equal(t, "oc_admin", sender.chatID)
		assert.Contains(t, sender.text, "viaje 4521 aprobada")
		assert.Contains(t, sender.text, "Aprobado por: Administrador")
		assert.Contains(t, sender.text, "Fecha: 05/03/2024 14:30")
		assert.Contains(t, sender.text, "Gastos: 3")
		assert.Contains(t, sender.text, "Total: $ 15230.50")
	})

	t.Run("send failure", func(t *testing.T) {
		n := &Notifier{sender: &fakeSender{err: errors.New("API error: code=230002")}, chatID: "oc_admin", logger: zap.NewNop()}
		err := n.TripApproved(context.Background(), approval, 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "trip 4521")
	})

	t.Run("nil approval", func(t *testing.T) {
		n := &Notifier{sender: &fakeSender{}, logger: zap.NewNop()}
		assert.Error(t, n.TripApproved(context.Background(), nil, 0))
	})
}

func TestNopNotifier(t *testing.T) {
	n := NewNopNotifier(zap.NewNop())
	assert.NoError(t, n.TripApproved(context.Background(), &entity.TripApproval{TripNumber: 1}, 0))
}
