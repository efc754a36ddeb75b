package lark

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/rendicion/internal/application/port"
	"github.com/garyjia/rendicion/internal/domain/entity"
)

// textSender is the part of Messenger the notifier needs
type textSender interface {
	SendText(ctx context.Context, chatID, text string) (string, error)
}

// Notifier posts trip approval notices to an admin chat
type Notifier struct {
	sender textSender
	chatID string
	logger *zap.Logger
}

var _ port.Notifier = (*Notifier)(nil)

// NewNotifier creates a notifier that posts to the client's chat
func NewNotifier(client *SDKClient, logger *zap.Logger) *Notifier {
	return &Notifier{
		sender: NewMessenger(client, logger),
		chatID: client.ChatID(),
		logger: logger,
	}
}

// TripApproved sends the approval notice
func (n *Notifier) TripApproved(ctx context.Context, approval *entity.TripApproval, expenseCount int) error {
	if approval == nil {
		return fmt.Errorf("approval cannot be nil")
	}

	messageID, err := n.sender.SendText(ctx, n.chatID, approvalText(approval, expenseCount))
	if err != nil {
		return fmt.Errorf("failed to notify approval of trip %d: %w", approval.TripNumber, err)
	}

	n.logger.Info("Trip approval notified",
		zap.Int64("trip_number", approval.TripNumber),
		zap.String("message_id", messageID))
	return nil
}

func approvalText(approval *entity.TripApproval, expenseCount int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Rendición del viaje %d aprobada\n", approval.TripNumber)
	fmt.Fprintf(&sb, "Aprobado por: %s\n", approval.ApprovedBy)
	fmt.Fprintf(&sb, "Fecha: %s\n", approval.ApprovedAt.Format("02/01/2006 15:04"))
	fmt.Fprintf(&sb, "Gastos: %d\n", expenseCount)
	fmt.Fprintf(&sb, "Total: $ %s", approval.TotalAmount.StringFixed(2))
	return sb.String()
}

// NopNotifier is used when no notification channel is configured
type NopNotifier struct {
	logger *zap.Logger
}

var _ port.Notifier = (*NopNotifier)(nil)

// NewNopNotifier creates a notifier that only logs
func NewNopNotifier(logger *zap.Logger) *NopNotifier {
	return &NopNotifier{logger: logger}
}

// TripApproved logs the approval at debug level
func (n *NopNotifier) TripApproved(_ context.Context, approval *entity.TripApproval, expenseCount int) error {
	n.logger.Debug("Notifications disabled, skipping trip approval notice",
		zap.Int64("trip_number", approval.TripNumber),
		zap.Int("expenses", expenseCount))
	return nil
}
