package notifications

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/food-marketplace-api/internal/domains/notifications/application"
	"github.com/Apurer/food-marketplace-api/internal/domains/notifications/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/notifications/ports"
)

const (
	// SendEmailActivityName renders and emails one order notification.
	SendEmailActivityName = "notifications.activities.SendEmail"
	// SendSMSActivityName renders and texts one order notification.
	SendSMSActivityName = "notifications.activities.SendSMS"
	// PublishEventActivityName emits the order event to the broker.
	PublishEventActivityName = "notifications.activities.PublishEvent"
	// PermanentFailureType tags errors the workflow must not retry.
	PermanentFailureType = "PermanentNotificationFailure"
)

// ChannelActivityNames maps each channel to the activity that delivers it.
var ChannelActivityNames = map[domain.Channel]string{
	domain.ChannelEmail: SendEmailActivityName,
	domain.ChannelSMS:   SendSMSActivityName,
	domain.ChannelEvent: PublishEventActivityName,
}

// Activities groups activities that operate on the notifications bounded context.
// Each channel is its own activity so a retry never repeats a channel that already succeeded.
type Activities struct {
	service ports.Service
}

func NewActivities(service ports.Service) *Activities {
	return &Activities{service: service}
}

func (a *Activities) SendEmail(ctx context.Context, req domain.Request) error {
	return a.deliver(ctx, req, domain.ChannelEmail)
}

func (a *Activities) SendSMS(ctx context.Context, req domain.Request) error {
	return a.deliver(ctx, req, domain.ChannelSMS)
}

func (a *Activities) PublishEvent(ctx context.Context, req domain.Request) error {
	return a.deliver(ctx, req, domain.ChannelEvent)
}

// deliver sends req over one channel. Malformed requests and vanished orders fail without retry.
func (a *Activities) deliver(ctx context.Context, req domain.Request, channel domain.Channel) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("notification activity not initialized", "orderId", req.OrderID, "channel", string(channel))
		return errors.New("notification activity not initialized")
	}
	logger.Info("notification activity started", "orderId", req.OrderID, "kind", string(req.Kind), "channel", string(channel))
	if err := a.service.DeliverChannel(ctx, req, channel); err != nil {
		if application.Permanent(err) {
			logger.Warn("notification activity dropped notification", "orderId", req.OrderID, "channel", string(channel), "error", err)
			return temporal.NewNonRetryableApplicationError(err.Error(), PermanentFailureType, err)
		}
		logger.Error("notification activity failed", "orderId", req.OrderID, "channel", string(channel), "error", err)
		return err
	}
	logger.Info("notification activity completed", "orderId", req.OrderID, "channel", string(channel))
	return nil
}
