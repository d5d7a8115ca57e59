package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/food-marketplace-api/internal/domains/notifications/domain"
	notificationactivities "github.com/Apurer/food-marketplace-api/internal/platform/temporal/activities/notifications"
)

// RunNotificationSequence delivers a notification over every channel in parallel.
// Each channel is a separate activity with its own retry budget, so a flaky SMS
// provider never causes the email to be sent twice.
func RunNotificationSequence(ctx workflow.Context, req domain.Request) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("notification sequence started", "orderId", req.OrderID, "kind", string(req.Kind))
	sendOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        2 * time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        time.Minute,
			MaximumAttempts:        8,
			NonRetryableErrorTypes: []string{notificationactivities.PermanentFailureType},
		},
	}
	sendCtx := workflow.WithActivityOptions(ctx, sendOptions)

	futures := make([]workflow.Future, 0, len(domain.Channels))
	for _, channel := range domain.Channels {
		futures = append(futures, workflow.ExecuteActivity(sendCtx, notificationactivities.ChannelActivityNames[channel], req))
	}
	var firstErr error
	for i, future := range futures {
		if err := future.Get(ctx, nil); err != nil {
			logger.Error("notification channel failed", "orderId", req.OrderID, "channel", string(domain.Channels[i]), "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr != nil {
		return firstErr
	}
	logger.Info("notification sequence delivered", "orderId", req.OrderID)
	return nil
}
