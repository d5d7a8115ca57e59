package notifications

import (
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/food-marketplace-api/internal/domains/notifications/domain"
	"github.com/Apurer/food-marketplace-api/internal/platform/temporal/sequences"
)

const (
	// OrderNotificationWorkflowName is the public identifier for registering the workflow.
	OrderNotificationWorkflowName = "notifications.workflows.OrderNotification"
	// OrderNotificationTaskQueue is the queue consumed by the notification worker.
	OrderNotificationTaskQueue = "ORDER_NOTIFICATIONS"
)

// OrderNotificationWorkflowInput carries the request plus the trace that started it.
type OrderNotificationWorkflowInput struct {
	Request domain.Request
	TraceID string
}

// OrderNotificationWorkflow tells the customer about one order event.
func OrderNotificationWorkflow(ctx workflow.Context, input OrderNotificationWorkflowInput) error {
	logger := workflow.GetLogger(ctx)
	orderID := input.Request.OrderID
	logger.Info("OrderNotificationWorkflow started", withTraceID(input.TraceID, "orderId", orderID)...)
	if err := sequences.RunNotificationSequence(ctx, input.Request); err != nil {
		logger.Error("OrderNotificationWorkflow failed", withTraceID(input.TraceID, "orderId", orderID, "error", err)...)
		return err
	}
	logger.Info("OrderNotificationWorkflow completed", withTraceID(input.TraceID, "orderId", orderID)...)
	return nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
