package workflows

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/food-marketplace-api/internal/domains/notifications/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/notifications/ports"
	orderdomain "github.com/Apurer/food-marketplace-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/food-marketplace-api/internal/domains/orders/ports"
	notificationworkflows "github.com/Apurer/food-marketplace-api/internal/platform/temporal/workflows/notifications"
)

// DefaultDispatchTimeout bounds how long a request handler may spend handing off a notification.
const DefaultDispatchTimeout = 5 * time.Second

var (
	_ orderports.Notifier = (*TemporalDispatcher)(nil)
	_ orderports.Notifier = (*InlineDispatcher)(nil)
)

// WorkflowStarter is the subset of client.Client used to start notification workflows.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// TemporalDispatcher starts a durable notification workflow per order event and returns without waiting for it.
type TemporalDispatcher struct {
	client    WorkflowStarter
	taskQueue string
	timeout   time.Duration
	now       func() time.Time
}

func NewTemporalDispatcher(c WorkflowStarter) *TemporalDispatcher {
	return &TemporalDispatcher{
		client:    c,
		taskQueue: notificationworkflows.OrderNotificationTaskQueue,
		timeout:   DefaultDispatchTimeout,
		now:       time.Now,
	}
}

// OrderConfirmed uses a workflow id derived from the order alone, so a confirmation is started at most once.
func (d *TemporalDispatcher) OrderConfirmed(ctx context.Context, orderID string) error {
	req := domain.Request{Kind: domain.KindOrderConfirmed, OrderID: orderID}
	return d.start(ctx, req, client.StartWorkflowOptions{
		ID:                    fmt.Sprintf("order-notification-%s-confirmed", orderID),
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	})
}

func (d *TemporalDispatcher) OrderStatusChanged(ctx context.Context, orderID string, status orderdomain.Status) error {
	req := domain.Request{Kind: domain.KindStatusChanged, OrderID: orderID, Status: string(status)}
	return d.start(ctx, req, client.StartWorkflowOptions{
		ID: fmt.Sprintf("order-notification-%s-%s-%d", orderID, status, d.now().UnixNano()),
	})
}

func (d *TemporalDispatcher) start(ctx context.Context, req domain.Request, options client.StartWorkflowOptions) error {
	if d == nil || d.client == nil {
		return errors.New("temporal notification dispatcher not configured")
	}
	options.TaskQueue = d.taskQueue
	startCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()
	_, err := d.client.ExecuteWorkflow(
		startCtx,
		options,
		notificationworkflows.OrderNotificationWorkflowName,
		notificationworkflows.OrderNotificationWorkflowInput{Request: req, TraceID: traceID(ctx)},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return nil
		}
		return err
	}
	return nil
}

// InlineDispatcher delivers notifications in a background goroutine when no Temporal cluster is configured.
// Failures are logged and not retried.
type InlineDispatcher struct {
	service ports.Service
	logger  *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

type InlineOption func(*InlineDispatcher)

func WithLogger(logger *slog.Logger) InlineOption {
	return func(d *InlineDispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithDeliveryTimeout bounds one background delivery.
func WithDeliveryTimeout(timeout time.Duration) InlineOption {
	return func(d *InlineDispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

func NewInlineDispatcher(service ports.Service, opts ...InlineOption) *InlineDispatcher {
	d := &InlineDispatcher{
		service: service,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *InlineDispatcher) OrderConfirmed(ctx context.Context, orderID string) error {
	return d.dispatch(ctx, domain.Request{Kind: domain.KindOrderConfirmed, OrderID: orderID})
}

func (d *InlineDispatcher) OrderStatusChanged(ctx context.Context, orderID string, status orderdomain.Status) error {
	return d.dispatch(ctx, domain.Request{Kind: domain.KindStatusChanged, OrderID: orderID, Status: string(status)})
}

func (d *InlineDispatcher) dispatch(ctx context.Context, req domain.Request) error {
	if d == nil || d.service == nil {
		return errors.New("inline notification dispatcher not configured")
	}
	if err := req.Validate(); err != nil {
		return err
	}
	deliveryCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer cancel()
		if err := d.service.Deliver(deliveryCtx, req); err != nil {
			d.logger.LogAttrs(deliveryCtx, slog.LevelWarn, "notification delivery failed",
				slog.String("order_id", req.OrderID),
				slog.String("kind", string(req.Kind)),
				slog.String("error", err.Error()))
		}
	}()
	return nil
}

// Wait blocks until in-flight deliveries finish.
func (d *InlineDispatcher) Wait() {
	d.wg.Wait()
}

func traceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
