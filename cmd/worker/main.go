package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/food-marketplace-api/internal/app/api"
	platformobservability "github.com/Apurer/food-marketplace-api/internal/platform/observability"
	notificationactivities "github.com/Apurer/food-marketplace-api/internal/platform/temporal/activities/notifications"
	notificationworkflows "github.com/Apurer/food-marketplace-api/internal/platform/temporal/workflows/notifications"
)

func main() {
	ctx := context.Background()
	const serviceName = "marketplace-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	repos, cleanupRepos := api.OpenRepositories(ctx, cfg, logger)
	defer cleanupRepos()
	if repos.DB == nil {
		logger.Warn("worker is using in-memory repositories; notifications for orders created by the API will not resolve")
	}
	notificationService, cleanupNotifications := api.NewNotificationService(cfg, repos, instruments)
	defer cleanupNotifications()
	activities := notificationactivities.NewActivities(notificationService)

	temporalClient, err := api.ConnectTemporalClient(cfg.Temporal, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, notificationworkflows.OrderNotificationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(notificationworkflows.OrderNotificationWorkflow, workflow.RegisterOptions{Name: notificationworkflows.OrderNotificationWorkflowName})
	w.RegisterActivityWithOptions(activities.SendEmail, activity.RegisterOptions{Name: notificationactivities.SendEmailActivityName})
	w.RegisterActivityWithOptions(activities.SendSMS, activity.RegisterOptions{Name: notificationactivities.SendSMSActivityName})
	w.RegisterActivityWithOptions(activities.PublishEvent, activity.RegisterOptions{Name: notificationactivities.PublishEventActivityName})

	logger.Info("worker listening", slog.String("taskQueue", notificationworkflows.OrderNotificationTaskQueue), slog.String("namespace", cfg.Temporal.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
