package broker

import (
	"context"
	"errors"

	"github.com/Apurer/food-marketplace-api/internal/domains/notifications/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/notifications/ports"
)

var _ ports.EventPublisher = Publishers(nil)

// Publishers sends each event to every configured broker and joins their errors.
type Publishers []ports.EventPublisher

func (ps Publishers) Publish(ctx context.Context, event domain.OrderEvent) error {
	var errs []error
	for _, p := range ps {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (ps Publishers) Close() error {
	var errs []error
	for _, p := range ps {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
