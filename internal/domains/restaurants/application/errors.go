package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/food-marketplace-api/internal/domains/restaurants/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/restaurants/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid restaurant input")
	// ErrNotFound wraps missing restaurants.
	ErrNotFound = errors.New("restaurant not found")
	// ErrConflict signals the manager already has a listing.
	ErrConflict = errors.New("restaurant already exists")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrMissingLocation) ||
		errors.Is(err, domain.ErrMissingManager) ||
		errors.Is(err, domain.ErrInvalidDelivery) ||
		errors.Is(err, domain.ErrEmptyCuisines) ||
		errors.Is(err, domain.ErrInvalidMenuItem) ||
		errors.Is(err, domain.ErrDuplicateMenuItem) ||
		errors.Is(err, domain.ErrInvalidApproval) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, ports.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if errors.Is(err, ports.ErrAlreadyExists) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
