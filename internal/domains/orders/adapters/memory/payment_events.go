package memory

import (
	"context"
	"sync"

	"github.com/Apurer/food-marketplace-api/internal/domains/orders/ports"
)

var _ ports.PaymentEventStore = (*PaymentEventStore)(nil)

// PaymentEventStore keeps processed provider events in memory.
type PaymentEventStore struct {
	mu      sync.RWMutex
	records map[string]ports.PaymentEventRecord
}

func NewPaymentEventStore() *PaymentEventStore {
	return &PaymentEventStore{records: map[string]ports.PaymentEventRecord{}}
}

func (s *PaymentEventStore) Seen(_ context.Context, eventID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[eventID]
	return ok, nil
}

// Record keeps the first record for an event id.
func (s *PaymentEventStore) Record(_ context.Context, record ports.PaymentEventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.EventID]; !ok {
		s.records[record.EventID] = record
	}
	return nil
}

// Get returns the stored record, if any.
func (s *PaymentEventStore) Get(eventID string) (ports.PaymentEventRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[eventID]
	return record, ok
}
