//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "marketplace-api"
	ConsumerName = "marketplace-web"

	StateRestaurantExists  = "restaurant rest-pact exists"
	StateRestaurantMissing = "no restaurant with id rest-missing"
	StateCustomerHasOrder  = "customer pact-customer has a paid order"
	StateManagerHasOrder   = "manager pact-manager owns the restaurant of order order-pact"
)

const (
	ExistingRestaurantID = "rest-pact"
	MissingRestaurantID  = "rest-missing"
	ExistingOrderID      = "order-pact"

	CustomerID    = "pact-customer"
	CustomerToken = "pact-customer-token"
	ManagerID     = "pact-manager"
	ManagerToken  = "pact-manager-token"

	RestaurantName = "Pact Pizzeria"
	MenuItemID     = "menu-margherita"
	MenuItemName   = "Margherita"
	MenuItemPrice  = int64(950)
	DeliveryPrice  = int64(250)
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the web consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
