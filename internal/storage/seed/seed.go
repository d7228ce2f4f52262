// Package seed loads demo fixtures into a storage.Store. The records live in
// an embedded YAML document applied once to an empty store at startup.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mmynk/bordertrade/internal/models"
	"github.com/mmynk/bordertrade/internal/storage"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

// Fixtures is a complete demo data set.
type Fixtures struct {
	Groups    []models.Group    `yaml:"groups"`
	Residents []models.Resident `yaml:"residents"`
	Orders    []models.Order    `yaml:"orders"`
	SubOrders []models.SubOrder `yaml:"sub_orders"`
}

// Default returns the embedded demo fixtures.
func Default() (*Fixtures, error) {
	return Parse(defaultFixtures)
}

// LoadFile reads fixtures from a YAML file.
func LoadFile(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML fixtures document.
func Parse(data []byte) (*Fixtures, error) {
	f := &Fixtures{}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return f, nil
}

// Apply writes every fixture record to store. Groups go first so residents
// can reference them, orders before their sub-orders.
func Apply(ctx context.Context, store storage.Store, f *Fixtures) error {
	for i := range f.Groups {
		if err := store.SaveGroup(ctx, &f.Groups[i]); err != nil {
			return fmt.Errorf("seed group %s: %w", f.Groups[i].ID, err)
		}
	}
	for i := range f.Residents {
		if err := store.SaveResident(ctx, &f.Residents[i]); err != nil {
			return fmt.Errorf("seed resident %s: %w", f.Residents[i].ID, err)
		}
	}
	for i := range f.Orders {
		if err := store.SaveOrder(ctx, &f.Orders[i]); err != nil {
			return fmt.Errorf("seed order %s: %w", f.Orders[i].ID, err)
		}
	}
	for i := range f.SubOrders {
		if err := store.SaveSubOrder(ctx, &f.SubOrders[i]); err != nil {
			return fmt.Errorf("seed sub-order %s: %w", f.SubOrders[i].ID, err)
		}
	}

	slog.Info("Fixtures applied",
		"groups", len(f.Groups),
		"residents", len(f.Residents),
		"orders", len(f.Orders),
		"sub_orders", len(f.SubOrders),
	)
	return nil
}

// ApplyIfEmpty applies f only when store holds no groups yet.
// It reports whether the fixtures were applied.
func ApplyIfEmpty(ctx context.Context, store storage.Store, f *Fixtures) (bool, error) {
	groups, err := store.ListGroups(ctx)
	if err != nil {
		return false, fmt.Errorf("check existing data: %w", err)
	}
	if len(groups) > 0 {
		return false, nil
	}
	return true, Apply(ctx, store, f)
}
