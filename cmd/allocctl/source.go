package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/mmynk/bordertrade/internal/models"
	"github.com/mmynk/bordertrade/internal/storage"
	"github.com/mmynk/bordertrade/internal/storage/seed"
)

// fixtureSource serves reads straight from a fixtures document.
type fixtureSource struct {
	orders    map[string]models.Order
	residents []models.Resident
}

func newFixtureSource(f *seed.Fixtures) *fixtureSource {
	s := &fixtureSource{
		orders:    make(map[string]models.Order, len(f.Orders)),
		residents: slices.Clone(f.Residents),
	}
	for _, o := range f.Orders {
		s.orders[o.ID] = o
	}
	slices.SortFunc(s.residents, func(a, b models.Resident) int {
		return strings.Compare(a.ID, b.ID)
	})
	return s
}

func (s *fixtureSource) GetOrder(_ context.Context, orderID string) (*models.Order, error) {
	o, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", orderID, storage.ErrNotFound)
	}
	return &o, nil
}

func (s *fixtureSource) ListResidents(_ context.Context, groupID string) ([]models.Resident, error) {
	var out []models.Resident
	for _, r := range s.residents {
		if groupID == "" || r.GroupID == groupID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fixtureSource) Close() error { return nil }
