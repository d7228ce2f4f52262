package grab

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/mmynk/bordertrade/internal/calculator"
	"github.com/mmynk/bordertrade/internal/models"
)

// ResidentSource lists candidate claimants.
type ResidentSource interface {
	ListResidents(ctx context.Context, groupID string) ([]models.Resident, error)
}

// Simulator stands in for residents racing to claim slots on open boards.
// Its choices depend only on the seed and the inputs, so runs are reproducible.
type Simulator struct {
	hub       *Hub
	residents ResidentSource
	perTick   int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator returns a simulator that submits up to perTick claims per open board on each Tick.
func NewSimulator(hub *Hub, residents ResidentSource, seed uint64, perTick int) *Simulator {
	return &Simulator{
		hub:       hub,
		residents: residents,
		perTick:   perTick,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Tick submits claims for every open board and returns how many were accepted.
func (s *Simulator) Tick(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accepted := 0
	for _, b := range s.hub.openBoards() {
		pool, err := s.residents.ListResidents(ctx, b.GroupID)
		if err != nil {
			return accepted, fmt.Errorf("failed to list residents: %w", err)
		}

		candidates := s.candidates(b, pool)
		s.rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		if len(candidates) > s.perTick {
			candidates = candidates[:s.perTick]
		}

		for _, r := range candidates {
			_, _, err := s.hub.Claim(ctx, b.ID, r)
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, ErrBoardFull), errors.Is(err, ErrBoardClosed):
			case errors.Is(err, ErrIneligible), errors.Is(err, ErrAlreadyClaimed):
				slog.Debug("Simulated claim rejected", "board_id", b.ID, "resident_id", r.ID, "error", err)
			default:
				return accepted, err
			}
		}
	}
	return accepted, nil
}

func (s *Simulator) candidates(b Board, pool []models.Resident) []models.Resident {
	now := s.hub.now()
	var out []models.Resident
	for _, r := range pool {
		if b.GroupID != "" && r.GroupID != b.GroupID {
			continue
		}
		if b.HasResident(r.ID) || !calculator.CheckEligibility(r, now).Eligible {
			continue
		}
		out = append(out, r)
	}
	return out
}
