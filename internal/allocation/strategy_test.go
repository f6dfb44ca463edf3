package allocation

import (
	"parkgate/pkg/model"
	"testing"
)

func spot(id string, floor int, distance int) *model.Spot {
	return &model.Spot{
		ID:        id,
		Floor:     floor,
		Category:  model.CategoryCar,
		DistanceM: distance,
		Status:    model.SpotFree,
	}
}

func ids(spots []*model.Spot) []string {
	out := make([]string, len(spots))
	for i, s := range spots {
		out[i] = s.ID
	}
	return out
}

func assertOrder(t *testing.T, got []*model.Spot, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d spots, got %v", len(want), ids(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %v", i, id, ids(got))
		}
	}
}

func TestNewStrategy(t *testing.T) {
	for _, name := range []string{StrategyNearest, StrategyFarthest, StrategyRoundRobin} {
		s, err := NewStrategy(name)
		if err != nil {
			t.Fatalf("NewStrategy(%q): %v", name, err)
		}
		if s.Name() != name {
			t.Errorf("expected name %q, got %q", name, s.Name())
		}
	}

	if _, err := NewStrategy("closest"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestNearestAvailable_Order(t *testing.T) {
	s, _ := NewStrategy(StrategyNearest)

	ranked := s.Rank([]*model.Spot{
		spot("F2-001", 2, 40),
		spot("F1-002", 1, 20),
		spot("F1-001", 1, 10),
	})
	assertOrder(t, ranked, "F1-001", "F1-002", "F2-001")
}

func TestFarthestAvailable_Order(t *testing.T) {
	s, _ := NewStrategy(StrategyFarthest)

	ranked := s.Rank([]*model.Spot{
		spot("F1-001", 1, 10),
		spot("F1-002", 1, 20),
		spot("F2-001", 2, 40),
	})
	assertOrder(t, ranked, "F2-001", "F1-002", "F1-001")
}

func TestRank_TieBreaksOnLowerID(t *testing.T) {
	input := []*model.Spot{
		spot("F1-009", 1, 10),
		spot("F1-002", 1, 10),
		spot("F1-005", 1, 10),
	}

	nearest, _ := NewStrategy(StrategyNearest)
	assertOrder(t, nearest.Rank(input), "F1-002", "F1-005", "F1-009")

	farthest, _ := NewStrategy(StrategyFarthest)
	assertOrder(t, farthest.Rank(input), "F1-002", "F1-005", "F1-009")
}

func TestRank_Deterministic(t *testing.T) {
	input := []*model.Spot{
		spot("F2-001", 2, 40),
		spot("F1-001", 1, 10),
		spot("F1-002", 1, 20),
	}

	s, _ := NewStrategy(StrategyNearest)
	first := ids(s.Rank(input))
	for i := 0; i < 10; i++ {
		again := ids(s.Rank(input))
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("run %d: order changed from %v to %v", i, first, again)
			}
		}
	}
}

func TestRoundRobin_RotatesFloors(t *testing.T) {
	s, _ := NewStrategy(StrategyRoundRobin)

	input := []*model.Spot{
		spot("F1-001", 1, 10),
		spot("F2-001", 2, 10),
		spot("F3-001", 3, 10),
	}

	// Successive allocations start from successive floors.
	assertOrder(t, s.Rank(input), "F1-001", "F2-001", "F3-001")
	assertOrder(t, s.Rank(input), "F2-001", "F3-001", "F1-001")
	assertOrder(t, s.Rank(input), "F3-001", "F1-001", "F2-001")
	assertOrder(t, s.Rank(input), "F1-001", "F2-001", "F3-001")
}

func TestRoundRobin_NearestWithinFloor(t *testing.T) {
	s, _ := NewStrategy(StrategyRoundRobin)

	ranked := s.Rank([]*model.Spot{
		spot("F1-002", 1, 20),
		spot("F1-001", 1, 10),
		spot("F2-001", 2, 5),
	})
	assertOrder(t, ranked, "F1-001", "F1-002", "F2-001")
}

func TestRoundRobin_EmptyInput(t *testing.T) {
	s, _ := NewStrategy(StrategyRoundRobin)
	if got := s.Rank(nil); len(got) != 0 {
		t.Fatalf("expected empty ranking, got %v", ids(got))
	}
}
