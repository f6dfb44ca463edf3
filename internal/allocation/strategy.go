package allocation

import (
	"fmt"
	"parkgate/pkg/model"
	"sort"
	"sync/atomic"
)

const (
	StrategyNearest    = "nearest"
	StrategyFarthest   = "farthest"
	StrategyRoundRobin = "roundrobin"
)

// Strategy orders candidate spots by preference. Rank must be
// deterministic for a given input: equal preference always breaks ties
// on the lower spot ID.
type Strategy interface {
	Name() string
	Rank(spots []*model.Spot) []*model.Spot
}

func NewStrategy(name string) (Strategy, error) {
	switch name {
	case StrategyNearest:
		return &nearestAvailable{}, nil
	case StrategyFarthest:
		return &farthestAvailable{}, nil
	case StrategyRoundRobin:
		return &roundRobin{}, nil
	default:
		return nil, fmt.Errorf("unknown allocation strategy: %q", name)
	}
}

type nearestAvailable struct{}

func (s *nearestAvailable) Name() string { return StrategyNearest }

func (s *nearestAvailable) Rank(spots []*model.Spot) []*model.Spot {
	ranked := copySpots(spots)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].DistanceM != ranked[j].DistanceM {
			return ranked[i].DistanceM < ranked[j].DistanceM
		}
		return ranked[i].ID < ranked[j].ID
	})
	return ranked
}

type farthestAvailable struct{}

func (s *farthestAvailable) Name() string { return StrategyFarthest }

func (s *farthestAvailable) Rank(spots []*model.Spot) []*model.Spot {
	ranked := copySpots(spots)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].DistanceM != ranked[j].DistanceM {
			return ranked[i].DistanceM > ranked[j].DistanceM
		}
		return ranked[i].ID < ranked[j].ID
	})
	return ranked
}

// roundRobin spreads load across floors: each allocation starts from the
// next floor in rotation, walking floors in ascending order from there.
// Within a floor, spots rank nearest first with the ID tie-break.
type roundRobin struct {
	cursor atomic.Uint64
}

func (s *roundRobin) Name() string { return StrategyRoundRobin }

func (s *roundRobin) Rank(spots []*model.Spot) []*model.Spot {
	if len(spots) == 0 {
		return nil
	}

	byFloor := make(map[int][]*model.Spot)
	for _, spot := range spots {
		byFloor[spot.Floor] = append(byFloor[spot.Floor], spot)
	}

	floors := make([]int, 0, len(byFloor))
	for floor := range byFloor {
		floors = append(floors, floor)
	}
	sort.Ints(floors)

	for _, floor := range floors {
		group := byFloor[floor]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].DistanceM != group[j].DistanceM {
				return group[i].DistanceM < group[j].DistanceM
			}
			return group[i].ID < group[j].ID
		})
	}

	start := int(s.cursor.Add(1)-1) % len(floors)

	ranked := make([]*model.Spot, 0, len(spots))
	for i := 0; i < len(floors); i++ {
		floor := floors[(start+i)%len(floors)]
		for _, spot := range byFloor[floor] {
			copy := *spot
			ranked = append(ranked, &copy)
		}
	}
	return ranked
}

func copySpots(spots []*model.Spot) []*model.Spot {
	out := make([]*model.Spot, 0, len(spots))
	for _, spot := range spots {
		copy := *spot
		out = append(out, &copy)
	}
	return out
}
