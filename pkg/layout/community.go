package layout

import "slices"

// Community is one layout group of epics. Communities are recomputed on
// every build and scoped to one layout pass; they are never persisted.
type Community struct {
	ID    int      `json:"id" bson:"id"`
	Epics []string `json:"epics" bson:"epics"`
}

// DetectCommunities partitions epics into layout groups.
//
// With TrivialEpicCount or fewer epics the partition is a single community:
// clustering below that size adds no layout value. Otherwise epics are
// processed in descending centrality order; each unassigned epic seeds a
// community and greedily absorbs its highest-weight unassigned neighbors.
// A neighbor at or above the StrongTie weight is absorbed unconditionally;
// below it at most WeakAbsorbLimit neighbors are taken, purely to avoid
// singleton communities. Community size is capped at MaxCommunitySize to
// bound layout fan-out.
//
// This is a single-pass greedy heuristic, not an optimal modularity
// solution. Every epic lands in exactly one community.
func DetectCommunities(stats map[string]*EpicStats, cfg Config) []Community {
	ordered := epicsByCentrality(stats)

	if len(ordered) <= cfg.TrivialEpicCount {
		if len(ordered) == 0 {
			return nil
		}
		all := append([]string(nil), ordered...)
		slices.Sort(all)
		return []Community{{ID: 0, Epics: all}}
	}

	assigned := make(map[string]bool, len(ordered))
	var communities []Community

	for _, seed := range ordered {
		if assigned[seed] {
			continue
		}
		members := []string{seed}
		assigned[seed] = true

		weak := 0
		for _, nb := range neighborsByWeight(stats[seed]) {
			if len(members) >= cfg.MaxCommunitySize {
				break
			}
			if assigned[nb] {
				continue
			}
			w := stats[seed].Weights[nb]
			if w < cfg.StrongTie {
				if weak >= cfg.WeakAbsorbLimit {
					continue
				}
				weak++
			}
			members = append(members, nb)
			assigned[nb] = true
		}

		communities = append(communities, Community{ID: len(communities), Epics: members})
	}
	return communities
}

// neighborsByWeight returns an epic's neighbors in descending weight
// order, ties broken by name for determinism.
func neighborsByWeight(s *EpicStats) []string {
	names := make([]string, 0, len(s.Weights))
	for name := range s.Weights {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		if d := s.Weights[b] - s.Weights[a]; d != 0 {
			return d
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})
	return names
}
