package graph

import "math/rand"

// Sampler picks up to k candidates from an over-full BFS frontier. The
// chosen policy directly affects which context downstream question
// generation sees, so it is configuration, not a hidden constant.
type Sampler func(candidates []string, k int) []string

// FirstK keeps the first k candidates in discovery order. Fully
// deterministic for a fixed graph and seed set.
func FirstK(candidates []string, k int) []string {
	if k >= len(candidates) {
		return candidates
	}
	return candidates[:k]
}

// ShuffleK returns a sampler that shuffles each over-full frontier with a
// rand source seeded from seed, so randomized runs stay reproducible.
func ShuffleK(seed int64) Sampler {
	rng := rand.New(rand.NewSource(seed))
	return func(candidates []string, k int) []string {
		if k >= len(candidates) {
			return candidates
		}
		shuffled := make([]string, len(candidates))
		copy(shuffled, candidates)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		return shuffled[:k]
	}
}

// Visit is one node reached by a bounded traversal, with its hop distance
// from the seed set.
type Visit struct {
	ID  string
	Hop int
}

// BoundedBFS expands outward from the seed set layer by layer, following
// both follows and shares_topic edges, up to maxHops layers and maxNodes
// accepted nodes, whichever fills first. When a layer's candidate set
// would push the result past maxNodes, the sampler caps it. Visited-set
// deduplication guarantees no node appears twice.
func BoundedBFS(store *Store, seeds []string, maxHops, maxNodes int, sample Sampler) []Visit {
	if len(seeds) == 0 || maxNodes <= 0 {
		return nil
	}
	if sample == nil {
		sample = FirstK
	}

	visited := make(map[string]struct{})
	visits := make([]Visit, 0, maxNodes)

	frontier := make([]string, 0, len(seeds))
	for _, id := range seeds {
		if _, ok := store.Node(id); !ok {
			continue
		}
		if _, seen := visited[id]; seen {
			continue
		}
		frontier = append(frontier, id)
	}
	if len(frontier) > maxNodes {
		frontier = sample(frontier, maxNodes)
	}
	for _, id := range frontier {
		visited[id] = struct{}{}
		visits = append(visits, Visit{ID: id, Hop: 0})
	}

	for hop := 1; hop <= maxHops && len(visits) < maxNodes; hop++ {
		var candidates []string
		inLayer := make(map[string]struct{})

		for _, id := range frontier {
			for _, neighbor := range store.Neighbors(id) {
				if _, seen := visited[neighbor.ID]; seen {
					continue
				}
				if _, seen := inLayer[neighbor.ID]; seen {
					continue
				}
				inLayer[neighbor.ID] = struct{}{}
				candidates = append(candidates, neighbor.ID)
			}
		}

		if len(candidates) == 0 {
			break
		}

		if room := maxNodes - len(visits); len(candidates) > room {
			candidates = sample(candidates, room)
		}

		for _, id := range candidates {
			visited[id] = struct{}{}
			visits = append(visits, Visit{ID: id, Hop: hop})
		}
		frontier = candidates
	}

	return visits
}
