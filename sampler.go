package testgen

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// ErrExhausted reports that the sampler could not satisfy every criterion
// within the allowed number of attempts.
var ErrExhausted = errors.New("test assembly exhausted")

// DefaultMaxTries is the attempt budget used when the caller does not
// supply one.
const DefaultMaxTries = 10

// Sampler draws items from a bank according to an ordered list of quota
// criteria. The random source is injected so a fixed seed reproduces a
// fixed selection.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler creates a sampler using the given random source. A nil
// source gets a time-seeded one.
func NewSampler(rng *rand.Rand) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Sampler{rng: rng}
}

// Select samples items from the pool so that each criterion, in order, is
// satisfied by exactly its required count of distinct items. Each attempt
// starts from the full pool; when a criterion finds fewer eligible items
// than it needs, the whole attempt is discarded and assembly starts over.
// After maxTries failed attempts Select returns an error wrapping
// ErrExhausted. The result is ordered by criterion, then by draw order
// within a criterion. The pool and criteria are never modified.
func (s *Sampler) Select(pool []Item, criteria []Criterion, maxTries int) ([]Item, error) {
	if maxTries <= 0 {
		maxTries = DefaultMaxTries
	}
	total := 0
	for _, c := range criteria {
		total += c.N
	}
	for try := 1; try <= maxTries; try++ {
		selected, ok := s.attempt(pool, criteria, total)
		if ok {
			VerboseLog("assembled %d items on attempt %d/%d", len(selected), try, maxTries)
			return selected, nil
		}
		VerboseLog("attempt %d/%d failed, restarting from full pool", try, maxTries)
	}
	return nil, fmt.Errorf("tried to assemble the test %d times, increase max tries or check the criteria: %w",
		maxTries, ErrExhausted)
}

// attempt runs one full assembly pass over a fresh pool. It returns false
// as soon as any criterion cannot be filled.
func (s *Sampler) attempt(pool []Item, criteria []Criterion, total int) ([]Item, bool) {
	available := make([]bool, len(pool))
	for i := range available {
		available[i] = true
	}
	selected := make([]Item, 0, total)
	for _, c := range criteria {
		eligible := eligibleIndices(pool, available, c)
		if len(eligible) < c.N {
			return nil, false
		}
		for k := 0; k < c.N; k++ {
			j := s.rng.Intn(len(eligible))
			idx := eligible[j]
			eligible[j] = eligible[len(eligible)-1]
			eligible = eligible[:len(eligible)-1]
			available[idx] = false
			selected = append(selected, pool[idx])
		}
	}
	return selected, true
}

// eligibleIndices collects, in ascending pool order, the still-available
// indices whose item matches the criterion. Ascending order keeps the
// selection a pure function of the random source.
func eligibleIndices(pool []Item, available []bool, c Criterion) []int {
	var eligible []int
	for i := range pool {
		if available[i] && c.Matches(pool[i]) {
			eligible = append(eligible, i)
		}
	}
	return eligible
}

// SelectBacktracking is an alternate strategy behind the same contract as
// Select. Instead of restarting the whole assembly when a criterion comes
// up short, it undoes only the picks of the most recent criteria and
// redraws, trying up to maxTries distinct draws per criterion before
// giving up that branch. A criterion whose eligible set is already too
// small fails its branch immediately, since no redraw at that level can
// grow it.
func (s *Sampler) SelectBacktracking(pool []Item, criteria []Criterion, maxTries int) ([]Item, error) {
	if maxTries <= 0 {
		maxTries = DefaultMaxTries
	}
	available := make([]bool, len(pool))
	for i := range available {
		available[i] = true
	}
	selected, ok := s.solve(pool, criteria, available, maxTries)
	if !ok {
		return nil, fmt.Errorf("backtracking search exhausted after %d draws per criterion, check the criteria: %w",
			maxTries, ErrExhausted)
	}
	return selected, nil
}

func (s *Sampler) solve(pool []Item, criteria []Criterion, available []bool, maxTries int) ([]Item, bool) {
	if len(criteria) == 0 {
		return []Item{}, true
	}
	c := criteria[0]
	eligible := eligibleIndices(pool, available, c)
	if len(eligible) < c.N {
		return nil, false
	}
	tries := maxTries
	if c.N == 0 {
		// Nothing to redraw at this level.
		tries = 1
	}
	for try := 0; try < tries; try++ {
		drawn := s.draw(eligible, c.N)
		for _, idx := range drawn {
			available[idx] = false
		}
		rest, ok := s.solve(pool, criteria[1:], available, maxTries)
		if ok {
			selected := make([]Item, 0, c.N+len(rest))
			for _, idx := range drawn {
				selected = append(selected, pool[idx])
			}
			return append(selected, rest...), true
		}
		for _, idx := range drawn {
			available[idx] = true
		}
	}
	return nil, false
}

// draw picks n indices uniformly without replacement. The input slice is
// left untouched.
func (s *Sampler) draw(eligible []int, n int) []int {
	remaining := make([]int, len(eligible))
	copy(remaining, eligible)
	drawn := make([]int, 0, n)
	for k := 0; k < n; k++ {
		j := s.rng.Intn(len(remaining))
		drawn = append(drawn, remaining[j])
		remaining[j] = remaining[len(remaining)-1]
		remaining = remaining[:len(remaining)-1]
	}
	return drawn
}
