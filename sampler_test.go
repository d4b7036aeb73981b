package testgen

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func poolItem(id string, tags ...string) Item {
	return Item{
		ID:        id,
		Text:      "question " + id,
		Responses: []string{"a", "b", "c", "d"},
		Correct:   0,
		Tags:      NewTagSet(tags...),
	}
}

func seededSampler(seed int64) *Sampler {
	return NewSampler(rand.New(rand.NewSource(seed)))
}

// countingSource wraps a rand source and counts how often it is drawn
// from, which exposes how many attempts the sampler made in scenarios
// where each attempt draws exactly once.
type countingSource struct {
	src   rand.Source
	calls int
}

func (c *countingSource) Int63() int64 {
	c.calls++
	return c.src.Int63()
}

func (c *countingSource) Seed(seed int64) {
	c.src.Seed(seed)
}

func TestSelectExactCounts(t *testing.T) {
	pool := []Item{
		poolItem("a1", "design"),
		poolItem("a2", "design"),
		poolItem("a3", "design", "stats"),
		poolItem("a4", "stats"),
		poolItem("a5", "stats"),
		poolItem("a6", "ethics"),
		poolItem("a7", "ethics", "stats"),
	}
	criteria := []Criterion{
		{Include: NewTagSet("design"), N: 2},
		{Include: NewTagSet("stats"), N: 2},
		{Include: NewTagSet("ethics"), N: 1},
	}

	selected, err := seededSampler(1).Select(pool, criteria, 50)
	require.NoError(t, err)
	require.Len(t, selected, 5)

	// Result is ordered criterion by criterion: the first two items were
	// drawn for the design criterion, and so on.
	offset := 0
	for _, c := range criteria {
		for _, item := range selected[offset : offset+c.N] {
			assert.True(t, c.Matches(item), "item %s does not satisfy its criterion", item.ID)
		}
		offset += c.N
	}
}

func TestSelectDisjoint(t *testing.T) {
	pool := []Item{
		poolItem("b1", "x"),
		poolItem("b2", "x", "y"),
		poolItem("b3", "x", "y"),
		poolItem("b4", "y"),
	}
	criteria := []Criterion{
		{Include: NewTagSet("x"), N: 2},
		{Include: NewTagSet("y"), N: 2},
	}

	for seed := int64(0); seed < 20; seed++ {
		selected, err := seededSampler(seed).Select(pool, criteria, 50)
		require.NoError(t, err, "seed %d", seed)

		seen := make(map[string]bool)
		for _, item := range selected {
			assert.False(t, seen[item.ID], "item %s selected twice (seed %d)", item.ID, seed)
			seen[item.ID] = true
		}
	}
}

func TestSelectDeterministic(t *testing.T) {
	pool := []Item{
		poolItem("c1", "x"),
		poolItem("c2", "x"),
		poolItem("c3", "x"),
		poolItem("c4", "x"),
		poolItem("c5", "x"),
	}
	criteria := []Criterion{{Include: NewTagSet("x"), N: 3}}

	first, err := seededSampler(99).Select(pool, criteria, 10)
	require.NoError(t, err)
	second, err := seededSampler(99).Select(pool, criteria, 10)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSelectEmptyCriteria(t *testing.T) {
	pool := []Item{poolItem("d1", "x")}

	selected, err := seededSampler(1).Select(pool, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, selected)
}

func TestSelectZeroCountCriterion(t *testing.T) {
	pool := []Item{poolItem("e1", "x")}
	criteria := []Criterion{
		{Include: NewTagSet("x"), N: 0},
		{Include: NewTagSet("x"), N: 1},
	}

	// The zero-count criterion must not consume the only x item.
	selected, err := seededSampler(1).Select(pool, criteria, 10)
	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, "e1", selected[0].ID)
}

func TestSelectOrderSensitivityFeasible(t *testing.T) {
	pool := []Item{
		poolItem("f1", "x"),
		poolItem("f2", "x", "y"),
		poolItem("f3", "y"),
	}

	// Whichever item the x criterion draws, at least one y item remains.
	for seed := int64(0); seed < 20; seed++ {
		criteria := []Criterion{
			{Include: NewTagSet("x"), N: 1},
			{Include: NewTagSet("y"), N: 1},
		}
		selected, err := seededSampler(seed).Select(pool, criteria, 50)
		require.NoError(t, err, "seed %d", seed)
		assert.Len(t, selected, 2)

		// The tighter criterion going first must not deadlock either.
		reordered := []Criterion{criteria[1], criteria[0]}
		selected, err = seededSampler(seed).Select(pool, reordered, 50)
		require.NoError(t, err, "seed %d reordered", seed)
		assert.Len(t, selected, 2)
	}
}

func TestSelectDeadlockExhausts(t *testing.T) {
	// The only item carries both tags; the first criterion always
	// consumes it and the second can never be filled.
	pool := []Item{poolItem("g1", "x", "y")}
	criteria := []Criterion{
		{Include: NewTagSet("x"), N: 1},
		{Include: NewTagSet("y"), N: 1},
	}

	_, err := seededSampler(1).Select(pool, criteria, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestSelectExhaustsAfterExactlyMaxTries(t *testing.T) {
	// Each attempt draws exactly once (one item for the x criterion)
	// before the z criterion fails, so the number of draws from the
	// random source equals the number of attempts.
	pool := []Item{
		poolItem("h1", "x"),
		poolItem("h2", "x"),
	}
	criteria := []Criterion{
		{Include: NewTagSet("x"), N: 1},
		{Include: NewTagSet("z"), N: 1},
	}

	const maxTries = 7
	src := &countingSource{src: rand.NewSource(1)}
	sampler := NewSampler(rand.New(src))

	_, err := sampler.Select(pool, criteria, maxTries)
	require.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, maxTries, src.calls)
}

func TestSelectDefaultMaxTries(t *testing.T) {
	pool := []Item{poolItem("i1", "x")}
	criteria := []Criterion{{Include: NewTagSet("y"), N: 1}}

	_, err := seededSampler(1).Select(pool, criteria, 0)
	require.ErrorIs(t, err, ErrExhausted)
	assert.Contains(t, err.Error(), "10 times")
}

func TestSelectInsufficientPool(t *testing.T) {
	pool := []Item{poolItem("j1", "x")}
	criteria := []Criterion{{Include: NewTagSet("x"), N: 2}}

	_, err := seededSampler(1).Select(pool, criteria, 3)
	require.ErrorIs(t, err, ErrExhausted)
}

func TestSelectExcludeDominates(t *testing.T) {
	pool := []Item{
		poolItem("k1", "x", "retired"),
		poolItem("k2", "x"),
	}
	criteria := []Criterion{
		{Include: NewTagSet("x"), Exclude: NewTagSet("retired"), N: 1},
	}

	for seed := int64(0); seed < 10; seed++ {
		selected, err := seededSampler(seed).Select(pool, criteria, 10)
		require.NoError(t, err)
		require.Len(t, selected, 1)
		assert.Equal(t, "k2", selected[0].ID, "seed %d", seed)
	}
}

func TestSelectBacktrackingRecoversFromGreedyConflict(t *testing.T) {
	// If the x criterion happens to claim the only x-and-y item, the y
	// criterion starves; backtracking redraws the x pick instead of
	// restarting from scratch.
	pool := []Item{
		poolItem("l1", "x", "y"),
		poolItem("l2", "x"),
	}
	criteria := []Criterion{
		{Include: NewTagSet("x"), N: 1},
		{Include: NewTagSet("y"), N: 1},
	}

	selected, err := seededSampler(42).SelectBacktracking(pool, criteria, 64)
	require.NoError(t, err)
	require.Len(t, selected, 2)
	assert.Equal(t, "l2", selected[0].ID)
	assert.Equal(t, "l1", selected[1].ID)
}

func TestSelectBacktrackingDeadlockExhausts(t *testing.T) {
	pool := []Item{poolItem("m1", "x", "y")}
	criteria := []Criterion{
		{Include: NewTagSet("x"), N: 1},
		{Include: NewTagSet("y"), N: 1},
	}

	_, err := seededSampler(1).SelectBacktracking(pool, criteria, 5)
	require.ErrorIs(t, err, ErrExhausted)
}

func TestSelectBacktrackingExactCounts(t *testing.T) {
	pool := []Item{
		poolItem("n1", "design"),
		poolItem("n2", "design", "stats"),
		poolItem("n3", "stats"),
		poolItem("n4", "stats"),
		poolItem("n5", "ethics"),
	}
	criteria := []Criterion{
		{Include: NewTagSet("design"), N: 1},
		{Include: NewTagSet("stats"), N: 2},
		{Include: NewTagSet("ethics"), N: 1},
	}

	selected, err := seededSampler(7).SelectBacktracking(pool, criteria, 20)
	require.NoError(t, err)
	require.Len(t, selected, 4)

	offset := 0
	seen := make(map[string]bool)
	for _, c := range criteria {
		for _, item := range selected[offset : offset+c.N] {
			assert.True(t, c.Matches(item))
			assert.False(t, seen[item.ID])
			seen[item.ID] = true
		}
		offset += c.N
	}
}
