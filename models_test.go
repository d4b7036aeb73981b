package testgen

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemValidate(t *testing.T) {
	valid := Item{ID: "q1", Text: "?", Responses: []string{"a", "b"}, Correct: 1}
	assert.NoError(t, valid.Validate())

	noResponses := Item{ID: "q2", Text: "?", Correct: 0}
	assert.ErrorIs(t, noResponses.Validate(), ErrInvalidItem)

	outOfRange := Item{ID: "q3", Text: "?", Responses: []string{"a", "b"}, Correct: 2}
	assert.ErrorIs(t, outOfRange.Validate(), ErrInvalidItem)

	negative := Item{ID: "q4", Text: "?", Responses: []string{"a"}, Correct: -1}
	assert.ErrorIs(t, negative.Validate(), ErrInvalidItem)
}

func TestItemHasTags(t *testing.T) {
	item := Item{Tags: NewTagSet("design", "stats")}

	assert.True(t, item.HasTags(NewTagSet("design")))
	assert.True(t, item.HasTags(NewTagSet("design", "stats")))
	assert.False(t, item.HasTags(NewTagSet("design", "ethics")))

	// An empty tag set is always satisfied.
	assert.True(t, item.HasTags(NewTagSet()))
	assert.True(t, Item{}.HasTags(NewTagSet()))
}

func TestCriterionMatches(t *testing.T) {
	item := Item{Tags: NewTagSet("design", "retired")}

	tests := []struct {
		name    string
		c       Criterion
		matches bool
	}{
		{"include present", Criterion{Include: NewTagSet("design")}, true},
		{"include missing", Criterion{Include: NewTagSet("stats")}, false},
		{"empty include", Criterion{}, true},
		{"excluded", Criterion{Include: NewTagSet("design"), Exclude: NewTagSet("retired")}, false},
		{"exclude needs all tags", Criterion{Include: NewTagSet("design"), Exclude: NewTagSet("retired", "draft")}, true},
		{"exclusion dominates include", Criterion{Include: NewTagSet("retired"), Exclude: NewTagSet("retired")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.matches, tt.c.Matches(item))
		})
	}
}

func TestTagSetJSON(t *testing.T) {
	data, err := json.Marshal(NewTagSet("b", "a", "c"))
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b","c"]`, string(data))

	var ts TagSet
	require.NoError(t, json.Unmarshal([]byte(`["x","y","x"]`), &ts))
	assert.True(t, ts.Has("x"))
	assert.True(t, ts.Has("y"))
	assert.Len(t, ts, 2)
}

func TestTagSetString(t *testing.T) {
	assert.Equal(t, "a, b", NewTagSet("b", "a").String())
	assert.Equal(t, "", NewTagSet().String())
}
