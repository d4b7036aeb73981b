package testgen

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadItemBank(t *testing.T) {
	items, err := LoadItemBank(filepath.Join("testdata", "bank.yaml"))
	require.NoError(t, err)
	require.Len(t, items, 8)

	first := items[0]
	assert.Equal(t, "item0001", first.ID)
	assert.Len(t, first.Responses, 4)
	assert.Equal(t, 1, first.Correct)
	assert.True(t, first.Tags.Has("design"))
	assert.True(t, first.Tags.Has("experiments"))
}

func TestParseItemBankInvalidCorrect(t *testing.T) {
	bad := []byte(`
- text: broken
  responses: [a, b]
  correct: 5
  tags: [x]
`)
	_, err := parseItemBank(bad)
	assert.ErrorIs(t, err, ErrInvalidItem)
}

func TestParseItemBankEmptyResponses(t *testing.T) {
	bad := []byte(`
- text: broken
  responses: []
  correct: 0
  tags: [x]
`)
	_, err := parseItemBank(bad)
	assert.ErrorIs(t, err, ErrInvalidItem)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("testdata", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Research Methods Midterm", cfg.Title)
	assert.Equal(t, 20, cfg.MaxTries)
	require.Len(t, cfg.Criteria, 3)

	// Criteria come out in document order, one per include pair, each
	// carrying the shared exclude list.
	assert.Equal(t, NewTagSet("design"), cfg.Criteria[0].Include)
	assert.Equal(t, 2, cfg.Criteria[0].N)
	assert.Equal(t, NewTagSet("measurement"), cfg.Criteria[1].Include)
	assert.Equal(t, 1, cfg.Criteria[1].N)
	assert.Equal(t, NewTagSet("statistics"), cfg.Criteria[2].Include)
	assert.Equal(t, 1, cfg.Criteria[2].N)
	for _, c := range cfg.Criteria {
		assert.Equal(t, NewTagSet("obsolete"), c.Exclude)
	}
}

func TestParseConfigPreservesIncludeOrder(t *testing.T) {
	data := []byte(`
include:
  zeta: 1
  alpha: 2
  mid: 3
`)
	cfg, err := parseConfig(data)
	require.NoError(t, err)
	require.Len(t, cfg.Criteria, 3)
	assert.Equal(t, NewTagSet("zeta"), cfg.Criteria[0].Include)
	assert.Equal(t, NewTagSet("alpha"), cfg.Criteria[1].Include)
	assert.Equal(t, NewTagSet("mid"), cfg.Criteria[2].Include)
}

func TestParseConfigNegativeCount(t *testing.T) {
	data := []byte(`
include:
  design: -1
`)
	_, err := parseConfig(data)
	assert.Error(t, err)
}

func TestParseConfigScalarInclude(t *testing.T) {
	data := []byte(`include: nope`)
	_, err := parseConfig(data)
	assert.Error(t, err)
}

func TestParseConfigEmpty(t *testing.T) {
	cfg, err := parseConfig([]byte(``))
	require.NoError(t, err)
	assert.Empty(t, cfg.Criteria)
}

func TestSaveItemBankRoundTrip(t *testing.T) {
	items, err := LoadItemBank(filepath.Join("testdata", "bank.yaml"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "bank.yaml")
	require.NoError(t, SaveItemBank(path, items))

	reloaded, err := LoadItemBank(path)
	require.NoError(t, err)
	require.Len(t, reloaded, len(items))
	for i := range items {
		assert.Equal(t, items[i].Text, reloaded[i].Text)
		assert.Equal(t, items[i].Responses, reloaded[i].Responses)
		assert.Equal(t, items[i].Correct, reloaded[i].Correct)
		assert.Equal(t, items[i].Tags, reloaded[i].Tags)
	}
}
