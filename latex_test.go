package testgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemLaTeX(t *testing.T) {
	item := Item{
		Text:      "What is the capital of France?",
		Responses: []string{"London", "Paris", "Berlin"},
		Correct:   1,
	}

	tex := item.LaTeX()
	assert.Contains(t, tex, "\\question What is the capital of France?")
	assert.Contains(t, tex, "\\begin{choices}")
	assert.Contains(t, tex, "\\end{choices}")
	assert.Contains(t, tex, "\\choice London")
	assert.Contains(t, tex, "\\CorrectChoice Paris")
	assert.Contains(t, tex, "\\choice Berlin")
	assert.Equal(t, 1, strings.Count(tex, "\\CorrectChoice"))
	assert.Equal(t, 2, strings.Count(tex, "\\choice "))
}

func TestRenderDocument(t *testing.T) {
	items := []Item{
		{Text: "First?", Responses: []string{"a", "b"}, Correct: 0},
		{Text: "Second?", Responses: []string{"c", "d"}, Correct: 1},
	}

	doc, err := RenderDocument(items, "Midterm", false)
	require.NoError(t, err)
	assert.Contains(t, doc, "\\documentclass{exam}")
	assert.NotContains(t, doc, "[answers]")
	assert.Contains(t, doc, "\\textbf{Midterm}")
	assert.Contains(t, doc, "\\begin{questions}")
	assert.Contains(t, doc, "\\end{questions}")
	assert.Contains(t, doc, "\\question First?")
	assert.Contains(t, doc, "\\question Second?")

	key, err := RenderDocument(items, "Midterm", true)
	require.NoError(t, err)
	assert.Contains(t, key, "\\documentclass[answers]{exam}")
}

func TestRenderDocumentDefaultTitle(t *testing.T) {
	doc, err := RenderDocument(nil, "", false)
	require.NoError(t, err)
	assert.Contains(t, doc, DefaultTitle)
}
