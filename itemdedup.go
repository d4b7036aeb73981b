package testgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ItemDedup checks for duplicate items using GPT-4o
type ItemDedup struct {
	client *openai.Client
	cache  map[string]*Item // Cache of accepted items by ID
}

// NewItemDedup creates a new item deduplicator. Existing bank items can
// be seeded into the cache so drafts are compared against the whole bank.
func NewItemDedup(apiKey string) *ItemDedup {
	return &ItemDedup{
		client: openai.NewClient(apiKey),
		cache:  make(map[string]*Item),
	}
}

// Seed preloads the dedup cache with already-accepted bank items
func (id *ItemDedup) Seed(items []Item) {
	for i := range items {
		id.cache[items[i].ID] = &items[i]
	}
}

// DedupResult represents the result of deduplication
type DedupResult struct {
	IsDuplicate bool   `json:"is_duplicate"`
	Reason      string `json:"reason"`
	DuplicateID string `json:"duplicate_id,omitempty"` // ID of the duplicate item if found
}

// CheckDuplicate checks if an item duplicates any previously accepted item
func (id *ItemDedup) CheckDuplicate(ctx context.Context, item *Item, logger *DraftLogger) (*DedupResult, error) {
	if len(id.cache) == 0 {
		// First item, always accept
		id.cache[item.ID] = item
		return &DedupResult{IsDuplicate: false, Reason: "First item"}, nil
	}

	VerboseLog("Checking for duplicates: %s", item.ID)

	// Build context of existing items
	var existing strings.Builder
	existing.WriteString("Existing accepted items:\n\n")
	for cachedID, cached := range id.cache {
		existing.WriteString(fmt.Sprintf("ID: %s\n", cachedID))
		writeItemSummary(&existing, cached)
	}

	var candidate strings.Builder
	candidate.WriteString("New item to check:\n\n")
	candidate.WriteString(fmt.Sprintf("ID: %s\n", item.ID))
	writeItemSummary(&candidate, item)

	prompt := existing.String() + candidate.String() + id.buildEvaluationCriteria()

	if logger != nil {
		logger.LogLLMRequest("ItemDedup", prompt)
	}

	resp, err := id.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an expert at detecting duplicate test items. Compare the new item against existing items and determine if it's a duplicate.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Tools: []openai.Tool{
				{
					Type: openai.ToolTypeFunction,
					Function: &openai.FunctionDefinition{
						Name:        "check_duplicate",
						Description: "Check if the new item is a duplicate of any existing item",
						Parameters: map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"reason": map[string]interface{}{
									"type":        "string",
									"description": "Explanation for the decision",
								},
								"is_duplicate": map[string]interface{}{
									"type":        "boolean",
									"description": "Whether the new item is a duplicate",
								},
								"duplicate_id": map[string]interface{}{
									"type":        "string",
									"description": "ID of the duplicate item if found (empty if not a duplicate)",
								},
							},
							"required": []string{"reason", "is_duplicate"},
						},
					},
				},
			},
			ToolChoice: openai.ToolChoice{
				Type: openai.ToolTypeFunction,
				Function: openai.ToolFunction{
					Name: "check_duplicate",
				},
			},
		},
	)

	if err != nil {
		return nil, fmt.Errorf("failed to check duplicate: %w", err)
	}

	if logger != nil {
		responseText := ""
		if len(resp.Choices) > 0 && len(resp.Choices[0].Message.ToolCalls) > 0 {
			responseText = resp.Choices[0].Message.ToolCalls[0].Function.Arguments
		}
		logger.LogLLMResponse("ItemDedup", responseText)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from GPT-4o")
	}

	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return nil, fmt.Errorf("no tool calls in response")
	}

	toolCall := choice.Message.ToolCalls[0]
	if toolCall.Function.Name != "check_duplicate" {
		return nil, fmt.Errorf("unexpected tool call: %s", toolCall.Function.Name)
	}

	var toolArgs struct {
		Reason      string `json:"reason"`
		IsDuplicate bool   `json:"is_duplicate"`
		DuplicateID string `json:"duplicate_id"`
	}

	if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &toolArgs); err != nil {
		return nil, fmt.Errorf("failed to parse tool arguments: %w", err)
	}

	result := &DedupResult{
		IsDuplicate: toolArgs.IsDuplicate,
		Reason:      toolArgs.Reason,
		DuplicateID: toolArgs.DuplicateID,
	}

	// If not a duplicate, add to cache
	if !result.IsDuplicate {
		id.cache[item.ID] = item
	}

	if logger != nil {
		logger.LogDedupResult(item.ID, result.IsDuplicate, result.Reason, result.DuplicateID)
	}

	VerboseLog("Item %s: duplicate=%v, reason=%s", item.ID, result.IsDuplicate, result.Reason)
	return result, nil
}

func writeItemSummary(sb *strings.Builder, item *Item) {
	sb.WriteString(fmt.Sprintf("Question: %s\n", item.Text))
	sb.WriteString("Responses:\n")
	for i, resp := range item.Responses {
		marker := " "
		if i == item.Correct {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("%s%d. %s\n", marker, i+1, resp))
	}
	sb.WriteString(fmt.Sprintf("Correct Answer: %d\n", item.Correct+1))
	sb.WriteString(fmt.Sprintf("Tags: %s\n\n", item.Tags))
}

func (id *ItemDedup) buildEvaluationCriteria() string {
	return `Evaluation criteria for duplicates:

1. EXACT DUPLICATES: Same question text, same responses, same correct answer
2. NEAR-DUPLICATES:
   - Same concept tested but different wording
   - Same question with minor rephrasing
   - Same topic with very similar answer choices
   - Items that test the same knowledge point
3. NOT DUPLICATES:
   - Different aspects of the same topic
   - Different difficulty levels
   - Different approaches to testing knowledge
   - Items that test related but distinct concepts

Consider both the question text and the responses when determining duplicates.
If the new item is a duplicate, provide the ID of the existing item it duplicates.

Decide whether the new item is a duplicate of any existing item.`
}
