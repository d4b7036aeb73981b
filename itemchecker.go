package testgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// maxRevisions caps how often a single item may be sent back for revision.
const maxRevisions = 3

// ItemChecker validates and potentially revises drafted items using GPT-4o
type ItemChecker struct {
	client *openai.Client
}

// NewItemChecker creates a new item checker with OpenAI client
func NewItemChecker(apiKey string) *ItemChecker {
	return &ItemChecker{
		client: openai.NewClient(apiKey),
	}
}

// CheckItem validates a single drafted item and returns the validation result
func (ic *ItemChecker) CheckItem(ctx context.Context, item *Item, logger *DraftLogger) (*ValidationResult, error) {
	VerboseLog("Checking item: %s (revision count: %d)", item.ID, item.RevisionCount)

	// Items that keep coming back for revision get rejected to prevent
	// infinite loops
	if item.RevisionCount >= maxRevisions {
		result := &ValidationResult{
			ItemID: item.ID,
			Action: ActionReject,
			Reason: fmt.Sprintf("Item rejected after %d revision attempts to prevent infinite loop", item.RevisionCount),
		}

		if logger != nil {
			logger.LogItemResult(item.ID, string(result.Action), result.Reason)
		}

		VerboseLog("Item %s: %s - %s", item.ID, result.Action, result.Reason)
		return result, nil
	}

	prompt := ic.buildPrompt(item)

	if logger != nil {
		logger.LogLLMRequest("ItemChecker", prompt)
	}

	resp, err := ic.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an expert test item reviewer. Evaluate multiple choice items for quality, clarity, fairness and correct tagging.",
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
						Name:        "evaluate_item",
						Description: "Evaluate a test item and decide whether to accept, reject, or revise it",
						Parameters: map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"reason": map[string]interface{}{
									"type":        "string",
									"description": "Explanation for the decision",
								},
								"action": map[string]interface{}{
									"type":        "string",
									"enum":        []string{"accept", "reject", "revise"},
									"description": "What to do with this item",
								},
								"revised_item": map[string]interface{}{
									"type": "object",
									"properties": map[string]interface{}{
										"text": map[string]interface{}{
											"type":        "string",
											"description": "The revised question text",
										},
										"responses": map[string]interface{}{
											"type": "array",
											"items": map[string]interface{}{
												"type": "string",
											},
											"description": "Array of 4 multiple choice responses",
										},
										"correct": map[string]interface{}{
											"type":        "integer",
											"description": "0-based index of the correct response",
										},
										"explanation": map[string]interface{}{
											"type":        "string",
											"description": "Brief explanation of why the answer is correct",
										},
										"tags": map[string]interface{}{
											"type": "array",
											"items": map[string]interface{}{
												"type": "string",
											},
											"description": "Content tags for the revised item",
										},
									},
									"description": "Revised item (only if action is 'revise')",
								},
							},
							"required": []string{"reason", "action"},
						},
					},
				},
			},
			ToolChoice: openai.ToolChoice{
				Type: openai.ToolTypeFunction,
				Function: openai.ToolFunction{
					Name: "evaluate_item",
				},
			},
		},
	)

	if err != nil {
		return nil, fmt.Errorf("failed to check item: %w", err)
	}

	if logger != nil {
		responseText := ""
		if len(resp.Choices) > 0 && len(resp.Choices[0].Message.ToolCalls) > 0 {
			responseText = resp.Choices[0].Message.ToolCalls[0].Function.Arguments
		}
		logger.LogLLMResponse("ItemChecker", responseText)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from GPT-4o")
	}

	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return nil, fmt.Errorf("no tool calls in response")
	}

	toolCall := choice.Message.ToolCalls[0]
	if toolCall.Function.Name != "evaluate_item" {
		return nil, fmt.Errorf("unexpected tool call: %s", toolCall.Function.Name)
	}

	var toolArgs struct {
		Reason      string `json:"reason"`
		Action      string `json:"action"`
		RevisedItem *struct {
			Text        string   `json:"text"`
			Responses   []string `json:"responses"`
			Correct     int      `json:"correct"`
			Explanation string   `json:"explanation"`
			Tags        []string `json:"tags"`
		} `json:"revised_item,omitempty"`
	}

	if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &toolArgs); err != nil {
		return nil, fmt.Errorf("failed to parse tool arguments: %w", err)
	}

	result := &ValidationResult{
		ItemID: item.ID,
		Action: ValidationAction(toolArgs.Action),
		Reason: toolArgs.Reason,
	}

	if toolArgs.Action == "revise" && toolArgs.RevisedItem != nil {
		tags := NewTagSet(toolArgs.RevisedItem.Tags...)
		if len(tags) == 0 {
			tags = item.Tags
		}
		revised := &Item{
			ID:            item.ID, // Keep same ID
			Text:          toolArgs.RevisedItem.Text,
			Responses:     toolArgs.RevisedItem.Responses,
			Correct:       toolArgs.RevisedItem.Correct,
			Explanation:   toolArgs.RevisedItem.Explanation,
			Tags:          tags,
			Topic:         item.Topic,
			Status:        StatusRevised,
			RevisionCount: item.RevisionCount + 1, // Increment revision counter
		}
		result.RevisedItem = revised
	}

	if logger != nil {
		logger.LogItemResult(item.ID, string(result.Action), result.Reason)
	}

	VerboseLog("Item %s: %s - %s", item.ID, result.Action, result.Reason)
	return result, nil
}

func (ic *ItemChecker) buildPrompt(item *Item) string {
	var sb strings.Builder

	sb.WriteString("Evaluate the following test item:\n\n")
	sb.WriteString(fmt.Sprintf("Topic: %s\n", item.Topic))
	sb.WriteString(fmt.Sprintf("Tags: %s\n\n", item.Tags))
	sb.WriteString(fmt.Sprintf("Question: %s\n\n", item.Text))

	sb.WriteString("Responses:\n")
	for i, resp := range item.Responses {
		marker := " "
		if i == item.Correct {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("%s%d. %s\n", marker, i+1, resp))
	}

	sb.WriteString(fmt.Sprintf("\nCorrect Answer: %d\n", item.Correct+1))
	sb.WriteString(fmt.Sprintf("Explanation: %s\n\n", item.Explanation))

	sb.WriteString("CRITICAL EVALUATION CRITERIA:\n")
	sb.WriteString("AUTOMATIC REJECTION: If the correct answer appears in the question text, REJECT immediately or REVISE to improve it.\n")
	sb.WriteString("AUTOMATIC REJECTION: If the question text contains obvious clues that give away the answer, REJECT immediately or REVISE to improve it.\n")
	sb.WriteString("AUTOMATIC REJECTION: If the item is not relevant to the topic or its tags, REJECT immediately.\n\n")

	sb.WriteString("Additional evaluation criteria:\n")
	sb.WriteString("1. Is the item relevant to the topic and correctly tagged?\n")
	sb.WriteString("2. Is the question clear and unambiguous?\n")
	sb.WriteString("3. Is the correct answer actually correct?\n")
	sb.WriteString("4. Are all incorrect responses plausible but clearly wrong?\n")
	sb.WriteString("5. Does the item test understanding rather than just memorization?\n")
	sb.WriteString("6. Does the explanation provide meaningful context or reasoning for WHY the answer is correct?\n\n")

	sb.WriteString("Decision guidelines:\n")
	sb.WriteString("- REJECT: The item has fundamental problems (especially if the answer is in the question text, or the item does not fit its tags)\n")
	sb.WriteString("- REVISE: The item has potential but needs improvements\n")
	sb.WriteString("- ACCEPT: The item is good as-is (only if it passes all criteria)\n\n")

	sb.WriteString("Only revise explanations if they are spectacularly bad (completely wrong information, or no explanation at all).\n")
	sb.WriteString("For mediocre or basic explanations, ACCEPT the item rather than rejecting it.\n")
	sb.WriteString("If you choose to revise, provide a complete revised version of the item.")

	return sb.String()
}
