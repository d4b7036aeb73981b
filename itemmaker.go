package testgen

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ItemMaker drafts tagged bank items using GPT-4o
type ItemMaker struct {
	client *openai.Client
}

// NewItemMaker creates a new item maker with OpenAI client
func NewItemMaker(apiKey string) *ItemMaker {
	return &ItemMaker{
		client: openai.NewClient(apiKey),
	}
}

// GenerateItems drafts a batch of candidate items for the given topic and
// tag vocabulary. Drafted items are tentative until the checker accepts
// them.
func (im *ItemMaker) GenerateItems(ctx context.Context, req DraftRequest, batchSize int, logger *DraftLogger) ([]*Item, error) {
	log.Printf("Drafting %d items for topic: %s", batchSize, req.Topic)

	prompt := im.buildPrompt(req, batchSize)

	if logger != nil {
		logger.LogLLMRequest("ItemMaker", prompt)
	}

	resp, err := im.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an expert test item writer. Draft high-quality multiple choice items with exactly 4 responses each, and classify every item with content tags from the provided vocabulary.",
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
						Name:        "submit_items",
						Description: "Submit drafted test items",
						Parameters: map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"items": map[string]interface{}{
									"type": "array",
									"items": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"text": map[string]interface{}{
												"type":        "string",
												"description": "The question text",
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
												"description": "Content tags from the provided vocabulary",
											},
										},
										"required": []string{"text", "responses", "correct", "explanation", "tags"},
									},
								},
							},
							"required": []string{"items"},
						},
					},
				},
			},
			ToolChoice: openai.ToolChoice{
				Type: openai.ToolTypeFunction,
				Function: openai.ToolFunction{
					Name: "submit_items",
				},
			},
		},
	)

	if err != nil {
		return nil, fmt.Errorf("failed to draft items: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from GPT-4o")
	}

	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return nil, fmt.Errorf("no tool calls in response")
	}

	toolCall := choice.Message.ToolCalls[0]
	if toolCall.Function.Name != "submit_items" {
		return nil, fmt.Errorf("unexpected tool call: %s", toolCall.Function.Name)
	}

	if logger != nil {
		logger.LogLLMResponse("ItemMaker", toolCall.Function.Arguments)
	}

	var toolArgs struct {
		Items []struct {
			Text        string   `json:"text"`
			Responses   []string `json:"responses"`
			Correct     int      `json:"correct"`
			Explanation string   `json:"explanation"`
			Tags        []string `json:"tags"`
		} `json:"items"`
	}

	if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &toolArgs); err != nil {
		return nil, fmt.Errorf("failed to parse tool arguments: %w", err)
	}

	items := make([]*Item, 0, len(toolArgs.Items))
	for _, rec := range toolArgs.Items {
		item := &Item{
			ID:          generateItemID(),
			Text:        rec.Text,
			Responses:   rec.Responses,
			Correct:     rec.Correct,
			Explanation: rec.Explanation,
			Tags:        NewTagSet(rec.Tags...),
			Topic:       req.Topic,
			Status:      StatusTentative,
		}
		if err := item.Validate(); err != nil {
			log.Printf("Discarding malformed drafted item: %v", err)
			continue
		}
		items = append(items, item)
	}

	log.Printf("Drafted %d items", len(items))
	return items, nil
}

func (im *ItemMaker) buildPrompt(req DraftRequest, batchSize int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Draft %d multiple choice test items about: %s\n\n", batchSize, req.Topic))

	if len(req.Tags) > 0 {
		sb.WriteString("Tag vocabulary (assign one or more of these tags to every item):\n")
		for _, tag := range req.Tags {
			sb.WriteString(fmt.Sprintf("- %s\n", tag))
		}
		sb.WriteString("\n")
	}

	if req.SourceMaterial != "" {
		sb.WriteString("Use the following source material as reference:\n")
		sb.WriteString(req.SourceMaterial)
		sb.WriteString("\n\n")
	}

	if req.Difficulty != "" {
		sb.WriteString(fmt.Sprintf("Difficulty level: %s\n\n", req.Difficulty))
	}

	sb.WriteString("Requirements:\n")
	sb.WriteString("- Each item must have exactly 4 multiple choice responses\n")
	sb.WriteString("- The correct answer should be non-obvious but clearly correct\n")
	sb.WriteString("- Incorrect responses should be plausible but clearly wrong\n")
	sb.WriteString("- Items should test understanding, not just memorization\n")
	sb.WriteString("- Avoid items where the answer is given away in the question text\n")
	sb.WriteString("- Tag every item only with tags from the provided vocabulary\n")
	sb.WriteString("- Provide a brief explanation for why the correct answer is right\n")
	sb.WriteString("- Use the submit_items tool to return your items\n")

	return sb.String()
}

func generateItemID() string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 8)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
