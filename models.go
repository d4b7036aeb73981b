package testgen

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidItem reports a malformed item record: an empty response list
// or a correct-answer index outside the response list.
var ErrInvalidItem = errors.New("invalid item")

// Item represents a single multiple choice question: the question text,
// the ordered response options, the index of the correct response and the
// content tags used for balancing. Items are constructed once when a bank
// is loaded and never modified by the sampler.
type Item struct {
	ID            string     `json:"id"`
	Text          string     `json:"text"`
	Responses     []string   `json:"responses"`
	Correct       int        `json:"correct"` // 0-based index into Responses
	Explanation   string     `json:"explanation,omitempty"`
	Tags          TagSet     `json:"tags"`
	Topic         string     `json:"topic,omitempty"`
	CreatedAt     time.Time  `json:"created_at,omitempty"`
	Status        ItemStatus `json:"status,omitempty"`
	RevisionCount int        `json:"revision_count,omitempty"`
}

// HasTags reports whether the item carries every tag in the given set.
// An empty set is always satisfied.
func (it Item) HasTags(tags TagSet) bool {
	return it.Tags.HasAll(tags)
}

// Validate checks the structural invariants of an item record.
func (it Item) Validate() error {
	if len(it.Responses) == 0 {
		return fmt.Errorf("item %q has no responses: %w", it.ID, ErrInvalidItem)
	}
	if it.Correct < 0 || it.Correct >= len(it.Responses) {
		return fmt.Errorf("item %q correct index %d out of range for %d responses: %w",
			it.ID, it.Correct, len(it.Responses), ErrInvalidItem)
	}
	return nil
}

// ItemStatus represents the state of an item in the drafting pipeline
type ItemStatus string

const (
	StatusTentative ItemStatus = "tentative"
	StatusAccepted  ItemStatus = "accepted"
	StatusRejected  ItemStatus = "rejected"
	StatusRevised   ItemStatus = "revised"
)

// Criterion is a single quota rule: how many items to draw and which tags
// an item must carry (Include) or must not fully carry (Exclude) to be
// eligible. Criteria are processed in order; earlier criteria claim items
// from the shared pool first.
type Criterion struct {
	Include TagSet `json:"include"`
	Exclude TagSet `json:"exclude"`
	N       int    `json:"n"`
}

// Matches reports whether the item can count toward the criterion. An
// item matches when it carries every include tag and does not carry every
// exclude tag; an empty exclude set excludes nothing. When an item
// carries both the include tags and all of a non-empty exclude set,
// exclusion wins.
func (c Criterion) Matches(it Item) bool {
	if !it.HasTags(c.Include) {
		return false
	}
	return len(c.Exclude) == 0 || !it.HasTags(c.Exclude)
}

// Test represents an assembled test instrument
type Test struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Items      []Item    `json:"items"`
	CreatedAt  time.Time `json:"created_at"`
	TotalItems int       `json:"total_items"`
}

// ValidationResult represents the result of checking a drafted item
type ValidationResult struct {
	ItemID      string           `json:"item_id"`
	Action      ValidationAction `json:"action"`
	Reason      string           `json:"reason"`
	RevisedItem *Item            `json:"revised_item,omitempty"`
}

// ValidationAction represents what the checker decided to do
type ValidationAction string

const (
	ActionAccept ValidationAction = "accept"
	ActionReject ValidationAction = "reject"
	ActionRevise ValidationAction = "revise"
)

// DraftRequest represents a request to draft new bank items
type DraftRequest struct {
	Topic          string   `json:"topic"`
	NumItems       int      `json:"num_items"`
	Tags           []string `json:"tags"`
	SourceMaterial string   `json:"source_material,omitempty"`
	Difficulty     string   `json:"difficulty,omitempty"`
}
