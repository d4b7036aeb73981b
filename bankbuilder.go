package testgen

import (
	"context"
	"fmt"
	"log"
)

// BankBuilder orchestrates the drafting and validation of new bank items
type BankBuilder struct {
	maker   *ItemMaker
	checker *ItemChecker
	dedup   *ItemDedup
	pool    *ItemPool
	logger  *DraftLogger
}

// NewBankBuilder creates a new bank builder
func NewBankBuilder(apiKey string) *BankBuilder {
	return &BankBuilder{
		maker:   NewItemMaker(apiKey),
		checker: NewItemChecker(apiKey),
		dedup:   NewItemDedup(apiKey),
		pool:    NewItemPool(),
	}
}

// SetLogger attaches a draft logger recording all LLM traffic for the run
func (bb *BankBuilder) SetLogger(logger *DraftLogger) {
	bb.logger = logger
}

// SeedExisting preloads the deduplicator with items already in the bank,
// so new drafts do not repeat them.
func (bb *BankBuilder) SeedExisting(items []Item) {
	bb.dedup.Seed(items)
}

// BuildItems drafts items until the requested number has been accepted
func (bb *BankBuilder) BuildItems(ctx context.Context, req DraftRequest) ([]Item, error) {
	log.Printf("Starting item drafting for topic: %s, target items: %d", req.Topic, req.NumItems)

	accepted := make([]Item, 0, req.NumItems)
	batchSize := 5 // Draft items in batches

	// Keep drafting until we have enough accepted items
	for len(accepted) < req.NumItems {
		// Draft new items if the pool is empty
		if bb.pool.IsEmpty() {
			log.Printf("Pool is empty, drafting new batch of %d items", batchSize)
			items, err := bb.maker.GenerateItems(ctx, req, batchSize, bb.logger)
			if err != nil {
				return nil, fmt.Errorf("failed to draft items: %w", err)
			}

			for _, item := range items {
				bb.pool.Add(item)
			}

			log.Printf("Added %d items to pool", len(items))
		}

		// Process items from the pool
		processed := bb.processPool(ctx)
		accepted = append(accepted, processed.accepted...)

		log.Printf("Processed %d items: %d accepted, %d rejected, %d revised",
			len(processed.accepted)+len(processed.rejected)+len(processed.revised),
			len(processed.accepted), len(processed.rejected), len(processed.revised))

		// If we're not making progress, increase the batch size
		if len(processed.accepted) == 0 && len(processed.rejected) > 0 {
			if batchSize < 10 {
				batchSize += 2
			}
			log.Printf("No items accepted, increasing batch size to %d", batchSize)
		}
	}

	accepted = accepted[:req.NumItems]
	log.Printf("Item drafting complete: %d items for topic '%s'", len(accepted), req.Topic)
	return accepted, nil
}

// processResult holds the results of processing items from the pool
type processResult struct {
	accepted []Item
	rejected []Item
	revised  []Item
}

// processPool processes all items currently in the pool
func (bb *BankBuilder) processPool(ctx context.Context) processResult {
	result := processResult{}

	for !bb.pool.IsEmpty() {
		item := bb.pool.Get()
		if item == nil {
			break
		}

		validation, err := bb.checker.CheckItem(ctx, item, bb.logger)
		if err != nil {
			log.Printf("Error checking item %s: %v", item.ID, err)
			// Put it back in the pool for retry
			bb.pool.Add(item)
			continue
		}

		switch validation.Action {
		case ActionAccept:
			dedup, err := bb.dedup.CheckDuplicate(ctx, item, bb.logger)
			if err != nil {
				log.Printf("Error deduplicating item %s: %v", item.ID, err)
				bb.pool.Add(item)
				continue
			}
			if dedup.IsDuplicate {
				item.Status = StatusRejected
				result.rejected = append(result.rejected, *item)
				continue
			}
			item.Status = StatusAccepted
			result.accepted = append(result.accepted, *item)

		case ActionReject:
			item.Status = StatusRejected
			result.rejected = append(result.rejected, *item)

		case ActionRevise:
			if validation.RevisedItem != nil {
				// Put the revised item back in the pool
				bb.pool.Add(validation.RevisedItem)
				result.revised = append(result.revised, *validation.RevisedItem)
			} else {
				// No revision provided, reject
				item.Status = StatusRejected
				result.rejected = append(result.rejected, *item)
			}
		}
	}

	return result
}
