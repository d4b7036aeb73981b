package testgen

import (
	"sync"
	"time"
)

// ItemPool manages a queue of tentative drafted items
type ItemPool struct {
	mu    sync.RWMutex
	items map[string]*Item
	queue []string // FIFO queue of item IDs
}

// NewItemPool creates a new item pool
func NewItemPool() *ItemPool {
	return &ItemPool{
		items: make(map[string]*Item),
		queue: make([]string, 0),
	}
}

// Add adds an item to the pool
func (ip *ItemPool) Add(item *Item) {
	ip.mu.Lock()
	defer ip.mu.Unlock()

	item.Status = StatusTentative
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	ip.items[item.ID] = item
	ip.queue = append(ip.queue, item.ID)
}

// Get retrieves the next item from the pool
func (ip *ItemPool) Get() *Item {
	ip.mu.Lock()
	defer ip.mu.Unlock()

	if len(ip.queue) == 0 {
		return nil
	}

	itemID := ip.queue[0]
	ip.queue = ip.queue[1:]

	item := ip.items[itemID]
	delete(ip.items, itemID)

	return item
}

// Remove removes an item from the pool
func (ip *ItemPool) Remove(itemID string) {
	ip.mu.Lock()
	defer ip.mu.Unlock()

	delete(ip.items, itemID)

	// Remove from queue
	for i, id := range ip.queue {
		if id == itemID {
			ip.queue = append(ip.queue[:i], ip.queue[i+1:]...)
			break
		}
	}
}

// Size returns the number of items in the pool
func (ip *ItemPool) Size() int {
	ip.mu.RLock()
	defer ip.mu.RUnlock()
	return len(ip.queue)
}

// IsEmpty returns true if the pool is empty
func (ip *ItemPool) IsEmpty() bool {
	return ip.Size() == 0
}

// GetAll returns all items in the pool (for debugging/logging)
func (ip *ItemPool) GetAll() []*Item {
	ip.mu.RLock()
	defer ip.mu.RUnlock()

	items := make([]*Item, 0, len(ip.items))
	for _, item := range ip.items {
		items = append(items, item)
	}
	return items
}
