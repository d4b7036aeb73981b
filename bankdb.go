package testgen

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// BankDB represents an item bank database connection
type BankDB struct {
	db *sql.DB
}

// OpenBankDB opens a new bank database connection
func OpenBankDB(dbPath string) (*BankDB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &BankDB{db: db}, nil
}

// Close closes the database connection
func (b *BankDB) Close() error {
	return b.db.Close()
}

// CreateTables creates the necessary tables if they don't exist
func (b *BankDB) CreateTables() error {
	query := `CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		responses TEXT NOT NULL,
		correct INTEGER NOT NULL,
		explanation TEXT,
		tags TEXT NOT NULL,
		topic TEXT,
		created_at DATETIME NOT NULL
	)`
	if _, err := b.db.Exec(query); err != nil {
		return fmt.Errorf("failed to execute %s: %w", query, err)
	}
	return nil
}

// InsertItem stores a validated item in the bank
func (b *BankDB) InsertItem(item Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	responsesJSON, err := ResponsesToJSON(item.Responses)
	if err != nil {
		return err
	}
	tagsJSON, err := TagsToJSON(item.Tags)
	if err != nil {
		return err
	}
	createdAt := item.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err = b.db.Exec(
		"INSERT INTO items (id, text, responses, correct, explanation, tags, topic, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		item.ID, item.Text, responsesJSON, item.Correct, item.Explanation, tagsJSON, item.Topic, createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

// ImportItems stores a batch of items in the bank
func (b *BankDB) ImportItems(items []Item) error {
	for _, item := range items {
		if err := b.InsertItem(item); err != nil {
			return err
		}
	}
	return nil
}

// GetItem retrieves an item by ID
func (b *BankDB) GetItem(id string) (*Item, error) {
	row := b.db.QueryRow(
		"SELECT id, text, responses, correct, explanation, tags, topic, created_at FROM items WHERE id = ?",
		id,
	)
	item, err := scanItem(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("item not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// GetItems retrieves every item in the bank, in insertion order
func (b *BankDB) GetItems() ([]Item, error) {
	return b.queryItems(
		"SELECT id, text, responses, correct, explanation, tags, topic, created_at FROM items ORDER BY created_at, id")
}

// GetItemsByTag retrieves every item carrying the given tag
func (b *BankDB) GetItemsByTag(tag string) ([]Item, error) {
	items, err := b.GetItems()
	if err != nil {
		return nil, err
	}
	var tagged []Item
	for _, item := range items {
		if item.Tags.Has(tag) {
			tagged = append(tagged, item)
		}
	}
	return tagged, nil
}

// CountItems returns the number of items in the bank
func (b *BankDB) CountItems() (int, error) {
	var count int
	if err := b.db.QueryRow("SELECT COUNT(*) FROM items").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

// TagCounts returns how many items carry each tag
func (b *BankDB) TagCounts() (map[string]int, error) {
	items, err := b.GetItems()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, item := range items {
		for tag := range item.Tags {
			counts[tag]++
		}
	}
	return counts, nil
}

func (b *BankDB) queryItems(query string, args ...interface{}) ([]Item, error) {
	rows, err := b.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*Item, error) {
	var item Item
	var responsesJSON, tagsJSON string
	err := row.Scan(&item.ID, &item.Text, &responsesJSON, &item.Correct,
		&item.Explanation, &tagsJSON, &item.Topic, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	if item.Responses, err = JSONToResponses(responsesJSON); err != nil {
		return nil, err
	}
	if item.Tags, err = JSONToTags(tagsJSON); err != nil {
		return nil, err
	}
	return &item, nil
}

// Helper function to convert responses slice to JSON string
func ResponsesToJSON(responses []string) (string, error) {
	data, err := json.Marshal(responses)
	if err != nil {
		return "", fmt.Errorf("failed to marshal responses: %w", err)
	}
	return string(data), nil
}

// Helper function to convert JSON string to responses slice
func JSONToResponses(responsesJSON string) ([]string, error) {
	var responses []string
	err := json.Unmarshal([]byte(responsesJSON), &responses)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal responses: %w", err)
	}
	return responses, nil
}

// Helper function to convert a tag set to a JSON string
func TagsToJSON(tags TagSet) (string, error) {
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tags: %w", err)
	}
	return string(data), nil
}

// Helper function to convert a JSON string to a tag set
func JSONToTags(tagsJSON string) (TagSet, error) {
	var tags TagSet
	err := json.Unmarshal([]byte(tagsJSON), &tags)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
	}
	return tags, nil
}
