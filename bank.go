package testgen

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// itemRecord is the YAML shape of one bank entry.
type itemRecord struct {
	Text        string   `yaml:"text"`
	Responses   []string `yaml:"responses"`
	Correct     int      `yaml:"correct"`
	Tags        []string `yaml:"tags"`
	Explanation string   `yaml:"explanation,omitempty"`
	Topic       string   `yaml:"topic,omitempty"`
}

// LoadItemBank reads a YAML item bank file and returns the validated
// items. IDs are assigned by position so two textually identical items
// stay distinguishable.
func LoadItemBank(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read item bank: %w", err)
	}
	items, err := parseItemBank(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load item bank %s: %w", path, err)
	}
	return items, nil
}

func parseItemBank(data []byte) ([]Item, error) {
	var records []itemRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse item bank: %w", err)
	}
	items := make([]Item, 0, len(records))
	for i, rec := range records {
		item := Item{
			ID:          fmt.Sprintf("item%04d", i+1),
			Text:        rec.Text,
			Responses:   rec.Responses,
			Correct:     rec.Correct,
			Explanation: rec.Explanation,
			Tags:        NewTagSet(rec.Tags...),
			Topic:       rec.Topic,
		}
		if err := item.Validate(); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// SaveItemBank writes items back out as a YAML bank file.
func SaveItemBank(path string, items []Item) error {
	records := make([]itemRecord, 0, len(items))
	for _, item := range items {
		records = append(records, itemRecord{
			Text:        item.Text,
			Responses:   item.Responses,
			Correct:     item.Correct,
			Tags:        item.Tags.Sorted(),
			Explanation: item.Explanation,
			Topic:       item.Topic,
		})
	}
	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal item bank: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write item bank: %w", err)
	}
	return nil
}

// Config is a parsed assembly configuration: the ordered quota criteria
// plus optional presentation settings.
type Config struct {
	Title    string
	MaxTries int
	Criteria []Criterion
}

// LoadConfig reads a YAML assembly configuration. The include mapping
// associates a tag with the number of items to draw for it; each pair
// becomes one criterion, in document order, sharing the configuration's
// exclude list. Document order matters: earlier criteria claim items
// from the pool first.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := parseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return cfg, nil
}

func parseConfig(data []byte) (*Config, error) {
	var doc struct {
		Title    string    `yaml:"title"`
		MaxTries int       `yaml:"max_tries"`
		Include  yaml.Node `yaml:"include"`
		Exclude  []string  `yaml:"exclude"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg := &Config{
		Title:    doc.Title,
		MaxTries: doc.MaxTries,
	}
	exclude := NewTagSet(doc.Exclude...)
	if doc.Include.Kind == 0 {
		return cfg, nil
	}
	if doc.Include.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("config include must be a mapping of tag to count")
	}
	// A yaml mapping node holds its keys and values interleaved, in
	// document order. Go maps would randomize criterion order, which is
	// meaningful here.
	for i := 0; i+1 < len(doc.Include.Content); i += 2 {
		keyNode, valNode := doc.Include.Content[i], doc.Include.Content[i+1]
		var n int
		if err := valNode.Decode(&n); err != nil {
			return nil, fmt.Errorf("invalid count for tag %q: %w", keyNode.Value, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("negative count %d for tag %q", n, keyNode.Value)
		}
		cfg.Criteria = append(cfg.Criteria, Criterion{
			Include: NewTagSet(keyNode.Value),
			Exclude: exclude,
			N:       n,
		})
	}
	return cfg, nil
}
