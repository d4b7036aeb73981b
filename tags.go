package testgen

import (
	"encoding/json"
	"sort"
	"strings"
)

// TagSet is an unordered set of content tags.
type TagSet map[string]struct{}

// NewTagSet builds a tag set from a list of tags. Duplicates collapse.
func NewTagSet(tags ...string) TagSet {
	ts := make(TagSet, len(tags))
	for _, tag := range tags {
		ts[tag] = struct{}{}
	}
	return ts
}

// Has reports whether the set contains the given tag.
func (ts TagSet) Has(tag string) bool {
	_, ok := ts[tag]
	return ok
}

// HasAll reports whether the set is a superset of other. An empty other
// is always satisfied.
func (ts TagSet) HasAll(other TagSet) bool {
	for tag := range other {
		if !ts.Has(tag) {
			return false
		}
	}
	return true
}

// Add inserts a tag into the set.
func (ts TagSet) Add(tag string) {
	ts[tag] = struct{}{}
}

// Sorted returns the tags in lexical order.
func (ts TagSet) Sorted() []string {
	tags := make([]string, 0, len(ts))
	for tag := range ts {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// String renders the set as a comma-separated list, for logs and display.
func (ts TagSet) String() string {
	return strings.Join(ts.Sorted(), ", ")
}

// MarshalJSON encodes the set as a sorted JSON array.
func (ts TagSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.Sorted())
}

// UnmarshalJSON decodes a JSON array of tags.
func (ts *TagSet) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	*ts = NewTagSet(tags...)
	return nil
}
