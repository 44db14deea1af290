package model

import (
	"strconv"
	"strings"
)

// Order is the upstream commerce platform's order object, read-only to this
// system except for its note attributes, which carry attendance markers.
type Order struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Tags           string          `json:"tags"`
	LineItems      []LineItem      `json:"line_items"`
	NoteAttributes []NoteAttribute `json:"note_attributes"`
}

type LineItem struct {
	SKU        string     `json:"sku"`
	Quantity   int        `json:"quantity"`
	Properties []Property `json:"properties"`
}

// Property is one entry of a line item's key/value bag. The bag is
// order-preserving and its schema is owned by however the listing was
// configured upstream, not by this system.
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type NoteAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (o *Order) Ref() string {
	return strconv.FormatInt(o.ID, 10)
}

// TagList splits the upstream comma-joined tag string into trimmed tags.
func (o *Order) TagList() []string {
	parts := strings.Split(o.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func (o *Order) HasTag(tag string) bool {
	for _, t := range o.TagList() {
		if t == tag {
			return true
		}
	}
	return false
}

// PropertyValue looks up a property by exact name, case-insensitively.
// Returns the first match in bag order.
func (li *LineItem) PropertyValue(name string) (string, bool) {
	for _, p := range li.Properties {
		if strings.EqualFold(p.Name, name) {
			return p.Value, true
		}
	}
	return "", false
}

// PropertyContaining returns the value of the first property whose lowercased
// name contains the given lowercase substring.
func (li *LineItem) PropertyContaining(substr string) (string, bool) {
	for _, p := range li.Properties {
		if strings.Contains(strings.ToLower(p.Name), substr) {
			return p.Value, true
		}
	}
	return "", false
}
