package export

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matzehuels/graphmap/pkg/graph"
)

// NameEntry is one search index row, encoded as [label, x, y, id].
type NameEntry struct {
	Label string
	X, Y  float64
	ID    string
}

// MarshalJSON encodes the entry as a four-element array.
func (e NameEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Label, e.X, e.Y, e.ID})
}

// UnmarshalJSON decodes a four-element array.
func (e *NameEntry) UnmarshalJSON(data []byte) error {
	var row []any
	if err := json.Unmarshal(data, &row); err != nil {
		return err
	}
	if len(row) != 4 {
		return fmt.Errorf("name entry: want 4 elements, got %d", len(row))
	}
	e.Label, _ = row[0].(string)
	e.X, _ = row[1].(float64)
	e.Y, _ = row[2].(float64)
	e.ID, _ = row[3].(string)
	return nil
}

// SearchIndex groups nodes by the lower-cased first letter of their label.
// The label comes from the "label" property, falling back to the node id.
// Entries keep node order within a group.
func SearchIndex(m graph.Map) map[string][]NameEntry {
	idx := make(map[string][]NameEntry)
	for _, n := range m.Nodes {
		label, _ := n.Props["label"].(string)
		if label == "" {
			label = n.ID
		}
		key := indexKey(label)
		if key == "" {
			continue
		}
		idx[key] = append(idx[key], NameEntry{Label: label, X: n.X, Y: n.Y, ID: n.ID})
	}
	return idx
}

// IndexKeys returns the keys of idx in sorted order.
func IndexKeys(idx map[string][]NameEntry) []string {
	keys := make([]string, 0, len(idx))
	for k := range idx {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// indexKey returns the file key for a label. Characters that cannot appear
// in a file name map to "_".
func indexKey(label string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(label))
	if r == utf8.RuneError {
		return ""
	}
	r = unicode.ToLower(r)
	if r == '/' || r == '\\' || r == '.' || !unicode.IsPrint(r) {
		return "_"
	}
	return string(r)
}
