package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// MapVersion is the current version of the [Map] document.
const MapVersion = 1

// =============================================================================
// Map - Rendered Map Serialization
// =============================================================================

// Map is the serialized result of one render run. It is what the cache and
// the run store hold, what the HTTP API returns and what `graphmap inspect`
// reads. GeoJSON layers are derived from it.
type Map struct {
	Version     int           `json:"version" bson:"version"`
	RunID       string        `json:"run_id,omitempty" bson:"run_id,omitempty"`
	Bounds      [4]float64    `json:"bounds" bson:"bounds"` // minX, minY, maxX, maxY of the clip region
	Transform   Transform     `json:"transform" bson:"transform"`
	Nodes       []PlacedNode  `json:"nodes" bson:"nodes"`
	Territories []Territory   `json:"territories" bson:"territories"`
	Coloring    ColoringStats `json:"coloring" bson:"coloring"`
	Packing     PackingStats  `json:"packing" bson:"packing"`
	Warnings    []Warning     `json:"warnings,omitempty" bson:"warnings,omitempty"`
}

// PlacedNode is a node at its final canvas position.
type PlacedNode struct {
	ID      string         `json:"id" bson:"id"`
	Cluster int            `json:"cluster" bson:"cluster"` // Territory index
	X       float64        `json:"x" bson:"x"`
	Y       float64        `json:"y" bson:"y"`
	Props   map[string]any `json:"props,omitempty" bson:"props,omitempty"`
}

// Territory is one cluster's region of the map.
type Territory struct {
	Index     int            `json:"index" bson:"index"`
	Cluster   string         `json:"cluster" bson:"cluster"`
	Center    [2]float64     `json:"center" bson:"center"`
	Radius    float64        `json:"radius" bson:"radius"`
	Members   int            `json:"members" bson:"members"`
	Color     int            `json:"color" bson:"color"`
	Fill      string         `json:"fill" bson:"fill"`
	Neighbors []int          `json:"neighbors,omitempty" bson:"neighbors,omitempty"`
	Rings     [][][2]float64 `json:"rings" bson:"rings"` // Outer ring first, then holes
}

// Transform is the global affine transform applied to packed coordinates:
// p' = (p + Offset) / Factor + Center.
type Transform struct {
	Offset [2]float64 `json:"offset" bson:"offset"`
	Factor [2]float64 `json:"factor" bson:"factor"`
	Center [2]float64 `json:"center" bson:"center"`
}

// ColoringStats describes how the territory colors were obtained.
type ColoringStats struct {
	Policy    string   `json:"policy" bson:"policy"`
	Colors    int      `json:"colors" bson:"colors"`
	Steps     int      `json:"steps" bson:"steps"`
	Fallback  bool     `json:"fallback,omitempty" bson:"fallback,omitempty"`
	Conflicts [][2]int `json:"conflicts,omitempty" bson:"conflicts,omitempty"`
}

// PackingStats holds the overlap reports of the seed and final packings.
type PackingStats struct {
	Before Overlap `json:"before" bson:"before"`
	After  Overlap `json:"after" bson:"after"`
}

// Overlap summarizes pairwise circle overlap of packed clusters.
type Overlap struct {
	Pairs int     `json:"pairs" bson:"pairs"`
	Max   float64 `json:"max" bson:"max"`
	Total float64 `json:"total" bson:"total"`
	Worst [2]int  `json:"worst" bson:"worst"`
}

// Warning is a recovered data-quality problem recorded during a run.
type Warning struct {
	Code    string   `json:"code" bson:"code"`
	Message string   `json:"message" bson:"message"`
	IDs     []string `json:"ids,omitempty" bson:"ids,omitempty"`
}

// =============================================================================
// Map Serialization API
// =============================================================================

// MarshalMap serializes a Map to pretty-printed JSON bytes.
func MarshalMap(m Map) ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// UnmarshalMap deserializes JSON bytes into a Map.
// It rejects documents from a newer version and maps without territories.
func UnmarshalMap(data []byte) (Map, error) {
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return Map{}, fmt.Errorf("unmarshal map: %w", err)
	}
	if m.Version == 0 {
		m.Version = MapVersion
	}
	if m.Version > MapVersion {
		return Map{}, fmt.Errorf("unsupported map version %d", m.Version)
	}
	if len(m.Territories) == 0 {
		return Map{}, fmt.Errorf("map must contain territories")
	}
	for _, t := range m.Territories {
		if len(t.Rings) == 0 {
			return Map{}, fmt.Errorf("territory %s has no rings", t.Cluster)
		}
	}
	return m, nil
}

// WriteMapFile writes a Map to a JSON file.
func WriteMapFile(m Map, path string) error {
	data, err := MarshalMap(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadMapFile reads a Map from a JSON file.
func ReadMapFile(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Map{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalMap(data)
}
