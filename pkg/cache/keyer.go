package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer generates cache keys.
type Keyer interface {
	// MapKey returns the key of the map rendered from the graph with the
	// given content hash.
	MapKey(graphHash string, opts MapKeyOpts) string
}

// MapKeyOpts holds every render option that changes the output map.
type MapKeyOpts struct {
	TopK          int        `json:"top_k"`
	Seed          uint64     `json:"seed"`
	Ticks         int        `json:"ticks"`
	Iterations    int        `json:"iterations"`
	Strength      float64    `json:"strength"`
	VelocityDecay float64    `json:"velocity_decay"`
	Padding       float64    `json:"padding"`
	Target        [4]float64 `json:"target"`
	Region        string     `json:"region"`
	RegionPadding float64    `json:"region_padding"`
	Simplify      float64    `json:"simplify"`
	Colors        int        `json:"colors"`
	MaxSteps      int        `json:"max_steps"`
	Fallback      string     `json:"fallback"`
}

// DefaultKeyer hashes the graph hash and options into "map:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// MapKey implements [Keyer].
func (DefaultKeyer) MapKey(graphHash string, opts MapKeyOpts) string {
	// MapKeyOpts holds only plain values, so Marshal cannot fail.
	data, _ := json.Marshal(struct {
		Graph string     `json:"graph"`
		Opts  MapKeyOpts `json:"opts"`
	}{graphHash, opts})
	return "map:" + Hash(data)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON returns the [Hash] of the JSON encoding of v.
func HashJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return Hash(data), nil
}

// ScopedKeyer prefixes every key of Inner, so several deployments can share
// one Redis database.
type ScopedKeyer struct {
	Inner  Keyer
	Prefix string
}

// NewScopedKeyer wraps inner, or the [DefaultKeyer] when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) *ScopedKeyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return &ScopedKeyer{Inner: inner, Prefix: prefix}
}

func (k *ScopedKeyer) MapKey(graphHash string, opts MapKeyOpts) string {
	return k.Prefix + k.Inner.MapKey(graphHash, opts)
}

var (
	_ Keyer = DefaultKeyer{}
	_ Keyer = (*ScopedKeyer)(nil)
)
