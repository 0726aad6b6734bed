package mapcolor

import (
	"math"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// goldenAngle spaces generated hues so consecutive colors stay far apart.
const goldenAngle = 137.50776405003785

// lightness levels cycled by generated fills, dark enough for white labels.
var lightness = []float64{0.42, 0.52, 0.34}

// fillSet grows the generated fills on demand. Entry i is the fill of color
// len(Palette)+i; every entry differs from all earlier ones and from Palette.
type fillSet struct {
	mu    sync.Mutex
	fills []string
	seen  map[string]bool
	next  int // hue step of the next candidate
}

var extended fillSet

func (s *fillSet) fill(c int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen == nil {
		s.seen = make(map[string]bool)
		for _, p := range Palette {
			s.seen[p] = true
		}
	}
	for len(s.fills) <= c-len(Palette) {
		s.fills = append(s.fills, s.candidate())
	}
	return s.fills[c-len(Palette)]
}

// candidate returns the next unused fill.
func (s *fillSet) candidate() string {
	for {
		i := s.next
		s.next++
		h := math.Mod(230+float64(i)*goldenAngle, 360)
		l := lightness[(i/7)%len(lightness)]
		hex := colorful.Hcl(h, 0.45, l).Clamped().Hex()
		if !s.seen[hex] {
			s.seen[hex] = true
			return hex
		}
	}
}
