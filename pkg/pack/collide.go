package pack

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// Collision defaults.
const (
	DefaultTicks         = 3000
	DefaultIterations    = 50
	DefaultStrength      = 0.9
	DefaultVelocityDecay = 0.4
	DefaultPadding       = 4.0
)

// gridMin is the body count from which collision candidates are found with a
// uniform grid instead of all pairs.
const gridMin = 128

// CollideOptions configures [Collide].
type CollideOptions struct {
	Ticks         int
	Iterations    int
	Strength      float64
	VelocityDecay float64
	// Padding is the extra gap required between two circles.
	Padding float64
	Seed    uint64
}

func (o CollideOptions) withDefaults() CollideOptions {
	if o.Ticks <= 0 {
		o.Ticks = DefaultTicks
	}
	if o.Iterations <= 0 {
		o.Iterations = DefaultIterations
	}
	if o.Strength <= 0 {
		o.Strength = DefaultStrength
	}
	if o.VelocityDecay <= 0 || o.VelocityDecay >= 1 {
		o.VelocityDecay = DefaultVelocityDecay
	}
	if o.Padding < 0 {
		o.Padding = 0
	}
	if o.Seed == 0 {
		o.Seed = 42
	}
	return o
}

// Collide pushes overlapping circles apart and returns the new centers.
//
// For every tick each pair whose predicted centers lie closer than
// r_i + r_j + padding receives opposite velocity impulses, split by the
// squared-radius ratio so that small circles move more. Velocities decay
// by VelocityDecay after each tick. Circles of radius 0 never collide and
// keep their position.
//
// The tick budget is fixed; Collide only returns early when the state has
// become exactly static, where further ticks would not change it.
func Collide(ctx context.Context, centers []r2.Vec, radii []float64, opts CollideOptions) ([]r2.Vec, error) {
	opts = opts.withDefaults()
	c := collider{
		opts:  opts,
		pos:   slices.Clone(centers),
		vel:   make([]r2.Vec, len(centers)),
		radii: make([]float64, len(centers)),
		rng:   rand.New(rand.NewPCG(opts.Seed, opts.Seed^0xdeadbeef)),
	}
	for i, r := range radii {
		if r > 0 {
			c.active = append(c.active, i)
			c.radii[i] = r + opts.Padding/2
			c.maxR = math.Max(c.maxR, c.radii[i])
		}
	}
	if len(c.active) < 2 {
		return c.pos, nil
	}

	keep := 1 - opts.VelocityDecay
	for tick := 0; tick < opts.Ticks; tick++ {
		if tick%50 == 0 {
			if err := ctx.Err(); err != nil {
				return c.pos, err
			}
		}
		touched := false
		for it := 0; it < opts.Iterations; it++ {
			if c.iterate() {
				touched = true
			}
		}
		static := !touched
		for _, i := range c.active {
			c.vel[i] = r2.Scale(keep, c.vel[i])
			c.pos[i] = r2.Add(c.pos[i], c.vel[i])
			if c.vel[i] != (r2.Vec{}) {
				static = false
			}
		}
		if static {
			break
		}
	}
	return c.pos, nil
}

type collider struct {
	opts   CollideOptions
	pos    []r2.Vec
	vel    []r2.Vec
	radii  []float64
	active []int
	maxR   float64
	rng    *rand.Rand
	grid   map[[2]int][]int
}

// iterate runs one relaxation pass and reports whether any pair overlapped.
func (c *collider) iterate() bool {
	if len(c.active) >= gridMin {
		return c.iterateGrid()
	}
	touched := false
	for k, i := range c.active {
		xi := r2.Add(c.pos[i], c.vel[i])
		for _, j := range c.active[k+1:] {
			if c.resolve(i, j, xi) {
				touched = true
			}
		}
	}
	return touched
}

func (c *collider) iterateGrid() bool {
	cell := 2 * c.maxR
	key := func(p r2.Vec) [2]int {
		return [2]int{int(math.Floor(p.X / cell)), int(math.Floor(p.Y / cell))}
	}
	if c.grid == nil {
		c.grid = make(map[[2]int][]int)
	}
	clear(c.grid)
	for _, i := range c.active {
		k := key(r2.Add(c.pos[i], c.vel[i]))
		c.grid[k] = append(c.grid[k], i)
	}

	touched := false
	var cands []int
	for _, i := range c.active {
		xi := r2.Add(c.pos[i], c.vel[i])
		k := key(xi)
		cands = cands[:0]
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for _, j := range c.grid[[2]int{k[0] + dx, k[1] + dy}] {
					if j > i {
						cands = append(cands, j)
					}
				}
			}
		}
		slices.Sort(cands)
		for _, j := range cands {
			if c.resolve(i, j, xi) {
				touched = true
			}
		}
	}
	return touched
}

// resolve applies the collision impulse between i (predicted at xi) and j.
func (c *collider) resolve(i, j int, xi r2.Vec) bool {
	ri, rj := c.radii[i], c.radii[j]
	r := ri + rj
	d := r2.Sub(xi, r2.Add(c.pos[j], c.vel[j]))
	if math.Abs(d.X) >= r || math.Abs(d.Y) >= r {
		return false
	}
	l2 := d.X*d.X + d.Y*d.Y
	if l2 >= r*r {
		return false
	}
	if d.X == 0 {
		d.X = c.jiggle()
		l2 += d.X * d.X
	}
	if d.Y == 0 {
		d.Y = c.jiggle()
		l2 += d.Y * d.Y
	}
	l := math.Sqrt(l2)
	d = r2.Scale((r-l)/l*c.opts.Strength, d)
	ri2, rj2 := ri*ri, rj*rj
	share := rj2 / (ri2 + rj2)
	c.vel[i] = r2.Add(c.vel[i], r2.Scale(share, d))
	c.vel[j] = r2.Sub(c.vel[j], r2.Scale(1-share, d))
	return true
}

func (c *collider) jiggle() float64 {
	return (c.rng.Float64() - 0.5) * 1e-6
}
