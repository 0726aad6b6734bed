package force

import (
	"context"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"
)

// Init selects how bodies are placed before the simulation starts.
type Init int

const (
	// InitRandom spreads bodies uniformly on a disc sized by the body count.
	InitRandom Init = iota
	// InitIsomap embeds connected graphs with Isomap and falls back to
	// InitRandom otherwise.
	InitIsomap
)

// DefaultSeed is the PCG seed used when Options.Seed is zero.
const DefaultSeed = 42

// Edge is a weighted spring between bodies A and B.
type Edge struct {
	A, B   int
	Weight float64
}

// Options configures the simulation. Zero fields take the defaults from
// [DefaultOptions].
type Options struct {
	SpringLength    float64
	SpringCoeff     float64
	Gravity         float64 // Negative values repel
	Drag            float64
	TimeStep        float64
	Theta           float64 // Barnes-Hut opening angle
	MaxSteps        int
	StableThreshold float64 // Mean displacement per body that counts as converged
	BarnesHutMin    int
	Seed            uint64
	Init            Init
}

// DefaultOptions returns the simulation constants used for cluster packing
// seeds.
func DefaultOptions() Options {
	return Options{
		SpringLength:    55,
		SpringCoeff:     0.08,
		Gravity:         -10,
		Drag:            0.09,
		TimeStep:        1,
		Theta:           0.8,
		MaxSteps:        10000,
		StableThreshold: 0.01,
		BarnesHutMin:    256,
		Seed:            DefaultSeed,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SpringLength <= 0 {
		o.SpringLength = d.SpringLength
	}
	if o.SpringCoeff <= 0 {
		o.SpringCoeff = d.SpringCoeff
	}
	if o.Gravity == 0 {
		o.Gravity = d.Gravity
	}
	if o.Drag <= 0 {
		o.Drag = d.Drag
	}
	if o.TimeStep <= 0 {
		o.TimeStep = d.TimeStep
	}
	if o.Theta <= 0 {
		o.Theta = d.Theta
	}
	if o.MaxSteps <= 0 {
		o.MaxSteps = d.MaxSteps
	}
	if o.StableThreshold <= 0 {
		o.StableThreshold = d.StableThreshold
	}
	if o.BarnesHutMin <= 0 {
		o.BarnesHutMin = d.BarnesHutMin
	}
	if o.Seed == 0 {
		o.Seed = d.Seed
	}
	return o
}

// Result is a finished layout.
type Result struct {
	Positions []r2.Vec
	Steps     int
	Converged bool
}

type body struct {
	pos, vel, force r2.Vec
	mass            float64
}

type spring struct {
	a, b  int
	coeff float64
}

// Layout positions n bodies connected by edges. Edges referring to bodies
// outside [0, n) or to the same body are ignored.
//
// Layout checks ctx between batches of steps and returns ctx.Err() with the
// partial layout when cancelled.
func Layout(ctx context.Context, n int, edges []Edge, opts Options) (Result, error) {
	opts = opts.withDefaults()
	if n == 0 {
		return Result{Converged: true}, nil
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0xdeadbeef))

	bodies := make([]body, n)
	springs, deg := buildSprings(n, edges, opts.SpringCoeff)
	for i := range bodies {
		bodies[i].mass = 1 + float64(deg[i])/3
	}
	if n == 1 {
		return Result{Positions: []r2.Vec{{}}, Converged: true}, nil
	}

	var init []r2.Vec
	if opts.Init == InitIsomap {
		init = isomap(n, edges, opts.SpringLength)
	}
	if init == nil {
		init = randomDisc(rng, n, opts.SpringLength)
	}
	for i := range bodies {
		bodies[i].pos = init[i]
	}

	sim := simulator{opts: opts, bodies: bodies, springs: springs, rng: rng}
	res := Result{}
	for res.Steps < opts.MaxSteps {
		if res.Steps%100 == 0 {
			if err := ctx.Err(); err != nil {
				res.Positions = sim.positions()
				return res, err
			}
		}
		moved := sim.step()
		res.Steps++
		if moved/float64(n) < opts.StableThreshold {
			res.Converged = true
			break
		}
	}
	res.Positions = sim.positions()
	return res, nil
}

func buildSprings(n int, edges []Edge, coeff float64) ([]spring, []int) {
	maxW := 0.0
	for _, e := range edges {
		maxW = math.Max(maxW, e.Weight)
	}
	deg := make([]int, n)
	springs := make([]spring, 0, len(edges))
	for _, e := range edges {
		if e.A == e.B || e.A < 0 || e.B < 0 || e.A >= n || e.B >= n {
			continue
		}
		w := 1.0
		if maxW > 0 {
			w = e.Weight / maxW
		}
		springs = append(springs, spring{a: e.A, b: e.B, coeff: coeff * w})
		deg[e.A]++
		deg[e.B]++
	}
	return springs, deg
}

func randomDisc(rng *rand.Rand, n int, scale float64) []r2.Vec {
	radius := scale * math.Sqrt(float64(n))
	out := make([]r2.Vec, n)
	for i := range out {
		a := rng.Float64() * 2 * math.Pi
		r := radius * math.Sqrt(rng.Float64())
		out[i] = r2.Vec{X: r * math.Cos(a), Y: r * math.Sin(a)}
	}
	return out
}

type simulator struct {
	opts    Options
	bodies  []body
	springs []spring
	rng     *rand.Rand

	particles []barneshut.Particle2
	plane     *barneshut.Plane
	meanMass  float64
}

func (s *simulator) positions() []r2.Vec {
	out := make([]r2.Vec, len(s.bodies))
	for i, b := range s.bodies {
		out[i] = b.pos
	}
	return out
}

// step advances the simulation once and returns the total displacement.
func (s *simulator) step() float64 {
	for i := range s.bodies {
		s.bodies[i].force = r2.Vec{}
	}
	if len(s.bodies) < s.opts.BarnesHutMin || !s.repelApprox() {
		s.repelExact()
	}
	s.applySprings()

	var moved float64
	dt := s.opts.TimeStep
	for i := range s.bodies {
		b := &s.bodies[i]
		b.force = r2.Sub(b.force, r2.Scale(s.opts.Drag, b.vel))
		b.vel = r2.Add(b.vel, r2.Scale(dt/b.mass, b.force))
		if v := r2.Norm(b.vel); v > 1 {
			b.vel = r2.Scale(1/v, b.vel)
		}
		d := r2.Scale(dt, b.vel)
		b.pos = r2.Add(b.pos, d)
		moved += r2.Norm(d)
	}
	return moved
}

func (s *simulator) repelExact() {
	g := s.opts.Gravity
	for i := range s.bodies {
		for j := i + 1; j < len(s.bodies); j++ {
			bi, bj := &s.bodies[i], &s.bodies[j]
			d := r2.Sub(bj.pos, bi.pos)
			r := r2.Norm(d)
			if r == 0 {
				d = jiggle(s.rng)
				r = r2.Norm(d)
			}
			f := r2.Scale(g*bi.mass*bj.mass/(r*r*r), d)
			bi.force = r2.Add(bi.force, f)
			bj.force = r2.Sub(bj.force, f)
		}
	}
}

func (s *simulator) applySprings() {
	for _, sp := range s.springs {
		a, b := &s.bodies[sp.a], &s.bodies[sp.b]
		d := r2.Sub(b.pos, a.pos)
		r := r2.Norm(d)
		if r == 0 {
			d = jiggle(s.rng)
			r = r2.Norm(d)
		}
		f := r2.Scale(sp.coeff*(r-s.opts.SpringLength)/r, d)
		a.force = r2.Add(a.force, f)
		b.force = r2.Sub(b.force, f)
	}
}

func jiggle(rng *rand.Rand) r2.Vec {
	return r2.Vec{X: (rng.Float64() - 0.5) * 1e-3, Y: (rng.Float64() - 0.5) * 1e-3}
}
