package force

import (
	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"
)

// particle exposes a body to the Barnes-Hut plane. It points into the
// simulator's body slice, so the plane sees positions of the current step.
// The plane sees unit masses, making its aggregate centers plain centroids
// and its aggregate masses body counts; charge applies the body masses.
type particle struct{ b *body }

func (p particle) Coord2() r2.Vec { return p.b.pos }
func (p particle) Mass() float64  { return 1 }

// repelApprox adds the Barnes-Hut approximated repulsion to every body. It
// reports false when the plane cannot be built (coincident bodies), in which
// case the caller falls back to the exact sum.
func (s *simulator) repelApprox() bool {
	if s.particles == nil {
		s.particles = make([]barneshut.Particle2, len(s.bodies))
		total := 0.0
		for i := range s.bodies {
			s.particles[i] = particle{b: &s.bodies[i]}
			total += s.bodies[i].mass
		}
		s.meanMass = total / float64(len(s.bodies))
	}
	if s.plane == nil {
		plane, err := barneshut.NewPlane(s.particles)
		if err != nil {
			return false
		}
		s.plane = plane
	} else if err := s.plane.Reset(); err != nil {
		s.plane = nil
		return false
	}
	for i, p := range s.particles {
		s.bodies[i].force = r2.Add(s.bodies[i].force, s.plane.ForceOn(p, s.opts.Theta, s.charge))
	}
	return true
}

// charge is a barneshut.Force2 scaling inverse-square attraction by
// Options.Gravity, so negative gravity repels. p2 is nil for an aggregate of
// count bodies, which is charged with the mean body mass.
func (s *simulator) charge(p1, p2 barneshut.Particle2, _, count float64, v r2.Vec) r2.Vec {
	if p1 == p2 {
		return r2.Vec{}
	}
	m1 := p1.(particle).b.mass
	m2 := count * s.meanMass
	if p2 != nil {
		m2 = p2.(particle).b.mass
	}
	r := r2.Norm(v)
	if r == 0 {
		v = jiggle(s.rng)
		r = r2.Norm(v)
	}
	return r2.Scale(s.opts.Gravity*m1*m2/(r*r*r), v)
}
