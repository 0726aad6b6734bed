// Package force implements a weighted force-directed graph layout.
//
// The simulation follows the classic spring-electrical model: every edge is
// a spring with a rest length and a stiffness proportional to its normalized
// weight, every pair of bodies repels like charged particles, and a drag
// force damps motion. Bodies are integrated with explicit Euler steps and a
// per-step velocity clamp. The layout stops when the mean displacement per
// body drops under a threshold, or after a maximum number of steps.
//
// Pairwise repulsion is exact for small graphs and approximated with a
// Barnes-Hut plane (gonum spatial/barneshut) above [Options.BarnesHutMin]
// bodies.
//
// Layouts are deterministic: initial positions come from a seeded PCG
// source, or from an Isomap embedding (gonum graph/layout) of connected
// graphs when [InitIsomap] is selected.
package force
