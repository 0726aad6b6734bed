// Package mapcolor colors a territory adjacency graph so that neighbors get
// different colors.
//
// [Color] first runs an exact depth-first backtracking search over vertices
// 0..n-1 and colors 0..k-1 in order, returning the first complete
// assignment. The search is bounded by a step ceiling (one step per color
// trial) and an optional wall-clock budget.
//
// When the search is exhausted or hits a bound, the configured [Policy]
// decides what happens:
//
//   - [PolicyBestEffort] keeps k colors: a Welsh-Powell coloring (gonum
//     graph/coloring) is folded into k colors and repaired by min-conflict
//     moves; remaining conflicts are reported.
//   - [PolicyExtend] uses the Welsh-Powell coloring as is, with as many
//     colors as it needs; [Fill] cycles through the palette.
//   - [PolicyFail] returns a COLORING_EXHAUSTED or COLORING_BUDGET_EXCEEDED
//     error carrying the deepest failing vertex and its neighbors.
package mapcolor
