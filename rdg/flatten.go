package rdg

// flattenBFS performs a topological flatten via sink-first extraction on a mutable copy of
// the DAG. Pick a node with no remaining successors, push it onto a stack, and remove it
// (and its incoming edges) from the copy; repeat until the copy is empty. The final order is
// the stack popped back-to-front — a producer-before-consumer linearization.
//
// The original engine's flatten seeds from a single sink only, so a disconnected DAG only
// drains the component reachable from the first picked sink. This implementation takes the
// conforming alternative: it loops over every remaining sink each round rather than stopping
// after one component, so disconnected graphs still flatten completely. See DESIGN.md for the
// discrepancy this introduces versus the literal single-sink source behavior.
//
// Returns the flattened order and true, or (nil, false) if the DAG is cyclic — a topology
// error, which aborts Build with no physical resources created.
func (g *Graph) flattenBFS() ([]string, bool) {
	succ := make(map[string]map[string]struct{}, len(g.order))
	pred := make(map[string]map[string]struct{}, len(g.order))
	for _, id := range g.order {
		succ[id] = make(map[string]struct{}, len(g.successors[id]))
		for s := range g.successors[id] {
			succ[id][s] = struct{}{}
		}
		pred[id] = make(map[string]struct{}, len(g.predecessors[id]))
		for p := range g.predecessors[id] {
			pred[id][p] = struct{}{}
		}
	}

	remaining := make(map[string]struct{}, len(g.order))
	for _, id := range g.order {
		remaining[id] = struct{}{}
	}

	var stack []string
	for len(remaining) > 0 {
		progressed := false
		// Iterate in registration order so the result is deterministic across runs with the
		// same graph construction sequence, even though any sink would be a valid pick.
		for _, id := range g.order {
			if _, ok := remaining[id]; !ok {
				continue
			}
			if len(succ[id]) != 0 {
				continue
			}
			stack = append(stack, id)
			delete(remaining, id)
			for p := range pred[id] {
				delete(succ[p], id)
			}
			progressed = true
		}
		if !progressed {
			// No sink left among the remaining nodes: the remainder is cyclic.
			return nil, false
		}
	}

	out := make([]string, len(stack))
	for i, id := range stack {
		out[len(stack)-1-i] = id
	}
	return out, true
}
