package rdg

import "github.com/Carmen-Shannon/rdg-forge/gpu"

// Build runs the graph build pipeline: flatten the registered passes into a
// topological order, devirtualize every declared resource against device, and synthesize
// the per-pass barrier buckets. If the DAG is cyclic, Build logs the failure and returns
// without creating a single physical resource — a half-built graph is strictly worse than
// an empty one, since Execute would have nothing consistent to walk.
func (g *Graph) Build(device gpu.Device) error {
	order, ok := g.flattenBFS()
	if !ok {
		err := g.validationError("rdg: build: pass graph is cyclic, no physical resources were created")
		return err
	}
	g.flattened = order

	if err := g.devirtualize(device); err != nil {
		return err
	}
	g.synthesizeBarriers()
	g.built = true
	return nil
}

// Built reports whether Build has completed successfully.
func (g *Graph) Built() bool { return g.built }
