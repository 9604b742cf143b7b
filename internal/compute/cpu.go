package compute

import (
	"runtime"

	"github.com/san-kum/jellosim/internal/dynamo"
	"github.com/san-kum/jellosim/internal/physics"
)

// CPUBackend splits the lattice into slabs of constant i and evaluates
// them on separate goroutines. Every point's acceleration is computed
// exactly as in the serial model, so results are bit-identical.
type CPUBackend struct {
	workers int
}

func NewCPUBackend() *CPUBackend {
	return &CPUBackend{
		workers: runtime.NumCPU(),
	}
}

func NewCPUBackendWorkers(workers int) *CPUBackend {
	return &CPUBackend{workers: max(workers, 1)}
}

func (c *CPUBackend) Name() string { return "cpu" }
func (c *CPUBackend) Workers() int { return c.workers }

func (c *CPUBackend) Accelerations(model *physics.Jello, s dynamo.State, out []dynamo.Vec) {
	n := model.N()
	if c.workers == 1 || n < 2 {
		model.Accelerations(s, out)
		return
	}

	dynamo.ParallelFor(n, c.workers, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < n; j++ {
				for k := 0; k < n; k++ {
					out[(i*n+j)*n+k] = model.Acceleration(s, i, j, k)
				}
			}
		}
	})
}
