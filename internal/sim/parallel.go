package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/jellosim/internal/dynamo"
)

// Ensemble runs several parameter sets from the same initial lattice. Each
// member steps its own clone of the lattice on its own goroutine.
type Ensemble struct {
	members []*dynamo.Params
	metrics func(*dynamo.Params) []dynamo.Metric
}

// NewEnsemble builds an ensemble; metrics is called once per member to
// build fresh metric instances.
func NewEnsemble(metrics func(*dynamo.Params) []dynamo.Metric, members ...*dynamo.Params) *Ensemble {
	return &Ensemble{members: members, metrics: metrics}
}

func (e *Ensemble) Run(ctx context.Context, l0 *dynamo.Lattice, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(e.members))

	g, ctx := errgroup.WithContext(ctx)
	for i, p := range e.members {
		g.Go(func() error {
			s := New(p)
			if e.metrics != nil {
				for _, m := range e.metrics(p) {
					s.AddMetric(m)
				}
			}
			r, err := s.Run(ctx, l0.Clone(), cfg)
			results[i] = r
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
