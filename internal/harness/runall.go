package harness

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Outcome is the result of one scenario file.
type Outcome struct {
	Path     string
	Scenario *Scenario
	Result   *Result
	Err      error
}

// Passed reports whether the scenario loaded, ran and met its expectations.
func (o Outcome) Passed() bool {
	return o.Err == nil && o.Result != nil && o.Result.Pass
}

// RunAll loads and runs scenario files concurrently. At most limit
// scenarios run at once; limit <= 0 means GOMAXPROCS. Outcomes are
// returned in path order. A failing scenario does not stop the others;
// only context cancellation does.
func RunAll(ctx context.Context, paths []string, limit int, opts ...Option) ([]Outcome, error) {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	outcomes := make([]Outcome, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			o := Outcome{Path: path}
			o.Scenario, o.Err = LoadScenario(path)
			if o.Err == nil {
				o.Result, o.Err = Run(ctx, o.Scenario, opts...)
			}
			outcomes[i] = o
			if o.Err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}
