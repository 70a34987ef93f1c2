package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fiber/pkg/fiber"
)

type benchOptions struct {
	rows       int
	iterations int
}

// benchResult aggregates the stats of the update passes.
type benchResult struct {
	Passes    int
	Units     int
	Yields    int
	Mutations int
	Render    time.Duration
	Commit    time.Duration
	Wall      time.Duration
}

func (r *benchResult) add(s fiber.CommitStats) {
	r.Passes++
	r.Units += s.Units
	r.Yields += s.Yields
	r.Mutations += s.Mutations
	r.Render += s.RenderDuration
	r.Commit += s.CommitDuration
}

func benchCmd(g *globalOptions) *cobra.Command {
	var opts benchOptions

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure render and commit cost on a large list",
		Long: `Render a list of component rows, then re-render it with changed labels
for a number of iterations on the scheduler loop, and report per-pass
averages of units, yields, mutations and durations.

Examples:
  vfiber bench
  vfiber bench --rows 5000 --iterations 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if opts.rows <= 0 {
				opts.rows = cfg.Bench.Rows
			}
			if opts.iterations <= 0 {
				opts.iterations = cfg.Bench.Iterations
			}
			rt := newRuntime(cfg, newLogger(cfg, cmd.ErrOrStderr()))
			res, err := runBench(rt, opts)
			if err != nil {
				return err
			}
			printBench(cmd.OutOrStdout(), opts, res)
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.rows, "rows", "r", 0, "Rows in the list (default from vfiber.json)")
	cmd.Flags().IntVarP(&opts.iterations, "iterations", "i", 0, "Update passes (default from vfiber.json)")

	return cmd
}

func runBench(rt *runtime, opts benchOptions) (benchResult, error) {
	var res benchResult
	if err := rt.render(list(opts.rows, 0)); err != nil {
		return res, err
	}

	rt.onCommit = res.add
	start := time.Now()
	for i := 1; i <= opts.iterations; i++ {
		if err := rt.render(list(opts.rows, i)); err != nil {
			return res, err
		}
	}
	res.Wall = time.Since(start)
	return res, nil
}

func printBench(out io.Writer, opts benchOptions, r benchResult) {
	success(out, "%d passes over %d rows in %s", r.Passes, opts.rows, r.Wall.Round(time.Microsecond))
	if r.Passes == 0 {
		return
	}
	n := r.Passes
	fmt.Fprintf(out, "  %-16s %d\n", "units/pass", r.Units/n)
	fmt.Fprintf(out, "  %-16s %.1f\n", "yields/pass", float64(r.Yields)/float64(n))
	fmt.Fprintf(out, "  %-16s %d\n", "mutations/pass", r.Mutations/n)
	fmt.Fprintf(out, "  %-16s %s\n", "render/pass", (r.Render / time.Duration(n)).Round(time.Microsecond))
	fmt.Fprintf(out, "  %-16s %s\n", "commit/pass", (r.Commit / time.Duration(n)).Round(time.Microsecond))
}
