// Command monitorload hammers a single stopwatch from many goroutines and
// reports how long the bookkeeping took for each level of concurrency.
//
//	monitorload --total 300000 --threads 1,2,5,100,1000 --fill 0 --tree
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	monitor "github.com/lyft/gomonitor"
	"github.com/lyft/gomonitor/report"
)

type options struct {
	total   int
	threads []int
	fill    int
	tree    bool
	json    bool
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := newRootCmd(logger).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(logger *zap.Logger) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:          "monitorload",
		Short:        "Measure stopwatch throughput under concurrent load",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), logger, cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().IntVar(&opts.total, "total", 300000, "Start/stop cycles per run, shared by all goroutines")
	cmd.Flags().IntSliceVar(&opts.threads, "threads", []int{1, 2, 5, 100, 1000}, "Goroutine counts, one run each")
	cmd.Flags().IntVar(&opts.fill, "fill", 0, "Extra counters created before each run to grow the tree")
	cmd.Flags().BoolVar(&opts.tree, "tree", false, "Print the monitor tree after the last run")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print every sample as a JSON line after the last run")
	return cmd
}

func run(ctx context.Context, logger *zap.Logger, out io.Writer, opts options) error {
	if opts.total <= 0 {
		return errors.New("monitorload: --total must be positive")
	}
	if len(opts.threads) == 0 {
		return errors.New("monitorload: --threads must not be empty")
	}
	for _, n := range opts.threads {
		if n <= 0 || n > opts.total {
			return fmt.Errorf("monitorload: invalid thread count %d", n)
		}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	m := monitor.NewManager(monitor.WithLogger(logger.Sugar()))
	name := monitor.GenerateName("load")

	for _, threads := range opts.threads {
		m.Clear()
		if err := fill(m, opts.fill); err != nil {
			return err
		}

		elapsed, err := load(ctx, m, name, threads, opts.total)
		if err != nil {
			return err
		}
		s := m.MustStopwatch(name).Sample()
		logger.Info("load finished",
			zap.Int("threads", threads),
			zap.Int64("splits", s.Count),
			zap.Duration("elapsed", elapsed),
			zap.Duration("per_split", elapsed/time.Duration(s.Count)),
			zap.Int64("max_active", s.MaxActive),
			zap.Duration("mean", time.Duration(s.Mean)),
			zap.Duration("max", s.Max),
		)
	}

	rt, err := monitor.NewRuntimeStats(m, "monitorload.runtime")
	if err != nil {
		return err
	}
	rt.GenerateStats()

	if opts.tree {
		if _, err := io.WriteString(out, report.TreeString(m.Root())); err != nil {
			return err
		}
	}
	if opts.json {
		return report.NewJSONReporter(out).Report(m)
	}
	return nil
}

// fill creates n counters spread over 10 branches.
func fill(m *monitor.Manager, n int) error {
	for i := 0; i < n; i++ {
		c, err := m.Counter(fmt.Sprintf("monitorload.fill.%d.c%d", i%10, i))
		if err != nil {
			return err
		}
		c.Inc()
	}
	return nil
}

// load runs total start/stop cycles on the stopwatch called name from
// threads goroutines, resolving it by name on every cycle.
func load(ctx context.Context, m *monitor.Manager, name string, threads, total int) (time.Duration, error) {
	g, ctx := errgroup.WithContext(ctx)
	start := time.Now()
	per := total / threads
	for i := 0; i < threads; i++ {
		n := per
		if i == 0 {
			n += total % threads
		}
		g.Go(func() error {
			for j := 0; j < n; j++ {
				if j%1024 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				sw, err := m.Stopwatch(name)
				if err != nil {
					return err
				}
				sw.Start().Stop()
			}
			return nil
		})
	}
	err := g.Wait()
	return time.Since(start), err
}
