package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fiber/internal/config"
	"github.com/vango-dev/fiber/internal/inspect"
	"github.com/vango-dev/fiber/pkg/telemetry"
)

type inspectOptions struct {
	port     int
	host     string
	interval time.Duration
	trace    bool
}

func inspectCmd(g *globalOptions) *cobra.Command {
	var opts inspectOptions

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Serve a live demo engine over HTTP",
		Long: `Run the demo app on the scheduler loop and serve its state:

  /metrics  Prometheus engine metrics
  /tree     the committed fiber tree as JSON
  /html     the host tree as HTML
  /ws       a WebSocket feed of binary commit frames
  /healthz  liveness

The counter is clicked on every --interval so the feed has traffic.

Examples:
  vfiber inspect
  vfiber inspect --port 9000 --interval 250ms --trace`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if opts.port > 0 {
				cfg.Inspect.Port = opts.port
			}
			if opts.host != "" {
				cfg.Inspect.Host = opts.host
			}
			if opts.trace {
				cfg.Inspect.Tracing = true
			}
			return runInspect(cmd, cfg, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "Port to listen on (default from vfiber.json)")
	cmd.Flags().StringVarP(&opts.host, "host", "H", "", "Host to bind to (default from vfiber.json)")
	cmd.Flags().DurationVar(&opts.interval, "interval", time.Second, "Time between simulated clicks (0 disables)")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "Export render spans to stderr")

	return cmd
}

func runInspect(cmd *cobra.Command, cfg *config.Config, opts inspectOptions) error {
	out := cmd.OutOrStdout()
	logger := newLogger(cfg, cmd.ErrOrStderr())

	if cfg.Inspect.Tracing {
		tp, err := telemetry.NewTracerProvider(telemetry.TracingConfig{
			ServiceVersion: version,
			Writer:         cmd.ErrOrStderr(),
		})
		if err != nil {
			return err
		}
		shutdown := telemetry.InstallGlobal(tp)
		defer shutdown(context.Background())
	}

	rt := newRuntime(cfg, logger)
	srv := inspect.New(inspect.Config{
		Addr:     cfg.InspectAddress(),
		Gatherer: rt.registry,
		Tree:     rt.tree,
		HTML:     rt.html,
		Logger:   logger,
	})
	rt.onFrame = srv.Feed().Publish

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	m := newMirror(rt)
	if err := rt.render(m.view("Type to render")); err != nil {
		return err
	}

	go rt.loop.Run(ctx)
	if opts.interval > 0 {
		go clickEvery(ctx, rt, opts.interval)
	}

	printBanner(out)
	success(out, "Inspector on %s", cfg.InspectURL())
	info(out, "metrics  %s/metrics", cfg.InspectURL())
	info(out, "tree     %s/tree", cfg.InspectURL())
	info(out, "feed     ws://%s/ws", cfg.InspectAddress())
	fmt.Fprintln(out)

	err := srv.ListenAndServe(ctx)
	fmt.Fprintln(out, "\n  Shutting down...")
	return err
}

// clickEvery clicks the counter button on the loop until ctx is done.
func clickEvery(ctx context.Context, rt *runtime, d time.Duration) {
	ticker := time.NewTicker(d)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rt.loop.Post(func() {
				if btn := rt.mem.Root().Find("button"); btn != nil {
					if err := rt.mem.Dispatch(btn, "click", nil); err != nil {
						rt.logger.Warn("click failed", "error", err)
					}
				}
			})
		}
	}
}
