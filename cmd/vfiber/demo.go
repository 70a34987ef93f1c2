package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fiber/pkg/fiber"
	"github.com/vango-dev/fiber/pkg/protocol"
)

type demoOptions struct {
	text   string
	clicks int
	dump   bool
	frames bool
}

func demoCmd(g *globalOptions) *cobra.Command {
	var opts demoOptions

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the mirror and counter demo",
		Long: `Render an input mirrored into a heading plus a counter, then simulate
typing and clicking. Each commit prints the host tree as HTML.

Examples:
  vfiber demo
  vfiber demo --text "hi there" --clicks 3
  vfiber demo --frames --dump`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg, cmd.ErrOrStderr())
			return runDemo(cmd.OutOrStdout(), newRuntime(cfg, logger), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.text, "text", "t", "hello", "Text to type into the input, one keystroke per character")
	cmd.Flags().IntVarP(&opts.clicks, "clicks", "n", 2, "Number of counter clicks")
	cmd.Flags().BoolVar(&opts.dump, "dump", false, "Print the committed fiber tree at the end")
	cmd.Flags().BoolVar(&opts.frames, "frames", false, "Print each commit's mutations")

	return cmd
}

func runDemo(out io.Writer, rt *runtime, opts demoOptions) error {
	rt.onCommit = func(stats fiber.CommitStats) {
		fmt.Fprintf(out, "  gen %-3d %-6s %s\n", stats.Generation, stats.Reason, rt.mem.Snapshot())
	}
	if opts.frames {
		rt.onFrame = func(f *protocol.Frame) {
			printFrame(out, f)
		}
	}

	m := newMirror(rt)
	if err := rt.render(m.view("Type to render")); err != nil {
		return err
	}

	input := rt.mem.Root().Find("input")
	typed := ""
	for _, r := range opts.text {
		typed += string(r)
		value := typed
		var err error
		rt.do(func() { err = rt.mem.Dispatch(input, "input", value) })
		if err != nil {
			return err
		}
	}

	for i := 0; i < opts.clicks; i++ {
		var err error
		rt.do(func() { err = rt.mem.Dispatch(rt.mem.Root().Find("button"), "click", nil) })
		if err != nil {
			return err
		}
	}

	success(out, "%d commits, final generation %d", countCommits(rt), rt.engine.Generation())
	if opts.dump {
		fmt.Fprintln(out)
		fmt.Fprint(out, rt.engine.Current().Dump())
	}
	return nil
}

func countCommits(rt *runtime) int {
	n := 0
	if families, err := rt.registry.Gather(); err == nil {
		for _, mf := range families {
			if mf.GetName() != "vango_fiber_passes_total" {
				continue
			}
			for _, m := range mf.GetMetric() {
				for _, l := range m.GetLabel() {
					if l.GetName() == "outcome" && l.GetValue() == "committed" {
						n += int(m.GetCounter().GetValue())
					}
				}
			}
		}
	}
	return n
}

// printFrame prints a frame's mutations, one per line.
func printFrame(out io.Writer, f *protocol.Frame) {
	switch f.Type {
	case protocol.FrameError:
		warn(out, "error frame: %s", f.Payload)
	case protocol.FrameCommit:
		cf, err := protocol.DecodeCommit(f.Payload)
		if err != nil {
			warn(out, "bad frame: %v", err)
			return
		}
		info(out, "frame seq=%d gen=%d initial=%v", cf.Seq, cf.Generation, f.Flags.Has(protocol.FlagInitial))
		for _, m := range cf.Mutations {
			info(out, "  %s", m.String())
		}
	}
}
