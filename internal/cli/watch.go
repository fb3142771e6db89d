package cli

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mavgraph/pkg/highlight"
	"github.com/matzehuels/mavgraph/pkg/pipeline"
)

type watchOptions struct {
	focus   focusFlags
	output  string
	node    string
	noCache bool
}

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	opts := watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <report.json>",
		Short: "Rebuild and re-lay out a report whenever it changes",
		Long: `Watch rebuilds the graph each time the report file is written. Bursts of
writes are debounced and a rebuild that is superseded before it finishes
is discarded. With --node the selection is carried across rebuilds.`,
		Example: `  mavgraph watch mav.json --component k0 --memsys M -o M.layout.json
  mavgraph watch mav.json --node _21`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), args[0], opts)
		},
	}

	opts.focus.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "layout file rewritten after every rebuild")
	cmd.Flags().StringVar(&opts.node, "node", "", "node selection kept across rebuilds")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the layout cache")

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, input string, opts watchOptions) error {
	focus, err := opts.focus.focus()
	if err != nil {
		return err
	}
	path, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	// Editors often replace the file, so the directory is watched.
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	logger := loggerFromContext(ctx)
	popts := c.pipelineOptions(focus)
	rebuilt := c.onRebuild(focus.String(), opts)
	sched := pipeline.NewScheduler(c.config.Watch.Debounce.Duration, rebuilt, logger)
	defer sched.Close()

	submit := func() {
		sched.Submit(ctx, func(ctx context.Context) (*pipeline.Result, error) {
			return runner.ExecuteFile(ctx, path, popts)
		})
	}

	printInfo("Watching %s", StyleHighlight.Render(input))
	submit()
	for {
		select {
		case <-ctx.Done():
			printNewline()
			printInfo("Stopped watching")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				logger.Debug("report changed", "op", ev.Op.String())
				submit()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		}
	}
}

// onRebuild returns the scheduler callback that reports each accepted
// rebuild and keeps the --node selection bound to the newest graph.
func (c *CLI) onRebuild(focus string, opts watchOptions) func(pipeline.Update) {
	var session *highlight.Session

	return func(u pipeline.Update) {
		if u.Err != nil {
			printError("Rebuild %d failed: %v", u.Generation, u.Err)
			return
		}
		res := u.Result
		printSuccess("Rebuild %d of %s", u.Generation, StyleHighlight.Render(focus))
		printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.Layout != nil, res.CacheInfo.LayoutHit)
		printDiagnostics(res)

		if opts.node != "" {
			if session == nil {
				session = highlight.NewSession(res.Graph)
				session.SelectNode(opts.node)
			} else if !session.Rebind(res.Graph) {
				printWarning("Selection %s is gone", opts.node)
			}
			if session.State() == highlight.NodeFocused {
				r := session.Result()
				printDetail("%s highlights %d nodes, %d edges", opts.node, len(r.Nodes), len(r.Edges))
			}
		}

		if opts.output != "" {
			if err := writeLayout(opts.output, res.Graph.Focus(), res); err != nil {
				printError("Write %s: %v", opts.output, err)
				return
			}
			printFile(opts.output)
		}
	}
}
