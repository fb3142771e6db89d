package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mavgraph/pkg/canon"
	"github.com/matzehuels/mavgraph/pkg/layout"
	"github.com/matzehuels/mavgraph/pkg/pipeline"
)

type layoutOptions struct {
	focus   focusFlags
	output  string
	noCache bool
	refresh bool
}

// layoutDocument is the file written by the layout command.
type layoutDocument struct {
	BuildID string         `json:"build_id"`
	Focus   string         `json:"focus"`
	Graph   *canon.Graph   `json:"graph"`
	Layout  *layout.Result `json:"layout"`
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	opts := layoutOptions{}

	cmd := &cobra.Command{
		Use:   "layout <report.json>",
		Short: "Build and lay out a canonical graph",
		Long: `Layout builds the canonical graph, runs Graphviz on it and writes node
boxes and edge routes alongside the graph. Layouts are cached by report
content, focus and settings.`,
		Example: `  mavgraph layout mav.json
  mavgraph layout mav.json --component k0 --memsys M --banks B0 -o M.layout.json
  mavgraph layout mav.json --refresh`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts)
		},
	}

	opts.focus.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the layout cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute the layout even when cached")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input string, opts layoutOptions) error {
	focus, err := opts.focus.focus()
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := c.pipelineOptions(focus)
	popts.Refresh = opts.refresh

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Laying out %s...", focus))
	spinner.Start()
	res, err := runner.ExecuteFile(ctx, input, popts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	output := opts.output
	if output == "" {
		output = defaultLayoutPath(input)
	}
	if err := writeLayout(output, focus, res); err != nil {
		return err
	}

	printSuccess("Laid out %s", StyleHighlight.Render(focus.String()))
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.Layout != nil, res.CacheInfo.LayoutHit)
	printDiagnostics(res)
	if output != "-" {
		printFile(output)
		printNewline()
		printNextStep("Inspect a node", fmt.Sprintf("%s highlight %s --node <id>", appName, input))
	}
	return nil
}

func defaultLayoutPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
}

func writeLayout(path string, focus canon.Focus, res *pipeline.Result) error {
	out, err := createOutput(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	err = enc.Encode(layoutDocument{
		BuildID: res.BuildID,
		Focus:   focus.String(),
		Graph:   res.Graph,
		Layout:  res.Layout,
	})
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}
