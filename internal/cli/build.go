package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mavgraph/pkg/canon"
	"github.com/matzehuels/mavgraph/pkg/pipeline"
)

// buildOptions holds flags for the build command.
type buildOptions struct {
	focus  focusFlags
	json   bool
	output string
}

// buildCommand creates the build command for canonicalizing a report.
func (c *CLI) buildCommand() *cobra.Command {
	opts := buildOptions{}

	cmd := &cobra.Command{
		Use:   "build <report.json>",
		Short: "Canonicalize a report into a viewer graph",
		Long: `Build reads a report, deduplicates and focuses it, and prints a summary
of the canonical graph. With --json the graph itself is written.`,
		Example: `  mavgraph build mav.json
  mavgraph build mav.json --component k0 --memsys M --banks B0,B1 --json
  mavgraph build mav.json --component k0 --memsys M --bank B0 --replicates -o bank.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), args[0], opts)
		},
	}

	opts.focus.register(cmd)
	cmd.Flags().BoolVar(&opts.json, "json", false, "write the canonical graph as JSON")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func (c *CLI) runBuild(ctx context.Context, input string, opts buildOptions) error {
	focus, err := opts.focus.focus()
	if err != nil {
		return err
	}

	runner, err := c.newRunner(true)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := c.pipelineOptions(focus)
	popts.SkipLayout = true

	prog := newProgress(loggerFromContext(ctx))
	res, err := runner.ExecuteFile(ctx, input, popts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built %s", focus))

	if opts.json || opts.output != "" {
		return writeGraph(opts.output, res.Graph)
	}

	printSuccess("Canonical graph for %s", StyleHighlight.Render(focus.String()))
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, false, false)
	printBuildSummary(res)
	printDiagnostics(res)
	return nil
}

func writeGraph(path string, g *canon.Graph) error {
	out, err := createOutput(path)
	if err != nil {
		return err
	}
	if err := canon.WriteJSON(out, g); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if path != "" && path != "-" {
		printFile(path)
	}
	return nil
}

func printBuildSummary(res *pipeline.Result) {
	printKeyValue("build", res.BuildID)
	printKeyValue("report", short(res.ReportHash))
	printKeyValue("roots", strings.Join(res.Graph.Roots(), " "))
	printKeyValue("time", res.Stats.BuildTime.String())
}
