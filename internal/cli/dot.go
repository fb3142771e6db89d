package cli

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mavgraph/pkg/layout"
)

type dotOptions struct {
	focus  focusFlags
	svg    bool
	output string
}

// dotCommand creates the dot command that emits the Graphviz input.
func (c *CLI) dotCommand() *cobra.Command {
	opts := dotOptions{}

	cmd := &cobra.Command{
		Use:   "dot <report.json>",
		Short: "Write the Graphviz source of a canonical graph",
		Long: `Dot writes the layout request of the canonical graph as DOT, dummy
placement edges included. With --svg it is rendered through Graphviz instead.`,
		Example: `  mavgraph dot mav.json | dot -Tpng > graph.png
  mavgraph dot mav.json --component k0 --memsys M --svg -o M.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDot(cmd.Context(), args[0], opts)
		},
	}

	opts.focus.register(cmd)
	cmd.Flags().BoolVar(&opts.svg, "svg", false, "render SVG with Graphviz")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func (c *CLI) runDot(ctx context.Context, input string, opts dotOptions) error {
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
	res, err := runner.ExecuteFile(ctx, input, popts)
	if err != nil {
		return err
	}

	var src io.Reader = strings.NewReader(layout.ToDOT(res.Request))
	if opts.svg {
		gv := &layout.Graphviz{Engine: c.config.Layout.Engine, Logger: loggerFromContext(ctx)}
		svg, err := gv.RenderSVG(ctx, res.Request)
		if err != nil {
			return err
		}
		src = strings.NewReader(string(svg))
	}

	out, err := createOutput(opts.output)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if opts.output != "" && opts.output != "-" {
		printFile(opts.output)
	}
	return nil
}
