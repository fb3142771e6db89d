package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mavgraph/pkg/errors"
	"github.com/matzehuels/mavgraph/pkg/highlight"
	"github.com/matzehuels/mavgraph/pkg/mav"
)

type highlightOptions struct {
	focus   focusFlags
	node    string
	edge    string
	selects []string
	json    bool
}

// highlightCommand creates the highlight command.
func (c *CLI) highlightCommand() *cobra.Command {
	opts := highlightOptions{}

	cmd := &cobra.Command{
		Use:   "highlight <report.json>",
		Short: "Show what a node or edge selection highlights",
		Long: `Highlight builds the canonical graph and selects a node or an edge the
way the viewer does. --select may be repeated to replay a click sequence
(node:<id>, edge:<id> or clear); selecting the focused element again
clears it.`,
		Example: `  mavgraph highlight mav.json --node _21
  mavgraph highlight mav.json --component k0 --memsys M --banks B0 --node _30
  mavgraph highlight mav.json --select node:_21 --select edge:_21->_30 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runHighlight(cmd.Context(), args[0], opts)
		},
	}

	opts.focus.register(cmd)
	cmd.Flags().StringVar(&opts.node, "node", "", "node id to select")
	cmd.Flags().StringVar(&opts.edge, "edge", "", "edge id to select")
	cmd.Flags().StringArrayVar(&opts.selects, "select", nil, "selection step: node:<id>, edge:<id> or clear (repeatable)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the selection as JSON")
	cmd.MarkFlagsMutuallyExclusive("node", "edge", "select")

	return cmd
}

// selection is one step of a click sequence.
type selection struct {
	state highlight.State
	id    string
}

func parseSelection(s string) (selection, error) {
	if s == "clear" {
		return selection{state: highlight.Idle}, nil
	}
	kind, id, ok := strings.Cut(s, ":")
	if !ok || id == "" {
		return selection{}, errors.New(errors.ErrCodeInvalidInput, "selection %q: want node:<id>, edge:<id> or clear", s)
	}
	switch kind {
	case "node":
		return selection{state: highlight.NodeFocused, id: id}, nil
	case "edge":
		return selection{state: highlight.EdgeFocused, id: id}, nil
	}
	return selection{}, errors.New(errors.ErrCodeInvalidInput, "selection %q: unknown kind %q", s, kind)
}

func (o highlightOptions) steps() ([]selection, error) {
	switch {
	case o.node != "":
		return []selection{{state: highlight.NodeFocused, id: o.node}}, nil
	case o.edge != "":
		return []selection{{state: highlight.EdgeFocused, id: o.edge}}, nil
	}
	if len(o.selects) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "one of --node, --edge or --select is required")
	}
	steps := make([]selection, 0, len(o.selects))
	for _, s := range o.selects {
		sel, err := parseSelection(s)
		if err != nil {
			return nil, err
		}
		steps = append(steps, sel)
	}
	return steps, nil
}

// apply replays steps on session. An unknown id fails with NOT_FOUND.
func apply(session *highlight.Session, steps []selection) error {
	for _, st := range steps {
		var ok bool
		switch st.state {
		case highlight.Idle:
			session.Clear()
			ok = true
		case highlight.NodeFocused:
			_, ok = session.SelectNode(st.id)
		case highlight.EdgeFocused:
			_, ok = session.SelectEdge(st.id)
		}
		if !ok {
			return errors.New(errors.ErrCodeNotFound, "%s %q is not in the graph", strings.TrimSuffix(st.state.String(), "-focused"), st.id)
		}
	}
	return nil
}

func (c *CLI) runHighlight(ctx context.Context, input string, opts highlightOptions) error {
	focus, err := opts.focus.focus()
	if err != nil {
		return err
	}
	steps, err := opts.steps()
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

	session := highlight.NewSession(res.Graph)
	if err := apply(session, steps); err != nil {
		return err
	}

	if opts.json {
		return writeSelection(session)
	}
	printSelection(session)
	return nil
}

// =============================================================================
// Output
// =============================================================================

type selectionJSON struct {
	State    string        `json:"state"`
	Selected string        `json:"selected,omitempty"`
	Nodes    []string      `json:"nodes"`
	Styled   []string      `json:"styled"`
	Edges    []string      `json:"edges"`
	Details  []mav.Record  `json:"details,omitempty"`
	Location *mav.Location `json:"location,omitempty"`
}

func selectionDocument(s *highlight.Session) selectionJSON {
	r := s.Result()
	doc := selectionJSON{
		State:    s.State().String(),
		Selected: s.Selected(),
		Nodes:    nonNil(r.Nodes),
		Styled:   nonNil(r.Styled),
		Edges:    nonNil(r.Edges),
		Details:  r.Description.Shown,
	}
	if r.Description.HasLocation {
		loc := r.Description.Location
		doc.Location = &loc
	}
	return doc
}

func writeSelection(s *highlight.Session) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(selectionDocument(s))
}

func printSelection(s *highlight.Session) {
	if s.State() == highlight.Idle {
		printInfo("Nothing selected")
		return
	}
	r := s.Result()
	printSuccess("%s %s", s.State(), StyleHighlight.Render(s.Selected()))

	styled := make(map[string]bool, len(r.Styled))
	for _, id := range r.Styled {
		styled[id] = true
	}
	names := make([]string, 0, len(r.Nodes))
	for _, id := range r.Nodes {
		if styled[id] {
			names = append(names, StyleSelected.Render(id))
		} else {
			names = append(names, StyleDim.Render(id))
		}
	}
	printKeyValue("nodes", strings.Join(names, " "))
	printKeyValue("edges", strings.Join(r.Edges, " "))

	if r.Description.HasLocation {
		loc := r.Description.Location
		printKeyValue("location", fmt.Sprintf("%s:%d", loc.Filename, loc.Line))
	}
	if len(r.Description.Shown) > 0 {
		printNewline()
		fmt.Println(StyleTitle.Render("Details"))
		for _, rec := range r.Description.Shown {
			printRecord(rec)
		}
	}
}

func printRecord(rec mav.Record) {
	if rec.IsText() {
		printDetail("%s", rec.Text)
		return
	}
	for _, f := range rec.Fields {
		printKeyValue(f.Key, rec.Value(f.Key))
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
