package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/mavgraph/pkg/canon"
	"github.com/matzehuels/mavgraph/pkg/errors"
)

// focusFlags are the focus selection flags shared by every command.
type focusFlags struct {
	component  string
	memsys     string
	banks      []string
	bank       string
	replicates bool
}

func (f *focusFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.component, "component", "", "focus on a function or component (with --memsys: the owning kernel)")
	fl.StringVar(&f.memsys, "memsys", "", "focus on a memory system of --component")
	fl.StringSliceVar(&f.banks, "banks", nil, "banks whose logical ports are expanded (with --memsys)")
	fl.StringVar(&f.bank, "bank", "", "bank shown by --replicates")
	fl.BoolVar(&f.replicates, "replicates", false, "show the replicates and physical ports of --bank")
}

// focus resolves the flags into a validated focus.
func (f *focusFlags) focus() (canon.Focus, error) {
	var focus canon.Focus
	switch {
	case f.memsys != "" && f.replicates:
		focus = canon.ReplicateFocus(f.component, f.memsys, f.bank)
	case f.memsys != "":
		if f.bank != "" {
			return canon.Focus{}, errors.New(errors.ErrCodeInvalidFocus, "--bank needs --replicates")
		}
		focus = canon.BankFocus(f.component, f.memsys, f.banks...)
	case f.replicates || f.bank != "" || len(f.banks) > 0:
		return canon.Focus{}, errors.New(errors.ErrCodeInvalidFocus, "--banks, --bank and --replicates need --memsys")
	case f.component != "":
		focus = canon.ComponentFocus(f.component)
	default:
		focus = canon.WholeGraph()
	}
	if err := focus.Validate(); err != nil {
		return canon.Focus{}, err
	}
	return focus, nil
}
