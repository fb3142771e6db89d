package canon

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mavgraph/pkg/errors"
)

// Mode selects how the report is focused.
type Mode int

const (
	// ModeAll renders the whole report.
	ModeAll Mode = iota
	// ModeComponent renders one function, component, kernel or task.
	ModeComponent
	// ModeBank renders one memory system and selected banks (bank/port mode).
	ModeBank
)

func (m Mode) String() string {
	switch m {
	case ModeComponent:
		return "component"
	case ModeBank:
		return "bank"
	}
	return "all"
}

// Focus names the scope to render.
type Focus struct {
	Mode Mode

	// Component is the focused function in ModeComponent, and the kernel
	// owning MemorySystem in ModeBank.
	Component string

	// MemorySystem, Banks, Bank and Replicates apply to ModeBank only.
	MemorySystem string
	Banks        []string // banks whose logical ports are expanded
	Bank         string   // focus bank of the replicate view
	Replicates   bool     // replicate view of Bank
}

// WholeGraph focuses on the entire report.
func WholeGraph() Focus { return Focus{Mode: ModeAll} }

// ComponentFocus focuses on the named function or component.
func ComponentFocus(name string) Focus {
	return Focus{Mode: ModeComponent, Component: name}
}

// BankFocus focuses on memory system memsys of kernel, expanding banks.
func BankFocus(kernel, memsys string, banks ...string) Focus {
	return Focus{Mode: ModeBank, Component: kernel, MemorySystem: memsys, Banks: banks}
}

// ReplicateFocus shows the replicates and physical ports of one bank.
func ReplicateFocus(kernel, memsys, bank string) Focus {
	return Focus{Mode: ModeBank, Component: kernel, MemorySystem: memsys, Bank: bank, Replicates: true}
}

// String renders the focus as "all", "component:<name>",
// "bank:<kernel>/<memsys>[<banks>]" or "replicates:<kernel>/<memsys>/<bank>".
func (f Focus) String() string {
	switch f.Mode {
	case ModeComponent:
		return "component:" + f.Component
	case ModeBank:
		if f.Replicates {
			return "replicates:" + f.Component + "/" + f.MemorySystem + "/" + f.Bank
		}
		return "bank:" + f.Component + "/" + f.MemorySystem + "[" + strings.Join(f.Banks, ",") + "]"
	}
	return "all"
}

// BankPort reports whether the focus uses bank/port rendering rules.
func (f Focus) BankPort() bool { return f.Mode == ModeBank }

// Validate checks that the names required by the mode are well formed.
// A well-formed focus that matches nothing is not an error.
func (f Focus) Validate() error {
	switch f.Mode {
	case ModeAll:
		return nil
	case ModeComponent:
		return errors.ValidateName("component", f.Component)
	case ModeBank:
		if err := errors.ValidateName("kernel", f.Component); err != nil {
			return err
		}
		if err := errors.ValidateName("memory system", f.MemorySystem); err != nil {
			return err
		}
		if err := errors.ValidateNames("bank", f.Banks); err != nil {
			return err
		}
		if f.Replicates {
			return errors.ValidateName("bank", f.Bank)
		}
		return nil
	}
	return errors.New(errors.ErrCodeInvalidFocus, "unknown focus mode %d", int(f.Mode))
}

// MergePolicy controls instruction merging.
type MergePolicy int

const (
	// MergeAuto merges instructions except in bank/port mode.
	MergeAuto MergePolicy = iota
	MergeAlways
	MergeNever
)

func (p MergePolicy) String() string {
	switch p {
	case MergeAlways:
		return "always"
	case MergeNever:
		return "never"
	}
	return "auto"
}

// Options configures a build.
type Options struct {
	Focus Focus

	// ExcludedFields lists detail keys whose values are ignored when
	// comparing instructions and channel endpoints. Keys must still be
	// present on both sides.
	ExcludedFields []string

	// ReservedChannels lists channel names that are never merged.
	ReservedChannels []string

	// HiddenDetails lists detail keys filtered out of descriptions.
	HiddenDetails []string

	Instructions MergePolicy

	// Logger receives diagnostics. Nil discards them.
	Logger *log.Logger
}

// Default values reproduce the report viewer.
var (
	DefaultExcludedFields   = []string{"Reference"}
	DefaultReservedChannels = []string{"do", "return"}
	DefaultHiddenDetails    = []string{"type", "Component", "Fmax Bottlenecks", "Pipelined", "Subloops", "Loops To"}
)

// DefaultOptions returns options for focus with the default lists.
func DefaultOptions(focus Focus) Options {
	return Options{
		Focus:            focus,
		ExcludedFields:   append([]string(nil), DefaultExcludedFields...),
		ReservedChannels: append([]string(nil), DefaultReservedChannels...),
		HiddenDetails:    append([]string(nil), DefaultHiddenDetails...),
	}
}

// withDefaults fills nil lists. An explicitly empty list is kept.
func (o Options) withDefaults() Options {
	if o.ExcludedFields == nil {
		o.ExcludedFields = DefaultExcludedFields
	}
	if o.ReservedChannels == nil {
		o.ReservedChannels = DefaultReservedChannels
	}
	if o.HiddenDetails == nil {
		o.HiddenDetails = DefaultHiddenDetails
	}
	return o
}

func (o Options) mergeInstructions() bool {
	switch o.Instructions {
	case MergeAlways:
		return true
	case MergeNever:
		return false
	}
	return !o.Focus.BankPort()
}

func set(keys []string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}
