package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/qopt/internal/gate"
	"github.com/roach88/qopt/internal/ir"
)

// GatesOptions holds flags for the gates command.
type GatesOptions struct {
	*RootOptions
	Gates []string // CUE gate libraries to add to the listing
}

// GatesResult is the JSON payload of the gates command.
type GatesResult struct {
	IRVersion string      `json:"ir_version"`
	Kinds     []gate.Kind `json:"kinds"`
}

// NewGatesCommand creates the gates command.
func NewGatesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GatesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "gates",
		Short: "List the gate catalog",
		Long: `List every gate kind known to the optimizer with its arity.

Composite gates from --gates libraries are listed next to the built-in
kinds, together with their registered adjoints.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGates(opts, cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Gates, "gates", nil, "CUE gate library file or directory (repeatable)")

	return cmd
}

func runGates(opts *GatesOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	catalog, err := BuildCatalog(opts.Gates)
	if err != nil {
		return commandError(formatter, ErrCodeBuildFailed, fmt.Sprintf("failed to build gate catalog: %v", err))
	}
	return formatter.Success(GatesResult{IRVersion: ir.IRVersion, Kinds: catalog.Kinds()})
}

// RenderText prints the catalog as a table.
func (r GatesResult) RenderText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tQUBITS\tCLBITS\tPARAMS\tNOTES")
	for _, k := range r.Kinds {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", k.Name, qubitArity(k), k.NumClbits, k.NumParams, kindNotes(k))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d kinds\n", len(r.Kinds))
	return nil
}

// qubitArity renders the qubit count, "n" for variadic kinds.
func qubitArity(k gate.Kind) string {
	if k.IsVariadic() {
		return "n"
	}
	return strconv.Itoa(k.NumQubits)
}

func kindNotes(k gate.Kind) string {
	switch {
	case k.Composite:
		return "composite"
	case k.Base != "":
		return "controlled " + k.Base
	case !k.Unitary:
		return "non-unitary"
	default:
		return ""
	}
}
