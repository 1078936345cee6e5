package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hugr-lab/lazyscan/expr"
	"github.com/hugr-lab/lazyscan/polars"
)

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	var showColumns bool

	cmd := &cobra.Command{
		Use:   "translate [file|-]",
		Short: "Translate Polars expression JSON",
		Long: `Translate a Polars expression, as written by expr.meta.write_json(),
into the internal predicate and print it. Reads standard input when the
file is omitted or "-".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "-"
			if len(args) == 1 {
				name = args[0]
			}
			data, err := readInput(cmd, name)
			if err != nil {
				return err
			}

			e, err := polars.TranslateJSON(data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, e.String())
			if showColumns {
				fmt.Fprintf(out, "columns: %s\n", strings.Join(expr.ReferencedColumns(e), ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showColumns, "columns", false, "also print the referenced columns")
	return cmd
}

// readInput reads a file, or the command's stdin for "-".
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}
