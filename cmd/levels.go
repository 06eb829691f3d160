package cmd

import (
	"io"

	"github.com/jaffee/commandeer"
	"github.com/pilosa/brapi2isa/convert"
	"github.com/spf13/cobra"
)

// NewLevelsCommand returns the command listing the observation levels of
// BrAPI studies and the variables observed at each.
func NewLevelsCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	m := convert.NewMain()
	levelsCommand := &cobra.Command{
		Use:   "levels",
		Short: "print the observation levels and variables of BrAPI studies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return m.RunLevels(stdout)
		},
	}
	if err := commandeer.Flags(levelsCommand.Flags(), m); err != nil {
		panic(err)
	}
	return levelsCommand
}

func init() {
	subcommandFns["levels"] = NewLevelsCommand
}
