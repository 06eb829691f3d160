package cmd

import (
	"io"

	"github.com/jaffee/commandeer"
	"github.com/pilosa/brapi2isa/convert"
	"github.com/spf13/cobra"
)

// NewTraitsCommand returns the command writing only trait definition files.
func NewTraitsCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	m := convert.NewMain()
	traitsCommand := &cobra.Command{
		Use:   "traits",
		Short: "write the trait definition files of BrAPI studies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return m.RunTraits()
		},
	}
	if err := commandeer.Flags(traitsCommand.Flags(), m); err != nil {
		panic(err)
	}
	return traitsCommand
}

func init() {
	subcommandFns["traits"] = NewTraitsCommand
}
