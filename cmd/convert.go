package cmd

import (
	"io"
	"log"
	"time"

	"github.com/jaffee/commandeer"
	"github.com/pilosa/brapi2isa/convert"
	"github.com/spf13/cobra"
)

// ConvertMain is the configuration of the convert command.
var ConvertMain *convert.Main

// NewConvertCommand returns the command converting trials to ISA-Tab.
func NewConvertCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var err error
	ConvertMain = convert.NewMain()
	convertCommand := &cobra.Command{
		Use:   "convert",
		Short: "convert BrAPI trials or studies to ISA-Tab, trait and data files",
		Long: `Converts each selected trial to an ISA-Tab archive written under a
directory named after the trial. Every study of the trial also gets a
trait definition file (t_<study>.txt) and one data file per observation
level (d_<study>_<level>.txt).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			err = ConvertMain.Run()
			if err != nil {
				return err
			}
			log.Println("Done: ", time.Since(start))
			return nil
		},
	}
	flags := convertCommand.Flags()
	err = commandeer.Flags(flags, ConvertMain)
	if err != nil {
		panic(err)
	}
	return convertCommand
}

func init() {
	subcommandFns["convert"] = NewConvertCommand
}
