// Command aulc checks, disassembles and prints the syntax tree of Aul
// scripts.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "aulc",
		Short:         "Compile Aul scripts",
		Version:       fmt.Sprintf("%s (%s, %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return processGlobalFlags()
		},
	}

	pf := root.PersistentFlags()
	pf.StringP("code", "c", "", "Code to compile")
	pf.Bool("stdin", false, "Read code from stdin")
	pf.String("strict", "0", "Dialect level the script starts in (0-3)")
	pf.String("script", "", "Script name (defaults to the file name)")
	pf.Bool("no-color", false, "Disable colored output")
	pf.String("log-level", "disabled", "Level of structured compiler logs on stderr")
	pf.String("config", "", "Config file")
	_ = viper.BindPFlags(pf)

	root.AddCommand(newCheckCmd(), newAstCmd(), newDisCmd())
	return root
}

func init() {
	viper.SetEnvPrefix("aulc")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fatal(err)
	}
	os.Exit(0)
}
