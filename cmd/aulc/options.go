package main

import (
	"io"

	"github.com/aulscript/aul"
	"github.com/aulscript/aul/dialect"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// input is a script read from the command line, ready to compile.
type input struct {
	source string
	opts   []aul.Option
}

func getInput(cmd *cobra.Command, args []string) (*input, error) {
	codeSet := false
	if f := cmd.Flags().Lookup("code"); f != nil && f.Changed {
		codeSet = true
	}
	source, filename, err := readSource(codeSet, args, cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	level, err := dialect.Parse(viper.GetString("strict"))
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	opts := []aul.Option{
		aul.WithDialect(level),
		aul.WithLogger(logger),
	}
	if filename != "" {
		opts = append(opts, aul.WithFilename(filename))
	}
	if name := viper.GetString("script"); name != "" {
		opts = append(opts, aul.WithScriptName(name))
	}
	return &input{source: source, opts: opts}, nil
}

func writeLine(w io.Writer, s string) {
	_, _ = io.WriteString(w, s+"\n")
}
