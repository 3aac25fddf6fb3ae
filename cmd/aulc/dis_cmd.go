package main

import (
	"fmt"

	"github.com/aulscript/aul"
	"github.com/aulscript/aul/dis"
	"github.com/spf13/cobra"
)

func newDisCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dis [file]",
		Short: "Disassemble the bytecode of a script",
		Args:  cobra.MaximumNArgs(1),
		RunE:  disHandler,
	}
	cmd.Flags().String("func", "", "Function to disassemble")
	return cmd
}

func disHandler(cmd *cobra.Command, args []string) error {
	in, err := getInput(cmd, args)
	if err != nil {
		return err
	}
	result, err := aul.Compile(cmd.Context(), in.source, in.opts...)
	if err != nil {
		return err
	}
	code := result.Code
	instructions, err := dis.Disassemble(code)
	if err != nil {
		return err
	}
	if name, _ := cmd.Flags().GetString("func"); name != "" {
		fn, ok := code.Function(name)
		if !ok {
			return fmt.Errorf("function %q not found", name)
		}
		instructions = instructions[fn.Start():fn.End()]
	}
	dis.Print(instructions, cmd.OutOrStdout())
	return nil
}
