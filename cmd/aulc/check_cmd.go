package main

import (
	"errors"
	"fmt"

	"github.com/aulscript/aul"
	aulerrors "github.com/aulscript/aul/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errCheckFailed = errors.New("compilation failed")

// checkReport is the JSON form of a check.
type checkReport struct {
	Script       string   `json:"script"`
	Functions    int      `json:"functions"`
	Errored      []string `json:"errored,omitempty"`
	Instructions int      `json:"instructions"`
	Strings      int      `json:"strings"`
	Calls        int      `json:"calls"`
	Includes     []string `json:"includes,omitempty"`
	Errors       []string `json:"errors,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Compile a script and report its errors",
		Args:  cobra.MaximumNArgs(1),
		RunE:  checkHandler,
	}
	cmd.Flags().StringP("output", "o", "", "Output format (json or text)")
	cmd.Flags().Bool("allow-errors", false, "Exit successfully even when functions fail to compile")
	_ = viper.BindPFlag("allow-errors", cmd.Flags().Lookup("allow-errors"))
	_ = cmd.RegisterFlagCompletionFunc("output", cobra.FixedCompletions(outputFormatsCompletion, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

func checkHandler(cmd *cobra.Command, args []string) error {
	in, err := getInput(cmd, args)
	if err != nil {
		return err
	}
	result, err := aul.Compile(cmd.Context(), in.source, in.opts...)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	format, _ := cmd.Flags().GetString("output")
	switch format {
	case "json":
		data, err := marshalOutput(newCheckReport(result))
		if err != nil {
			return err
		}
		writeLine(out, string(data))
	case "", "text":
		if diags := result.FormattedErrors(); len(diags) > 0 {
			formatter := aulerrors.NewFormatter(!color.NoColor)
			fmt.Fprint(cmd.ErrOrStderr(), formatter.FormatMultiple(diags))
		}
		stats := result.Code.Stats()
		writeLine(out, fmt.Sprintf("%s: %d functions, %d errored, %d instructions",
			result.Code.Script(), stats.FunctionCount, stats.ErroredCount, stats.InstructionCount))
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
	if len(result.Errors) > 0 && !viper.GetBool("allow-errors") {
		return errCheckFailed
	}
	return nil
}

func newCheckReport(result *aul.Result) checkReport {
	stats := result.Code.Stats()
	report := checkReport{
		Script:       result.Code.Script(),
		Functions:    stats.FunctionCount,
		Errored:      result.ErroredFunctions(),
		Instructions: stats.InstructionCount,
		Strings:      stats.StringCount,
		Calls:        stats.CallCount,
		Includes:     result.Includes,
	}
	for _, e := range result.Errors {
		report.Errors = append(report.Errors, e.Error())
	}
	for _, w := range result.Warnings {
		report.Warnings = append(report.Warnings, w.String())
	}
	return report
}
