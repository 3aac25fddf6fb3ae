package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

var red = color.New(color.FgRed).SprintFunc()

func fatal(msg interface{}) {
	var s string
	switch msg := msg.(type) {
	case string:
		s = msg
	case error:
		s = msg.Error()
	default:
		s = fmt.Sprintf("%v", msg)
	}
	fmt.Fprintf(os.Stderr, "%s\n", red(s))
	os.Exit(1)
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Reads global flags from Viper and adjusts the environment accordingly.
func processGlobalFlags() error {
	if path := viper.GetString("config"); path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	if viper.GetBool("no-color") || !isTerminal(os.Stdout) {
		color.NoColor = true
	}
	return nil
}

// newLogger returns a console logger on w at the configured level.
func newLogger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(viper.GetString("log-level")))
	if err != nil {
		return zerolog.Nop(), err
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: color.NoColor, PartsExclude: []string{zerolog.TimestampFieldName}}
	return zerolog.New(out).Level(level), nil
}

var errMultipleSources = errors.New("multiple input sources specified")

// readSource returns the script given by --code, --stdin or a path, and
// the filename to report errors against.
func readSource(codeSet bool, args []string, stdin io.Reader) (string, string, error) {
	stdinSet := viper.GetBool("stdin")
	pathSupplied := len(args) > 0
	count := 0
	for _, set := range []bool{codeSet, stdinSet, pathSupplied} {
		if set {
			count++
		}
	}
	switch {
	case count > 1:
		return "", "", errMultipleSources
	case count == 0:
		return "", "", errors.New("no input provided")
	case stdinSet:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", err
		}
		return string(data), "", nil
	case pathSupplied:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", err
		}
		return string(data), args[0], nil
	}
	return viper.GetString("code"), "", nil
}

var outputFormatsCompletion = []string{"json", "text"}

func marshalOutput(v any) ([]byte, error) {
	if color.NoColor {
		return json.MarshalIndent(v, "", "  ")
	}
	return prettyjson.Marshal(v)
}
