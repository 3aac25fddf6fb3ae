package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/aulscript/aul"
	"github.com/aulscript/aul/ast"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newAstCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ast [file]",
		Short: "Print the syntax tree of a script",
		Args:  cobra.MaximumNArgs(1),
		RunE:  astHandler,
	}
	cmd.Flags().StringP("output", "o", "", "Output format (json or text)")
	return cmd
}

func astHandler(cmd *cobra.Command, args []string) error {
	in, err := getInput(cmd, args)
	if err != nil {
		return err
	}
	script, parseErr := aul.Parse(cmd.Context(), in.source, in.opts...)
	if script == nil {
		return parseErr
	}
	out := cmd.OutOrStdout()
	if format, _ := cmd.Flags().GetString("output"); format == "json" {
		data, err := marshalOutput(nodeToJSON(script))
		if err != nil {
			return err
		}
		writeLine(out, string(data))
	} else {
		printAST(out, script)
	}
	return parseErr
}

// ASTNode represents a node in the JSON AST output
type ASTNode struct {
	Type     string     `json:"type"`
	Attrs    []string   `json:"attrs,omitempty"`
	Line     int        `json:"line"`
	Column   int        `json:"column"`
	Children []*ASTNode `json:"children,omitempty"`
}

func nodeToJSON(node ast.Node) *ASTNode {
	name, attrs := ast.Describe(node)
	pos := node.Pos()
	result := &ASTNode{
		Type:   name,
		Attrs:  attrs,
		Line:   pos.LineNumber(),
		Column: pos.ColumnNumber(),
	}
	for _, child := range ast.Children(node) {
		result.Children = append(result.Children, nodeToJSON(child))
	}
	return result
}

// Color styles for AST display
var (
	nodeStyle    = color.New(color.FgHiCyan, color.Bold)
	literalStyle = color.New(color.FgYellow)
	mutedStyle   = color.New(color.FgHiBlack)
	badStyle     = color.New(color.FgRed, color.Bold)
)

func printAST(w io.Writer, script *ast.Script) {
	fmt.Fprintln(w, nodeStyle.Sprint("Script"))
	children := ast.Children(script)
	for i, child := range children {
		printNode(w, child, "  ", i == len(children)-1)
	}
}

func printNode(w io.Writer, node ast.Node, indent string, isLast bool) {
	connector := "├─ "
	childIndent := indent + "│  "
	if isLast {
		connector = "└─ "
		childIndent = indent + "   "
	}
	name, attrs := ast.Describe(node)
	style := nodeStyle
	switch node.(type) {
	case *ast.BadStmt, *ast.BadExpr:
		style = badStyle
	}
	line := mutedStyle.Sprint(indent+connector) + style.Sprint(name)
	if len(attrs) > 0 {
		line += " " + literalStyle.Sprint(strings.Join(attrs, " "))
	}
	fmt.Fprintln(w, line)

	children := ast.Children(node)
	for i, child := range children {
		printNode(w, child, childIndent, i == len(children)-1)
	}
}
