// Package dis supports analysis of Aul bytecode by disassembling it.
package dis

import (
	"fmt"
	"io"

	"github.com/aulscript/aul/bytecode"
	"github.com/aulscript/aul/internal/table"
	"github.com/aulscript/aul/op"
	"github.com/aulscript/aul/value"
	"github.com/fatih/color"
)

// Instruction represents a single bytecode instruction and what its
// operand refers to.
type Instruction struct {
	Offset  int
	Name    string
	Opcode  op.Code
	Operand int32
	// Function is set on the first instruction of each function.
	Function   string
	Annotation string
	Constant   any
}

// Disassemble returns a parsed representation of the given code.
func Disassemble(code *bytecode.Code) ([]Instruction, error) {
	instructions := make([]Instruction, 0, code.InstructionCount())
	for ip := 0; ip < code.InstructionCount(); ip++ {
		ins := code.InstructionAt(ip)
		out := Instruction{
			Offset:  ip,
			Name:    ins.Op.String(),
			Opcode:  ins.Op,
			Operand: ins.Operand,
		}
		if fn, ok := code.FunctionAtOffset(ip); ok && fn.Start() == ip {
			out.Function = fn.Name()
		}
		if err := annotate(code, ip, &out); err != nil {
			return nil, err
		}
		instructions = append(instructions, out)
	}
	return instructions, nil
}

func annotate(code *bytecode.Code, ip int, out *Instruction) error {
	operand := int(out.Operand)
	if out.Opcode.IsJump() {
		out.Annotation = fmt.Sprintf("-> %d", ip+operand)
		return nil
	}
	switch out.Opcode {
	case op.INT:
		out.Constant = out.Operand
	case op.BOOL:
		out.Constant = out.Operand != 0
	case op.ID:
		out.Annotation = value.UnpackID(uint32(out.Operand))
	case op.STRING:
		s, err := getString(code, operand)
		if err != nil {
			return err
		}
		out.Constant = s
	case op.PROP, op.PROP_SET:
		s, err := getString(code, operand)
		if err != nil {
			return err
		}
		out.Annotation = s
	case op.FUNC, op.CALL, op.CALLFS, op.INHERITED, op.INHERITED_FS:
		if operand < 0 || operand >= code.CallCount() {
			return fmt.Errorf("call target index out of range: %d", operand)
		}
		target := code.CallAt(operand)
		out.Annotation = fmt.Sprintf("%s %s/%d", target.Kind, target.QualifiedName(), target.ParamCount)
		if target.Script != "" {
			out.Annotation += " in " + target.Script
		}
	case op.ERR:
		if operand < 0 || operand >= code.ErrorCount() {
			return fmt.Errorf("error index out of range: %d", operand)
		}
		out.Constant = code.ErrorAt(operand)
	}
	return nil
}

func getString(code *bytecode.Code, index int) (string, error) {
	if index < 0 || index >= code.StringCount() {
		return "", fmt.Errorf("string index out of range: %d", index)
	}
	return code.StringAt(index), nil
}

func bold(s string) string {
	return color.New(color.Bold).Sprint(s)
}

// hasOperand returns false for opcodes whose operand is always zero.
func hasOperand(code op.Code) bool {
	switch code {
	case op.ERR, op.INT, op.BOOL, op.STRING, op.ID, op.ARRAY, op.MAP, op.DUP, op.STACK,
		op.PARN, op.PARN_SET, op.VARN, op.VARN_SET, op.LOCALN, op.LOCALN_SET,
		op.GLOBALN, op.GLOBALN_SET, op.PROP, op.PROP_SET,
		op.FOREACH_NEXT, op.FOREACH_MAP_NEXT, op.FOREACH_MAP_VALUE,
		op.FUNC, op.CALL, op.CALLFS, op.INHERITED, op.INHERITED_FS:
		return true
	}
	return code.IsJump()
}

// Print a string representation of the given instructions to the given writer.
func Print(instructions []Instruction, writer io.Writer) {
	var lines [][]string
	for _, instr := range instructions {
		var values []string
		values = append(values, fmt.Sprintf("%d", instr.Offset))
		values = append(values, color.MagentaString("%s", instr.Function))
		values = append(values, bold(instr.Name))
		if hasOperand(instr.Opcode) {
			values = append(values, fmt.Sprintf("%d", instr.Operand))
		} else {
			values = append(values, "")
		}
		switch c := instr.Constant.(type) {
		case nil:
			values = append(values, color.HiCyanString("%s", instr.Annotation))
		case int32:
			values = append(values, color.YellowString("%d", c))
		case string:
			if instr.Opcode == op.ERR {
				values = append(values, color.RedString("%s", c))
				break
			}
			if len(c) > 80 {
				c = c[:77] + "..."
			}
			values = append(values, color.GreenString("%q", c))
		default:
			values = append(values, bold(fmt.Sprintf("%v", c)))
		}
		lines = append(lines, values)
	}

	table.NewTable(writer).
		WithHeader([]string{"OFFSET", "FUNCTION", "OPCODE", "OPERAND", "INFO"}).
		WithColumnAlignment([]table.Alignment{
			table.AlignRight,
			table.AlignLeft,
			table.AlignLeft,
			table.AlignRight,
			table.AlignLeft,
		}).
		WithHeaderAlignment([]table.Alignment{
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
		}).
		WithRows(lines).
		Render()
}
