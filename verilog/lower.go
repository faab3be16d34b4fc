package verilog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samitbasu/gohdl/bits"
	"github.com/samitbasu/gohdl/hdl"
)

// formatLiteral renders a width-annotated constant: binary for widths
// that are not a multiple of four, hex otherwise.
func formatLiteral(v bits.Bits) string {
	w := v.Width()
	if w%4 == 0 {
		return fmt.Sprintf("%d'h%x", w, v)
	}
	return fmt.Sprintf("%d'b%b", w, v)
}

var unOpSymbols = map[hdl.UnOp]string{
	hdl.Not:       "!",
	hdl.Neg:       "-",
	hdl.AllReduce: "&",
	hdl.AnyReduce: "|",
	hdl.XorReduce: "^",
}

// lowerExpr renders one hdl.Expr to Verilog expression text.
func lowerExpr(e hdl.Expr) string {
	switch x := e.(type) {
	case hdl.SignalRef:
		return mangle(x.Name)
	case hdl.Literal:
		return formatLiteral(x.Value)
	case hdl.Cast:
		return fmt.Sprintf("%d'(%s)", x.Width, lowerExpr(x.Inner))
	case hdl.Paren:
		return "(" + lowerExpr(x.Inner) + ")"
	case hdl.Binary:
		return fmt.Sprintf("%s %s %s", lowerExpr(x.Lhs), x.Op.Symbol(), lowerExpr(x.Rhs))
	case hdl.Unary:
		sym, ok := unOpSymbols[x.Op]
		if !ok {
			sym = "?"
		}
		return sym + lowerExpr(x.Inner)
	case hdl.Index:
		return fmt.Sprintf("%s[%s]", lowerExpr(x.Inner), lowerExpr(x.Idx))
	case hdl.Slice:
		return fmt.Sprintf("%s[%s +: %d]", lowerExpr(x.Inner), lowerExpr(x.Offset), x.Width)
	case hdl.IndexReplace:
		// Verilog has no single-expression bit-replace operator; callers
		// needing this shape express it as a SliceAssignment statement
		// instead. Rendered here only so nested occurrences don't panic.
		return fmt.Sprintf("/* index-replace */ %s", lowerExpr(x.Inner))
	default:
		return fmt.Sprintf("/* unknown expr %T */", e)
	}
}

// lowerStmts renders a statement list as the body of an always @(*)
// block, indented by indent levels of two spaces.
func lowerStmts(stmts []hdl.Stmt, indent int) string {
	var sb strings.Builder
	pad := strings.Repeat("  ", indent)
	for _, s := range stmts {
		switch st := s.(type) {
		case hdl.Assignment:
			sb.WriteString(fmt.Sprintf("%s%s = %s;\n", pad, lowerExpr(st.Lhs), lowerExpr(st.Rhs)))
		case hdl.SliceAssignment:
			sb.WriteString(fmt.Sprintf("%s%s[%s +: %d] = %s;\n",
				pad, mangle(st.Base), lowerExpr(st.Offset), st.Width, lowerExpr(st.Replacement)))
		case hdl.If:
			sb.WriteString(fmt.Sprintf("%sif (%s) begin\n", pad, lowerExpr(st.Test)))
			sb.WriteString(lowerStmts(st.Then, indent+1))
			sb.WriteString(pad + "end")
			switch {
			case st.ElseIf != nil:
				sb.WriteString(" else ")
				sb.WriteString(strings.TrimPrefix(lowerStmts([]hdl.Stmt{*st.ElseIf}, indent), pad))
			case len(st.ElseBlock) > 0:
				sb.WriteString(" else begin\n")
				sb.WriteString(lowerStmts(st.ElseBlock, indent+1))
				sb.WriteString(pad + "end\n")
			default:
				sb.WriteString("\n")
			}
		case hdl.Match:
			sb.WriteString(fmt.Sprintf("%scase (%s)\n", pad, lowerExpr(st.Test)))
			for _, c := range st.Cases {
				sb.WriteString(fmt.Sprintf("%s  %s: begin\n", pad, c.Pattern))
				sb.WriteString(lowerStmts(c.Block, indent+2))
				sb.WriteString(pad + "  end\n")
			}
			sb.WriteString(pad + "endcase\n")
		case hdl.Loop:
			sb.WriteString(fmt.Sprintf("%sfor (integer %s = %d; %s < %d; %s = %s + 1) begin\n",
				pad, st.Index, st.From, st.Index, st.To, st.Index, st.Index))
			sb.WriteString(lowerStmts(st.Body, indent+1))
			sb.WriteString(pad + "end\n")
		case hdl.Comment:
			sb.WriteString(pad + "// " + string(st) + "\n")
		case hdl.Link:
			// Links carry no Verilog text of their own; they are resolved
			// by the emitter at module scope (port passthrough or a
			// separate assign statement), not inlined where declared.
		default:
			sb.WriteString(fmt.Sprintf("%s// unrecognized statement %T\n", pad, s))
		}
	}
	return sb.String()
}

// widthDecl renders a bit-vector declaration suffix, e.g. "[7:0] " for
// an 8-bit signal, or "" for a 1-bit scalar.
func widthDecl(width int) string {
	if width <= 1 {
		return ""
	}
	return "[" + strconv.Itoa(width-1) + ":0] "
}
