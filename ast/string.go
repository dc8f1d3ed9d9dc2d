package ast

import (
	"strconv"
	"strings"
)

// String renders n back into jq-like source text: a minimal
// reconstruction for diagnostics and debugging, not a guaranteed
// round-trippable pretty-printer. Every Expression implements it the way
// the teacher's ast nodes each implement their own String().

func (n *Identity) String() string { return "." }

func (n *RecurseDefault) String() string { return ".." }

func (n *Literal) String() string {
	switch n.Kind {
	case LiteralNull:
		return "null"
	case LiteralBool:
		if n.Bool {
			return "true"
		}
		return "false"
	case LiteralNumber:
		return strconv.FormatFloat(n.Num, 'g', -1, 64)
	case LiteralString:
		return strconv.Quote(n.Str)
	default:
		return "<literal>"
	}
}

func (n *InterpString) String() string {
	var sb strings.Builder
	if n.Format != "" {
		sb.WriteByte('@')
		sb.WriteString(n.Format)
		sb.WriteByte(' ')
	}
	sb.WriteByte('"')
	for _, part := range n.Parts {
		if part.Expr == nil {
			sb.WriteString(part.Text)
			continue
		}
		sb.WriteString(`\(`)
		sb.WriteString(part.Expr.String())
		sb.WriteByte(')')
	}
	sb.WriteByte('"')
	return sb.String()
}

func (n *VarRef) String() string { return "$" + n.Name }

func (n *Field) String() string {
	suffix := "." + n.Name
	if n.Optional {
		suffix += "?"
	}
	if n.Target == nil {
		return suffix
	}
	return n.Target.String() + suffix
}

func (n *Index) String() string {
	suffix := "[" + n.Index.String() + "]"
	if n.Optional {
		suffix += "?"
	}
	if n.Target == nil {
		return "." + suffix
	}
	return n.Target.String() + suffix
}

func (n *Slice) String() string {
	from, to := "", ""
	if n.From != nil {
		from = n.From.String()
	}
	if n.To != nil {
		to = n.To.String()
	}
	suffix := "[" + from + ":" + to + "]"
	if n.Optional {
		suffix += "?"
	}
	if n.Target == nil {
		return "." + suffix
	}
	return n.Target.String() + suffix
}

func (n *Iterate) String() string {
	suffix := "[]"
	if n.Optional {
		suffix += "?"
	}
	if n.Target == nil {
		return "." + suffix
	}
	return n.Target.String() + suffix
}

func (n *ArrayConstruct) String() string {
	if n.Body == nil {
		return "[]"
	}
	return "[" + n.Body.String() + "]"
}

func (n *ObjectConstruct) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, e := range n.Entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.Key.String())
		if e.Value != nil {
			sb.WriteString(": ")
			sb.WriteString(e.Value.String())
		}
	}
	sb.WriteByte('}')
	return sb.String()
}

func (n *Pipe) String() string { return n.Left.String() + " | " + n.Right.String() }

func (n *Comma) String() string { return n.Left.String() + ", " + n.Right.String() }

func (n *Alternative) String() string { return n.Left.String() + " // " + n.Right.String() }

func (n *Unary) String() string { return string(n.Operator) + n.Operand.String() }

func (n *Binary) String() string {
	return "(" + n.Left.String() + " " + string(n.Operator) + " " + n.Right.String() + ")"
}

func (n *Boolean) String() string {
	return "(" + n.Left.String() + " " + string(n.Operator) + " " + n.Right.String() + ")"
}

func (n *If) String() string {
	var sb strings.Builder
	sb.WriteString("if ")
	sb.WriteString(n.Cond.String())
	sb.WriteString(" then ")
	sb.WriteString(n.Then.String())
	for _, e := range n.Elifs {
		sb.WriteString(" elif ")
		sb.WriteString(e.Cond.String())
		sb.WriteString(" then ")
		sb.WriteString(e.Body.String())
	}
	if n.Else != nil {
		sb.WriteString(" else ")
		sb.WriteString(n.Else.String())
	}
	sb.WriteString(" end")
	return sb.String()
}

func (p Pattern) String() string {
	switch {
	case p.Array != nil:
		parts := make([]string, len(p.Array))
		for i, sub := range p.Array {
			parts[i] = sub.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case p.Object != nil:
		parts := make([]string, len(p.Object))
		for i, e := range p.Object {
			parts[i] = e.Key.String() + ": " + e.Pattern.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "$" + p.Var
	}
}

func (n *Bind) String() string {
	pats := make([]string, len(n.Patterns))
	for i, p := range n.Patterns {
		pats[i] = p.String()
	}
	return n.Source.String() + " as " + strings.Join(pats, " ?// ") + " | " + n.Body.String()
}

func (n *Call) String() string {
	if len(n.Args) == 0 {
		return n.Name
	}
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return n.Name + "(" + strings.Join(args, "; ") + ")"
}

func (n *FuncDef) String() string {
	def := "def " + n.Name
	if len(n.Params) > 0 {
		def += "(" + strings.Join(n.Params, "; ") + ")"
	}
	def += ": " + n.Body.String() + ";"
	if n.Rest != nil {
		def += " " + n.Rest.String()
	}
	return def
}

func (n *Label) String() string { return "label $" + n.Name + " | " + n.Body.String() }

func (n *Break) String() string { return "break $" + n.Name }

func (n *Reduce) String() string {
	return "reduce " + n.Source.String() + " as $" + n.Var +
		" (" + n.Init.String() + "; " + n.Update.String() + ")"
}

func (n *Foreach) String() string {
	s := "foreach " + n.Source.String() + " as $" + n.Var +
		" (" + n.Init.String() + "; " + n.Update.String()
	if n.Extract != nil {
		s += "; " + n.Extract.String()
	}
	return s + ")"
}

func (n *TryCatch) String() string {
	s := "try " + n.Body.String()
	if n.Handler != nil {
		s += " catch " + n.Handler.String()
	}
	return s
}

func (n *Assign) String() string {
	return n.LHS.String() + " " + string(n.Operator) + " " + n.RHS.String()
}
