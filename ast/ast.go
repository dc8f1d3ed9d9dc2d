// Package ast defines the span-annotated syntax tree the parser produces
// and the evaluator walks. Every node is a concrete struct carrying a
// Token (the leading token, kept for diagnostics exactly the way the
// teacher's ast nodes carry their Token field) and a Span covering the
// full construct, plus an unexported marker method sealing Expression to
// this package — generalizing the teacher's
// (amoghasbhardwaj-Eloquence/ast) Node/Expression/Statement interface
// split down to the single Expression kind jq's grammar needs (jq has no
// separate statement grammar; everything is a filter expression).
package ast

import (
	"github.com/corazon/jqsafe/span"
	"github.com/corazon/jqsafe/token"
)

// Expression is the sealed interface every AST node implements. String
// renders a debug reconstruction of the node's source text (see
// string.go); it is not a guaranteed round-trippable pretty-printer.
type Expression interface {
	expressionNode()
	Span() span.Span
	String() string
}

// Identity is `.`.
type Identity struct {
	Token token.Token
	Sp    span.Span
}

func (*Identity) expressionNode()    {}
func (n *Identity) Span() span.Span { return n.Sp }

// RecurseDefault is the bare `..` (equivalent to `recurse`).
type RecurseDefault struct {
	Token token.Token
	Sp    span.Span
}

func (*RecurseDefault) expressionNode()    {}
func (n *RecurseDefault) Span() span.Span { return n.Sp }

// Literal is a constant null/bool/number/string with no interpolation.
type Literal struct {
	Token token.Token
	Kind  LiteralKind
	Bool  bool
	Num   float64
	Str   string
	Sp    span.Span
}

// LiteralKind distinguishes which field of Literal is populated.
type LiteralKind int

const (
	LiteralNull LiteralKind = iota
	LiteralBool
	LiteralNumber
	LiteralString
)

func (*Literal) expressionNode()    {}
func (n *Literal) Span() span.Span { return n.Sp }

// InterpString is a string literal containing one or more `\(...)`
// interpolated expressions; Parts alternates literal text and embedded
// expressions per Kinds. Format, if non-empty, names an `@format` applied
// to each interpolated part before concatenation.
type InterpString struct {
	Token  token.Token
	Format string
	Parts  []InterpPart
	Sp     span.Span
}

// InterpPart is one piece of an interpolated string: either literal text
// (Expr == nil) or an embedded expression (Text == "").
type InterpPart struct {
	Text string
	Expr Expression
}

func (*InterpString) expressionNode()    {}
func (n *InterpString) Span() span.Span { return n.Sp }

// VarRef is `$name`.
type VarRef struct {
	Token token.Token
	Name  string
	Sp    span.Span
}

func (*VarRef) expressionNode()    {}
func (n *VarRef) Span() span.Span { return n.Sp }

// Field is `.name` or `EXPR.name`, applied to Target (nil means applied to
// the implicit current input, i.e. a bare leading `.name`). Optional marks
// a trailing `?`.
type Field struct {
	Token    token.Token
	Target   Expression
	Name     string
	Optional bool
	Sp       span.Span
}

func (*Field) expressionNode()    {}
func (n *Field) Span() span.Span { return n.Sp }

// Index is `EXPR[indexExpr]`, fanning out over every value IndexExpr
// produces against the current input.
type Index struct {
	Token    token.Token
	Target   Expression
	Index    Expression
	Optional bool
	Sp       span.Span
}

func (*Index) expressionNode()    {}
func (n *Index) Span() span.Span { return n.Sp }

// Slice is `EXPR[from:to]`; either bound may be nil.
type Slice struct {
	Token    token.Token
	Target   Expression
	From     Expression
	To       Expression
	Optional bool
	Sp       span.Span
}

func (*Slice) expressionNode()    {}
func (n *Slice) Span() span.Span { return n.Sp }

// Iterate is `EXPR[]`, enumerating every element/value of Target.
type Iterate struct {
	Token    token.Token
	Target   Expression
	Optional bool
	Sp       span.Span
}

func (*Iterate) expressionNode()    {}
func (n *Iterate) Span() span.Span { return n.Sp }

// ArrayConstruct is `[ EXPR ]`; Body is nil for the empty array `[]`.
type ArrayConstruct struct {
	Token token.Token
	Body  Expression
	Sp    span.Span
}

func (*ArrayConstruct) expressionNode()    {}
func (n *ArrayConstruct) Span() span.Span { return n.Sp }

// ObjectConstruct is `{ entry, entry, ... }`.
type ObjectConstruct struct {
	Token   token.Token
	Entries []ObjectEntry
	Sp      span.Span
}

// ObjectEntry is one `key: value` (or `key` shorthand) pair. Key is
// always an expression (a bare identifier/keyword, a string literal
// possibly interpolated, a variable, or a parenthesized computed key);
// Value is nil for the `{$x}` / `{foo}` shorthand forms, meaning "look up
// the key's value the shorthand way".
type ObjectEntry struct {
	Key   Expression
	Value Expression
}

func (*ObjectConstruct) expressionNode()    {}
func (n *ObjectConstruct) Span() span.Span { return n.Sp }

// Pipe is `L | R`.
type Pipe struct {
	Token       token.Token
	Left, Right Expression
	Sp          span.Span
}

func (*Pipe) expressionNode()    {}
func (n *Pipe) Span() span.Span { return n.Sp }

// Comma is `L, R`.
type Comma struct {
	Token       token.Token
	Left, Right Expression
	Sp          span.Span
}

func (*Comma) expressionNode()    {}
func (n *Comma) Span() span.Span { return n.Sp }

// Alternative is `L // R`.
type Alternative struct {
	Token       token.Token
	Left, Right Expression
	Sp          span.Span
}

func (*Alternative) expressionNode()    {}
func (n *Alternative) Span() span.Span { return n.Sp }

// Unary is a prefix `-EXPR`.
type Unary struct {
	Token    token.Token
	Operator token.Type
	Operand  Expression
	Sp       span.Span
}

func (*Unary) expressionNode()    {}
func (n *Unary) Span() span.Span { return n.Sp }

// Binary is an arithmetic or comparison operator.
type Binary struct {
	Token       token.Token
	Operator    token.Type
	Left, Right Expression
	Sp          span.Span
}

func (*Binary) expressionNode()    {}
func (n *Binary) Span() span.Span { return n.Sp }

// Boolean is `and`/`or`, kept distinct from Binary so the evaluator can
// short-circuit without inspecting an operator string.
type Boolean struct {
	Token       token.Token
	Operator    token.Type // token.AND or token.OR
	Left, Right Expression
	Sp          span.Span
}

func (*Boolean) expressionNode()    {}
func (n *Boolean) Span() span.Span { return n.Sp }

// If is `if COND then THEN (elif COND then BODY)* (else ELSE)? end`.
type If struct {
	Token token.Token
	Cond  Expression
	Then  Expression
	Elifs []ElifBranch
	Else  Expression // nil means "else ." per jq semantics
	Sp    span.Span
}

// ElifBranch is one `elif COND then BODY` clause.
type ElifBranch struct {
	Cond Expression
	Body Expression
}

func (*If) expressionNode()    {}
func (n *If) Span() span.Span { return n.Sp }

// Bind is `SOURCE as $name (?// $alt)* | BODY`. Patterns holds every
// alternative destructuring pattern in a `?//` chain (length 1 in the
// common case).
type Bind struct {
	Token    token.Token
	Source   Expression
	Patterns []Pattern
	Body     Expression
	Sp       span.Span
}

func (*Bind) expressionNode()    {}
func (n *Bind) Span() span.Span { return n.Sp }

// Pattern is a destructuring pattern for `as`: a plain variable, an array
// pattern, or an object pattern (whose entries may themselves bind
// sub-patterns).
type Pattern struct {
	Var     string        // non-empty for a plain $name pattern
	Array   []Pattern     // non-nil for an array destructuring pattern
	Object  []ObjectPatEntry
}

// ObjectPatEntry is one `key: subpattern` (or `$name` shorthand) entry of
// an object destructuring pattern.
type ObjectPatEntry struct {
	Key     Expression // evaluated against the current input to get the field name
	Pattern Pattern
}

// Call is a function call, builtin or user-defined, resolved by
// (Name, len(Args)) at validation time.
type Call struct {
	Token token.Token
	Name  string
	Args  []Expression
	Sp    span.Span
}

func (*Call) expressionNode()    {}
func (n *Call) Span() span.Span { return n.Sp }

// FuncDef is `def name(params): body; rest`. Rest is the remainder of the
// program the definition scopes over; nil means the def is the last thing
// in its scope (equivalent to `rest` being identity).
type FuncDef struct {
	Token  token.Token
	Name   string
	Params []string
	Body   Expression
	Rest   Expression
	Sp     span.Span
}

func (*FuncDef) expressionNode()    {}
func (n *FuncDef) Span() span.Span { return n.Sp }

// Label is `label $name | body`.
type Label struct {
	Token token.Token
	Name  string
	Body  Expression
	Sp    span.Span
}

func (*Label) expressionNode()    {}
func (n *Label) Span() span.Span { return n.Sp }

// Break is `break $name`.
type Break struct {
	Token token.Token
	Name  string
	Sp    span.Span
}

func (*Break) expressionNode()    {}
func (n *Break) Span() span.Span { return n.Sp }

// Reduce is `reduce SOURCE as $name (INIT; UPDATE)`.
type Reduce struct {
	Token  token.Token
	Source Expression
	Var    string
	Init   Expression
	Update Expression
	Sp     span.Span
}

func (*Reduce) expressionNode()    {}
func (n *Reduce) Span() span.Span { return n.Sp }

// Foreach is `foreach SOURCE as $name (INIT; UPDATE; EXTRACT)`. Extract is
// nil for the two-clause form, where EXTRACT defaults to the updated
// accumulator.
type Foreach struct {
	Token   token.Token
	Source  Expression
	Var     string
	Init    Expression
	Update  Expression
	Extract Expression
	Sp      span.Span
}

func (*Foreach) expressionNode()    {}
func (n *Foreach) Span() span.Span { return n.Sp }

// TryCatch is `try BODY` or `try BODY catch HANDLER`. Handler is nil for
// the bare `try` form (equivalent to `try BODY catch empty`) and for the
// postfix `EXPR?` sugar the parser desugars into this node.
type TryCatch struct {
	Token   token.Token
	Body    Expression
	Handler Expression
	Sp      span.Span
}

func (*TryCatch) expressionNode()    {}
func (n *TryCatch) Span() span.Span { return n.Sp }

// Assign is `LHS op RHS` for op in `= |= += -= *= /= %= //=`.
type Assign struct {
	Token    token.Token
	Operator token.Type
	LHS      Expression
	RHS      Expression
	Sp       span.Span
}

func (*Assign) expressionNode()    {}
func (n *Assign) Span() span.Span { return n.Sp }
