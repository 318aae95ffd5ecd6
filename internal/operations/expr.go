// Package operations implements the thin adapter layer between a parsed
// script's command tree and the Engine: each
// Operation evaluates its arithmetic subtree onto a small stack machine,
// then calls the corresponding engine method with a year matcher that gates
// application by the current simulation year.
package operations

import (
	"fmt"

	"github.com/example/kigalisim/internal/decimalx"
	"github.com/example/kigalisim/internal/engine"
	"github.com/example/kigalisim/internal/quantity"
)

// exprOp is a single stack-machine instruction.
type exprOp int

const (
	opPush exprOp = iota
	opVar
	opAdd
	opSub
	opMul
	opDiv
	opNeg
)

// instr is one step of an Expr's postfix program.
type instr struct {
	op    exprOp
	value quantity.Quantity // for opPush
	name  string            // for opVar
}

// Expr is a postfix ("reverse Polish") arithmetic program that evaluates to
// a single Quantity against an Engine's current variable scope. Building an
// Expr by appending sub-expressions followed by an operator instruction
// keeps evaluation a straight-line stack walk with no recursion or parser
// state.
type Expr []instr

// Literal returns an Expr that evaluates to a fixed Quantity.
func Literal(q quantity.Quantity) Expr {
	return Expr{{op: opPush, value: q}}
}

// Var returns an Expr that evaluates to the named variable's current value
// in the engine's active stanza.
func Var(name string) Expr {
	return Expr{{op: opVar, name: name}}
}

// Add returns an Expr for a+b. Units are taken from a's operand; callers
// combining mismatched units should convert first.
func Add(a, b Expr) Expr { return combine(a, b, opAdd) }

// Sub returns an Expr for a-b.
func Sub(a, b Expr) Expr { return combine(a, b, opSub) }

// Mul returns an Expr for a*b. The result's units are the lexical
// combination of the two operands' units (internal/quantity.CombineMul).
func Mul(a, b Expr) Expr { return combine(a, b, opMul) }

// Div returns an Expr for a/b. The result's units are the lexical
// combination of the two operands' units (internal/quantity.CombineDiv).
func Div(a, b Expr) Expr { return combine(a, b, opDiv) }

// Neg returns an Expr for -a, preserving a's units.
func Neg(a Expr) Expr {
	out := make(Expr, 0, len(a)+1)
	out = append(out, a...)
	return append(out, instr{op: opNeg})
}

func combine(a, b Expr, op exprOp) Expr {
	out := make(Expr, 0, len(a)+len(b)+1)
	out = append(out, a...)
	out = append(out, b...)
	return append(out, instr{op: op})
}

// Eval runs the postfix program against e (for variable lookups) and
// returns the resulting Quantity.
func (ex Expr) Eval(e *engine.Engine) (quantity.Quantity, error) {
	var stack []quantity.Quantity

	pop := func() (quantity.Quantity, error) {
		if len(stack) == 0 {
			return quantity.Quantity{}, fmt.Errorf("operations: stack underflow")
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return top, nil
	}

	for _, ins := range ex {
		switch ins.op {
		case opPush:
			stack = append(stack, ins.value)
		case opVar:
			v, err := e.GetVariable(ins.name)
			if err != nil {
				return quantity.Quantity{}, fmt.Errorf("operations: variable %q: %w", ins.name, err)
			}
			stack = append(stack, v)
		case opAdd, opSub, opMul, opDiv:
			b, err := pop()
			if err != nil {
				return quantity.Quantity{}, err
			}
			a, err := pop()
			if err != nil {
				return quantity.Quantity{}, err
			}
			result, err := applyBinary(ins.op, a, b)
			if err != nil {
				return quantity.Quantity{}, err
			}
			stack = append(stack, result)
		case opNeg:
			a, err := pop()
			if err != nil {
				return quantity.Quantity{}, err
			}
			stack = append(stack, quantity.New(a.Value.Neg(), a.Units))
		default:
			return quantity.Quantity{}, fmt.Errorf("operations: unknown expr op %d", ins.op)
		}
	}

	result, err := pop()
	if err != nil {
		return quantity.Quantity{}, fmt.Errorf("operations: empty expression")
	}
	if len(stack) != 0 {
		return quantity.Quantity{}, fmt.Errorf("operations: expression left %d unconsumed values on the stack", len(stack))
	}
	return result, nil
}

func applyBinary(op exprOp, a, b quantity.Quantity) (quantity.Quantity, error) {
	switch op {
	case opAdd:
		return quantity.New(a.Value.Add(b.Value), a.Units), nil
	case opSub:
		return quantity.New(a.Value.Sub(b.Value), a.Units), nil
	case opMul:
		return quantity.New(a.Value.Mul(b.Value), quantity.CombineMul(a.Units, b.Units)), nil
	case opDiv:
		return quantity.New(decimalx.DivOrZero(a.Value, b.Value), quantity.CombineDiv(a.Units, b.Units)), nil
	default:
		return quantity.Quantity{}, fmt.Errorf("operations: not a binary op: %d", op)
	}
}
