package operations

import (
	"fmt"

	"github.com/example/kigalisim/internal/engine"
	"github.com/example/kigalisim/internal/quantity"
)

// Kind tags which Engine command an Operation dispatches to. A tagged
// variant plus a single Apply entry point mirrors the recalculation graph's
// own Kind+execute shape rather than one interface
// implementation per command.
type Kind int

const (
	SetStream Kind = iota
	ChangeStream
	Cap
	Floor
	Recharge
	Retire
	Recover
	Replace
	Equals
	Enable
	SetInitialCharge
)

// Operation is one typed command against a target (application, substance),
// as produced by a parsed script: an ordered list of typed operations each
// naming its target. Fields not used by a given Kind are left zero.
type Operation struct {
	Kind Kind

	Stanza      string
	Application string
	Substance   string

	// Stream is the target stream name for SetStream/ChangeStream/Cap/Floor,
	// or the source stream for Replace.
	Stream string

	// Channel names the sales channel for SetInitialCharge ("manufacture",
	// "import", or "sales"). "sales" writes only the sales channel's own
	// entry; it does not set the manufacture or import entries.
	Channel string

	// DisplaceTarget names the substance Cap/Floor routes excess/deficit
	// units to; empty means no displacement.
	DisplaceTarget string

	// DestSubstance names the substance Replace moves volume into.
	DestSubstance string

	// Propagate controls whether SetStream runs the stream's recalculation
	// chain after writing (Engine.SetStream's propagate argument). It is
	// unrelated to a stream's enabled flag: Keeper.Set always marks the
	// written stream enabled regardless of this field.
	Propagate bool

	// Value is the primary arithmetic argument (the stream value, the
	// change delta, the cap/floor limit, the recharge population, the
	// retirement rate, the recovered amount, the replaced amount, or the
	// GHG intensity, depending on Kind).
	Value Expr

	// Secondary is a second argument: recharge's intensity, or recover's
	// yield rate.
	Secondary Expr

	// Tertiary is a third argument: recover's displacement rate.
	Tertiary Expr

	YearMatcher engine.YearMatcher
}

// Apply sets the target scope on e and dispatches to the Engine method
// matching op.Kind.
func (op Operation) Apply(e *engine.Engine) error {
	if op.Stanza != "" {
		e.SetStanza(op.Stanza)
	}
	e.SetApplication(op.Application)
	e.SetSubstance(op.Substance)

	switch op.Kind {
	case SetStream:
		v, err := op.Value.Eval(e)
		if err != nil {
			return err
		}
		return e.SetStream(op.Stream, v, op.YearMatcher, op.Propagate)

	case ChangeStream:
		v, err := op.Value.Eval(e)
		if err != nil {
			return err
		}
		return e.ChangeStream(op.Stream, v, op.YearMatcher)

	case Cap:
		v, err := op.Value.Eval(e)
		if err != nil {
			return err
		}
		return e.Cap(op.Stream, v, op.YearMatcher, op.DisplaceTarget)

	case Floor:
		v, err := op.Value.Eval(e)
		if err != nil {
			return err
		}
		return e.Floor(op.Stream, v, op.YearMatcher, op.DisplaceTarget)

	case Recharge:
		population, err := op.Value.Eval(e)
		if err != nil {
			return err
		}
		intensity, err := op.Secondary.Eval(e)
		if err != nil {
			return err
		}
		return e.Recharge(population, intensity, op.YearMatcher)

	case Retire:
		rate, err := op.Value.Eval(e)
		if err != nil {
			return err
		}
		return e.Retire(rate, op.YearMatcher)

	case Recover:
		amount, err := op.Value.Eval(e)
		if err != nil {
			return err
		}
		yield, err := op.Secondary.Eval(e)
		if err != nil {
			return err
		}
		// Tertiary (displacement) is optional; Engine.Recover defaults it
		// itself when given a zero-value Quantity, so an empty Expr here
		// must not be force-evaluated into an "empty expression" error.
		var displacement quantity.Quantity
		if len(op.Tertiary) > 0 {
			displacement, err = op.Tertiary.Eval(e)
			if err != nil {
				return err
			}
		}
		return e.Recover(amount, yield, displacement, op.YearMatcher)

	case Replace:
		amount, err := op.Value.Eval(e)
		if err != nil {
			return err
		}
		return e.Replace(amount, op.Stream, op.DestSubstance, op.YearMatcher)

	case Equals:
		intensity, err := op.Value.Eval(e)
		if err != nil {
			return err
		}
		return e.Equals(intensity, op.YearMatcher)

	case Enable:
		return e.Enable(op.Stream, op.YearMatcher)

	case SetInitialCharge:
		v, err := op.Value.Eval(e)
		if err != nil {
			return err
		}
		return e.SetInitialCharge(v, op.Channel, op.YearMatcher)

	default:
		return fmt.Errorf("operations: unknown kind %d", op.Kind)
	}
}

// Program is the ordered list of Operations a parsed script produces for a
// single stanza pass. Apply does not filter by YearMatcher: every Operation
// is dispatched in order, and the Engine's command layer checks each
// matcher itself. It exists so callers apply a whole program in one call
// per year rather than looping by hand in internal/runner.
type Program []Operation

// Apply runs every Operation in the program against e, stopping at the
// first error.
func (p Program) Apply(e *engine.Engine) error {
	for i, op := range p {
		if err := op.Apply(e); err != nil {
			return fmt.Errorf("operations: step %d (%s/%s): %w", i, op.Application, op.Substance, err)
		}
	}
	return nil
}
