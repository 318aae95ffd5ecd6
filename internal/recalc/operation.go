package recalc

import (
	"fmt"

	"github.com/example/kigalisim/internal/decimalx"
	"github.com/example/kigalisim/internal/streams"
)

// Operation is an ordered, already-validated list of Steps: "one primary
// recalc then zero or more propagations".
type Operation struct {
	steps []Step
}

// Run executes every step in order against key, stopping at the first step
// that fails. Steps pass values to later steps (like RetireRecalc's
// retired-unit count) only through the Stream Keeper.
func (op Operation) Run(kit *Kit, key streams.UseKey, yearsElapsed decimalx.D) error {
	for _, step := range op.steps {
		if err := step.execute(kit, key, yearsElapsed); err != nil {
			return fmt.Errorf("recalc: %s step failed: %w", step.Kind, err)
		}
	}
	return nil
}

// Builder assembles an Operation, enforcing exactly one primary recalc
// followed by zero or more propagations.
type Builder struct {
	primarySet bool
	steps      []Step
}

// NewBuilder starts a new Operation build.
func NewBuilder() *Builder {
	return &Builder{}
}

// Primary sets the operation's single primary recalc. Calling it twice
// panics: that is a programming error in the caller's chain construction,
// not a runtime condition.
func (b *Builder) Primary(kind Kind) *Builder {
	return b.PrimaryWithOptions(kind, false)
}

// PrimaryWithOptions sets the primary recalc, additionally configuring
// PopulationChange's subtractRecharge flag.
func (b *Builder) PrimaryWithOptions(kind Kind, subtractRecharge bool) *Builder {
	if b.primarySet {
		panic("recalc: Builder.Primary called more than once")
	}
	b.primarySet = true
	b.steps = append(b.steps, Step{Kind: kind, SubtractRecharge: subtractRecharge})
	return b
}

// ThenPropagate appends a propagation step. It must follow a Primary call.
func (b *Builder) ThenPropagate(kind Kind) *Builder {
	return b.ThenPropagatePopulationChange(kind, false)
}

// ThenPropagatePopulationChange appends a propagation step, configuring
// PopulationChange's subtractRecharge flag when kind is PopulationChange.
func (b *Builder) ThenPropagatePopulationChange(kind Kind, subtractRecharge bool) *Builder {
	if !b.primarySet {
		panic("recalc: Builder.ThenPropagate called before Primary")
	}
	b.steps = append(b.steps, Step{Kind: kind, SubtractRecharge: subtractRecharge})
	return b
}

// Build finalizes the Operation. It fails if no primary step was set.
func (b *Builder) Build() (Operation, error) {
	if !b.primarySet {
		return Operation{}, fmt.Errorf("recalc: cannot build an Operation with no primary step")
	}
	return Operation{steps: b.steps}, nil
}
