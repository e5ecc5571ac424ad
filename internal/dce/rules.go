package dce

import (
	"fmt"

	"github.com/roach88/bcir/internal/ir"
)

// Rule names one rewrite.
type Rule int

const (
	UnusedInstructions Rule = iota
	BoxUnbox
	DeadCasts
	DeadStores
	UnusedPureCalls
	UselessPhis
)

// Rules lists every rule in application order.
var Rules = []Rule{UnusedInstructions, DeadCasts, DeadStores, BoxUnbox, UnusedPureCalls, UselessPhis}

var ruleNames = [...]string{
	UnusedInstructions: "unused-instructions",
	BoxUnbox:           "box-unbox",
	DeadCasts:          "dead-casts",
	DeadStores:         "dead-stores",
	UnusedPureCalls:    "unused-pure-calls",
	UselessPhis:        "useless-phis",
}

func (r Rule) String() string {
	if r < 0 || int(r) >= len(ruleNames) {
		return fmt.Sprintf("Rule(%d)", int(r))
	}
	return ruleNames[r]
}

// ParseRule resolves a rule by its String form.
func ParseRule(name string) (Rule, error) {
	for i, n := range ruleNames {
		if n == name {
			return Rule(i), nil
		}
	}
	return 0, fmt.Errorf("unknown dce rule %q", name)
}

// Block applies r alone to b with the default eliminator.
func (r Rule) Block(b *ir.BasicBlock) (bool, error) { return std.RuleBlock(r, b) }

// Method applies r alone to m with the default eliminator.
func (r Rule) Method(m *ir.Method) (bool, error) { return std.RuleMethod(r, m) }

func (e *Eliminator) ruleFunc(r Rule) func(ir.Instruction) (bool, error) {
	switch r {
	case UnusedInstructions:
		return removeUnused
	case BoxUnbox:
		return e.removeBoxUnbox
	case DeadCasts:
		return removeDeadCast
	case DeadStores:
		return removeDeadStore
	case UnusedPureCalls:
		return e.removePureCall
	case UselessPhis:
		return removeUselessPhi
	}
	return func(ir.Instruction) (bool, error) { return false, nil }
}

func removeUnused(inst ir.Instruction) (bool, error) {
	if inst.NumUses() > 0 || !sideEffectFree(inst) {
		return false, nil
	}
	return true, inst.EraseFromParent()
}

// sideEffectFree reports whether erasing an unused inst cannot change
// behavior. Integral division may throw unless the divisor is a known
// nonzero constant.
func sideEffectFree(inst ir.Instruction) bool {
	switch i := inst.(type) {
	case *ir.BinaryInst:
		if i.Op() != ir.Div && i.Op() != ir.Rem {
			return true
		}
		pt, ok := i.Type().(*ir.PrimitiveType)
		if !ok || !pt.IsIntegral() {
			return true
		}
		return knownNonZero(i.Right())
	case *ir.LoadInst:
		return i.IsLocal()
	case *ir.PhiInst, *ir.InstanceofInst:
		return true
	}
	return false
}

func knownNonZero(v ir.Value) bool {
	c, ok := v.(*ir.Constant)
	if !ok {
		return false
	}
	n, ok := c.Int64()
	return ok && n != 0
}

func (e *Eliminator) removeBoxUnbox(inst ir.Instruction) (bool, error) {
	unbox, ok := inst.(*ir.CallInst)
	if !ok || unbox.NumArguments() != 1 {
		return false, nil
	}
	box, ok := e.unbox[unbox.Method().Signature()]
	if !ok {
		return false, nil
	}
	inner, ok := unbox.Argument(0).(*ir.CallInst)
	if !ok || inner.NumArguments() != 1 || inner.Method().Signature() != box {
		return false, nil
	}
	// valueOf narrows a wider int argument, so the raw value only stands
	// in for the unboxed one when it already has the unboxed type.
	raw := inner.Argument(0)
	if !raw.Type().IsSubtypeOf(unbox.Type()) {
		return false, nil
	}
	return true, unbox.ReplaceInstWithValue(raw)
}

func removeDeadCast(inst ir.Instruction) (bool, error) {
	c, ok := inst.(*ir.CastInst)
	if !ok || c.Value() == nil || c.Type() != c.Value().Type() {
		return false, nil
	}
	return true, c.ReplaceInstWithValue(c.Value())
}

// removeDeadStore erases a local store when no instruction that can run
// after it loads the same variable.
func removeDeadStore(inst ir.Instruction) (bool, error) {
	st, ok := inst.(*ir.StoreInst)
	if !ok || !st.IsLocal() {
		return false, nil
	}
	loc := st.Location()
	for _, f := range followers(st) {
		if ld, ok := f.(*ir.LoadInst); ok && ld.Location() == loc {
			return false, nil
		}
	}
	return true, st.EraseFromParent()
}

// followers returns the instructions after inst in its block, then every
// instruction of every block reachable from it. The starting block is
// included in full when it is reachable from itself.
func followers(inst ir.Instruction) []ir.Instruction {
	b := inst.Parent()
	list := b.Instructions()
	var out []ir.Instruction
	for n := list.Next(inst); n != nil; n = list.Next(n) {
		out = append(out, n)
	}
	seen := map[*ir.BasicBlock]bool{}
	work := b.Successors()
	for len(work) > 0 {
		s := work[0]
		work = work[1:]
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s.Instructions().Slice()...)
		work = append(work, s.Successors()...)
	}
	return out
}

func (e *Eliminator) removePureCall(inst ir.Instruction) (bool, error) {
	c, ok := inst.(*ir.CallInst)
	if !ok || c.NumUses() > 0 || !e.pure[c.Method().Signature()] {
		return false, nil
	}
	return true, c.EraseFromParent()
}

func removeUselessPhi(inst ir.Instruction) (bool, error) {
	phi, ok := inst.(*ir.PhiInst)
	if !ok {
		return false, nil
	}
	in := phi.IncomingValues()
	if len(in) == 1 && in[0] != ir.Value(phi) && in[0] != nil {
		return true, phi.ReplaceInstWithValue(in[0])
	}
	srcs := phiSources(phi)
	if len(srcs) != 1 {
		return false, nil
	}
	return true, phi.ReplaceInstWithValue(srcs[0])
}

// phiSources collects the distinct non-phi values reachable through phi
// inputs starting at p.
func phiSources(p *ir.PhiInst) []ir.Value {
	seen := map[ir.Value]bool{p: true}
	var out []ir.Value
	work := []*ir.PhiInst{p}
	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		for _, v := range cur.IncomingValues() {
			if v == nil || seen[v] {
				continue
			}
			seen[v] = true
			if next, ok := v.(*ir.PhiInst); ok {
				work = append(work, next)
				continue
			}
			out = append(out, v)
		}
	}
	return out
}
