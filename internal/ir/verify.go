package ir

import (
	"fmt"
	"slices"
)

// Verification problem codes (V001-V099)
const (
	VerifyBlockParent     = "V001" // block not owned by the method listing it
	VerifyNoTerminator    = "V002" // block does not end in a terminator
	VerifyMisplacedTerm   = "V003" // terminator before the end of a block
	VerifyInstParent      = "V004" // instruction not owned by the block listing it
	VerifyDroppedOperand  = "V005" // operand slot holds no value
	VerifyUseDef          = "V006" // use-set and operand list disagree
	VerifyOperandType     = "V007" // operand no longer satisfies its slot
	VerifyForeignOperand  = "V008" // operand belongs to another method
	VerifyMisplacedPhi    = "V009" // phi after a non-phi instruction
	VerifyPhiPredecessor  = "V010" // phi incoming block is not a predecessor
	VerifyDetachedOperand = "V011" // operand instruction is not in any block
)

// Problem is one verification failure.
type Problem struct {
	Code    string `json:"code"`
	Method  string `json:"method"`
	Block   string `json:"block,omitempty"`
	Inst    string `json:"inst,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (p Problem) Error() string {
	loc := p.Method
	if p.Block != "" {
		loc += " " + p.Block
	}
	if p.Inst != "" {
		loc += ": " + p.Inst
	}
	return fmt.Sprintf("[%s] %s: %s", p.Code, loc, p.Message)
}

// Verify checks the body of a resolved method for structural and use/def
// consistency. It returns every problem found; unresolved methods have
// none.
func Verify(m *Method) []Problem {
	if !m.resolved {
		return nil
	}
	v := &verifier{method: m}
	v.run()
	return v.problems
}

// VerifyModule verifies every resolved method of every mutable klass.
func VerifyModule(mod *Module) []Problem {
	var out []Problem
	for _, k := range mod.Klasses() {
		if !k.mutable {
			continue
		}
		for m := range k.methods.All() {
			out = append(out, Verify(m)...)
		}
	}
	return out
}

type verifier struct {
	method   *Method
	block    *BasicBlock
	inst     Instruction
	problems []Problem
}

func (v *verifier) report(code, format string, args ...any) {
	p := Problem{Code: code, Method: v.method.Signature(), Message: fmt.Sprintf(format, args...)}
	if v.block != nil {
		p.Block = DefaultNamer(v.block)
	}
	if v.inst != nil {
		p.Inst = v.inst.String()
	}
	v.problems = append(v.problems, p)
}

func (v *verifier) run() {
	for b := range v.method.blocks.All() {
		v.block, v.inst = b, nil
		if b.parent != v.method {
			v.report(VerifyBlockParent, "block parent is %v", b.parent)
		}
		v.checkBlock(b)
	}
	v.block, v.inst = nil, nil
	for _, a := range v.method.arguments {
		v.checkUses(a)
	}
	for l := range v.method.locals.All() {
		v.checkUses(l)
	}
}

func (v *verifier) checkBlock(b *BasicBlock) {
	if _, ok := b.insts.Last().(Terminator); !ok {
		v.report(VerifyNoTerminator, "block does not end in a terminator")
	}
	v.checkUses(b)
	seenNonPhi := false
	for inst := range b.insts.All() {
		v.inst = inst
		if inst.Parent() != b {
			v.report(VerifyInstParent, "instruction parent is %v", inst.Parent())
		}
		if _, ok := inst.(Terminator); ok && inst != b.insts.Last() {
			v.report(VerifyMisplacedTerm, "terminator is not the last instruction")
		}
		if phi, ok := inst.(*PhiInst); ok {
			if seenNonPhi {
				v.report(VerifyMisplacedPhi, "phi follows a non-phi instruction")
			}
			preds := b.Predecessors()
			for _, in := range phi.Incoming() {
				if !slices.Contains(preds, in.Block) {
					v.report(VerifyPhiPredecessor, "%s is not a predecessor", DefaultNamer(in.Block))
				}
			}
		} else {
			seenNonPhi = true
		}
		v.checkOperands(inst)
		v.checkUses(inst)
	}
	v.inst = nil
}

func (v *verifier) checkOperands(u User) {
	st := u.userState()
	for i, use := range st.operands {
		if use.index != i || use.user != u {
			v.report(VerifyUseDef, "operand %d: use records slot %d", i, use.index)
		}
		if use.value == nil {
			v.report(VerifyDroppedOperand, "operand %d has been dropped", i)
			continue
		}
		if !slices.Contains(use.value.base().uses, use) {
			v.report(VerifyUseDef, "operand %d: use missing from the use-set of %s", i, Ref(use.value, nil))
		}
		if err := u.checkOperand(i, use.value); err != nil {
			v.report(VerifyOperandType, "operand %d: %v", i, err)
		}
		if owner := v.ownerOf(use.value); owner != nil && owner != v.method {
			v.report(VerifyForeignOperand, "operand %d belongs to %s", i, owner.Signature())
		}
		if inst, ok := use.value.(Instruction); ok && inst.Parent() == nil {
			v.report(VerifyDetachedOperand, "operand %d is a detached instruction", i)
		}
	}
}

// checkUses confirms every use in the use-set of val points back at val.
func (v *verifier) checkUses(val Value) {
	for _, use := range val.base().uses {
		if use.value != val {
			v.report(VerifyUseDef, "use-set of %s holds a use of %s", Ref(val, nil), Ref(use.value, nil))
			continue
		}
		ops := use.user.userState().operands
		if use.index >= len(ops) || ops[use.index] != use {
			v.report(VerifyUseDef, "use-set of %s holds a stale use", Ref(val, nil))
		}
	}
}

// ownerOf returns the method a method-local value belongs to, or nil for
// module-level values.
func (v *verifier) ownerOf(val Value) *Method {
	switch x := val.(type) {
	case *Argument:
		return x.method
	case *LocalVariable:
		return x.parent
	case *BasicBlock:
		return x.parent
	case Instruction:
		if b := x.Parent(); b != nil {
			return b.parent
		}
	}
	return nil
}
