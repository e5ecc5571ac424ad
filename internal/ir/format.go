package ir

import "strings"

// Namer renders a reference to a local value (argument, block, local
// variable, instruction or placeholder).
type Namer func(Value) string

// DefaultNamer renders "%name", or "%<unnamed>" for values without a name.
func DefaultNamer(v Value) string {
	if v.Name() == "" {
		return "%<unnamed>"
	}
	return "%" + v.Name()
}

// Ref renders an operand: constants by value, fields and methods by their
// qualified names, everything else through namer.
func Ref(v Value, namer Namer) string {
	if namer == nil {
		namer = DefaultNamer
	}
	switch x := v.(type) {
	case nil:
		return "<dropped>"
	case *Constant:
		return x.String()
	case *Field:
		return x.String()
	case *Method:
		return x.Signature()
	}
	return namer(v)
}

// FormatInstruction renders inst on one line, e.g.
//
//	%sum = add int %a, %b
//	branch lt %i, %n, %loop, %exit
//
// A nil namer uses DefaultNamer.
func FormatInstruction(inst Instruction, namer Namer) string {
	if namer == nil {
		namer = DefaultNamer
	}
	ref := func(v Value) string { return Ref(v, namer) }
	refs := func(vs []Value) string {
		parts := make([]string, len(vs))
		for i, v := range vs {
			parts[i] = ref(v)
		}
		return strings.Join(parts, ", ")
	}

	var sb strings.Builder
	if _, void := inst.Type().(*VoidType); !void {
		sb.WriteString(namer(inst))
		sb.WriteString(" = ")
	}
	if b, ok := inst.(*BinaryInst); ok {
		sb.WriteString(b.Op().String())
	} else {
		sb.WriteString(inst.Opcode().String())
	}

	switch x := inst.(type) {
	case *BinaryInst:
		sb.WriteString(" " + x.Type().String() + " " + refs(x.Operands()))
	case *BranchInst:
		sb.WriteString(" " + x.Sense().String() + " " + refs(x.Operands()))
	case *JumpInst:
		sb.WriteString(" " + ref(x.Operand(0)))
	case *SwitchInst:
		sb.WriteString(" " + ref(x.Operand(0)) + ", default " + ref(x.Operand(1)) + " [")
		for i, c := range x.Cases() {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(ref(c.Key) + ": " + blockRef(c.Target, namer))
		}
		sb.WriteString("]")
	case *ReturnInst:
		if v := x.Value(); v != nil {
			sb.WriteString(" " + ref(v))
		}
	case *ThrowInst:
		sb.WriteString(" " + ref(x.Exception()))
	case *CallInst:
		sb.WriteString(" " + ref(x.Operand(0)) + "(" + refs(x.Arguments()) + ")")
		if callee, ok := x.Operand(0).(*Method); ok && callee.IsSignaturePolymorphic() {
			sb.WriteString(" as " + x.MethodType().Descriptor())
		}
	case *CastInst:
		sb.WriteString(" " + ref(x.Value()) + " to " + x.Type().String())
	case *InstanceofInst:
		sb.WriteString(" " + ref(x.Value()) + ", " + x.TestType().String())
	case *NewArrayInst:
		sb.WriteString(" " + x.Type().String() + " [" + refs(x.Operands()) + "]")
	case *ArrayLengthInst:
		sb.WriteString(" " + ref(x.Array()))
	case *ArrayLoadInst:
		sb.WriteString(" " + ref(x.Array()) + "[" + ref(x.Index()) + "]")
	case *ArrayStoreInst:
		sb.WriteString(" " + ref(x.Array()) + "[" + ref(x.Index()) + "], " + ref(x.Data()))
	case *LoadInst:
		sb.WriteString(" " + ref(x.Location()))
		if inst := x.Instance(); inst != nil {
			sb.WriteString(", " + ref(inst))
		}
	case *StoreInst:
		sb.WriteString(" " + ref(x.Location()) + ", " + ref(x.Data()))
		if inst := x.Instance(); inst != nil {
			sb.WriteString(", " + ref(inst))
		}
	case *PhiInst:
		sb.WriteString(" " + x.Type().String() + " [")
		for i, in := range x.Incoming() {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(blockRef(in.Block, namer) + ": " + ref(in.Value))
		}
		sb.WriteString("]")
	}
	return sb.String()
}

func blockRef(b *BasicBlock, namer Namer) string {
	if b == nil {
		return "<dropped>"
	}
	return Ref(b, namer)
}
