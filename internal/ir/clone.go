package ir

// Clone creates a detached instruction structurally identical to inst, with
// every operand passed through mapping. A nil mapping, or a mapping that
// returns nil, keeps the original operand. The clone carries inst's name.
func Clone(inst Instruction, mapping func(Value) Value) (Instruction, error) {
	if inst == nil {
		return nil, typeErrorf("Clone", "instruction is nil")
	}
	m := func(v Value) Value {
		if v == nil || mapping == nil {
			return v
		}
		if r := mapping(v); r != nil {
			return r
		}
		return v
	}
	c, err := cloneInst(inst, m)
	if err != nil {
		return nil, err
	}
	c.base().name = inst.Name()
	return c, nil
}

func cloneInst(inst Instruction, m func(Value) Value) (Instruction, error) {
	switch x := inst.(type) {
	case *BinaryInst:
		return NewBinary(m(x.Left()), x.binop, m(x.Right()))
	case *BranchInst:
		then, err := asBlock(m(x.Then()))
		if err != nil {
			return nil, err
		}
		otherwise, err := asBlock(m(x.Else()))
		if err != nil {
			return nil, err
		}
		return NewBranch(m(x.Left()), x.sense, m(x.Right()), then, otherwise)
	case *JumpInst:
		target, err := asBlock(m(x.Target()))
		if err != nil {
			return nil, err
		}
		return NewJump(target)
	case *SwitchInst:
		return cloneSwitch(x, m)
	case *ReturnInst:
		if x.Value() == nil {
			return NewReturn(x.returnType, nil)
		}
		return NewReturn(x.returnType, m(x.Value()))
	case *ThrowInst:
		return NewThrow(m(x.Exception()))
	case *CallInst:
		callee, ok := m(x.Method()).(*Method)
		if !ok {
			return nil, typeErrorf("Clone", "callee must map to a method")
		}
		args := make([]Value, x.NumArguments())
		for i, a := range x.Arguments() {
			args[i] = m(a)
		}
		return NewCallWithType(callee, x.methodType, args...)
	case *CastInst:
		return NewCast(x.Target(), m(x.Value()))
	case *InstanceofInst:
		return NewInstanceof(x.test, m(x.Value()))
	case *NewArrayInst:
		dims := make([]Value, x.NumOperands())
		for i, d := range x.Operands() {
			dims[i] = m(d)
		}
		return NewNewArray(x.ArrayType(), dims...)
	case *ArrayLengthInst:
		return NewArrayLength(m(x.Array()))
	case *ArrayLoadInst:
		return NewArrayLoad(m(x.Array()), m(x.Index()))
	case *ArrayStoreInst:
		return NewArrayStore(m(x.Array()), m(x.Index()), m(x.Data()))
	case *LoadInst:
		var instance Value
		if x.Instance() != nil {
			instance = m(x.Instance())
		}
		return newLoad(m(x.Location()), instance)
	case *StoreInst:
		var instance Value
		if x.Instance() != nil {
			instance = m(x.Instance())
		}
		return newStore(m(x.Location()), m(x.Data()), instance)
	case *PhiInst:
		return clonePhi(x, m)
	}
	return nil, unsupportedErrorf("Clone", "unknown instruction %T", inst)
}

func cloneSwitch(x *SwitchInst, m func(Value) Value) (*SwitchInst, error) {
	def, err := asBlock(m(x.Default()))
	if err != nil {
		return nil, err
	}
	s, err := NewSwitch(m(x.Value()), def)
	if err != nil {
		return nil, err
	}
	for _, c := range x.Cases() {
		key, ok := m(c.Key).(*Constant)
		if !ok {
			s.DropAllOperands()
			return nil, typeErrorf("Clone", "switch case %s must map to a constant", c.Key)
		}
		target, err := asBlock(m(c.Target))
		if err == nil {
			_, err = s.Put(key, target)
		}
		if err != nil {
			s.DropAllOperands()
			return nil, err
		}
	}
	return s, nil
}

func clonePhi(x *PhiInst, m func(Value) Value) (*PhiInst, error) {
	p, err := NewPhi(x.typ.(RegularType))
	if err != nil {
		return nil, err
	}
	for _, in := range x.Incoming() {
		b, err := asBlock(m(in.Block))
		if err == nil {
			_, err = p.Put(b, m(in.Value))
		}
		if err != nil {
			p.DropAllOperands()
			return nil, err
		}
	}
	return p, nil
}

func asBlock(v Value) (*BasicBlock, error) {
	b, ok := v.(*BasicBlock)
	if !ok {
		return nil, typeErrorf("Clone", "block operand must map to a basic block")
	}
	return b, nil
}
