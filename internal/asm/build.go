package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/bcir/internal/ir"
)

// Load reads the program at path and builds its klasses into mod.
func Load(mod *ir.Module, path string) ([]*ir.Klass, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return build(mod, data, path)
}

// Parse builds the klasses of a program into mod and returns them in file
// order. On error mod may hold a partially built program.
func Parse(mod *ir.Module, data []byte) ([]*ir.Klass, error) {
	return build(mod, data, "")
}

type builder struct {
	mod  *ir.Module
	path string
}

type pendingPhi struct {
	phi    *ir.PhiInst
	inputs []string
	line   int
	text   string
	block  string
}

func build(mod *ir.Module, data []byte, path string) ([]*ir.Klass, error) {
	p, err := decode(data, path)
	if err != nil {
		return nil, err
	}
	b := &builder{mod: mod, path: path}

	klasses := make([]*ir.Klass, len(p.Klasses))
	for i := range p.Klasses {
		if klasses[i], err = b.klass(&p.Klasses[i]); err != nil {
			return nil, err
		}
	}
	methods := make([][]*ir.Method, len(p.Klasses))
	for i, kd := range p.Klasses {
		if methods[i], err = b.members(klasses[i], &kd); err != nil {
			return nil, err
		}
	}
	for i, kd := range p.Klasses {
		for j := range kd.Methods {
			if err := b.body(methods[i][j], &kd.Methods[j]); err != nil {
				return nil, err
			}
		}
	}
	return klasses, nil
}

func (b *builder) errorf(kd, md string, format string, args ...any) *Error {
	return &Error{Path: b.path, Klass: kd, Method: md, Message: fmt.Sprintf(format, args...)}
}

func (b *builder) klass(kd *klassDoc) (*ir.Klass, error) {
	mods, err := modifiers(kd.Modifiers, ir.Modifier.CanModifyClass)
	if err != nil {
		return nil, &Error{Path: b.path, Klass: kd.Name, Message: "bad modifiers", Err: err}
	}
	var super *ir.Klass
	if kd.Superclass != "" {
		if super, err = b.lookup(kd.Superclass); err != nil {
			return nil, &Error{Path: b.path, Klass: kd.Name, Message: "bad superclass", Err: err}
		}
	}
	var ifaces []*ir.Klass
	for _, name := range kd.Interfaces {
		in, err := b.lookup(name)
		if err != nil {
			return nil, &Error{Path: b.path, Klass: kd.Name, Message: "bad interface", Err: err}
		}
		ifaces = append(ifaces, in)
	}
	k, err := b.mod.NewKlass(kd.Name, super, ifaces, mods)
	if err != nil {
		return nil, &Error{Path: b.path, Klass: kd.Name, Message: "failed to create klass", Err: err}
	}
	return k, nil
}

func (b *builder) members(k *ir.Klass, kd *klassDoc) ([]*ir.Method, error) {
	for _, fd := range kd.Fields {
		t, err := b.regular(fd.Type)
		if err != nil {
			return nil, &Error{Path: b.path, Klass: kd.Name, Message: "field " + fd.Name, Err: err}
		}
		mods, err := modifiers(fd.Modifiers, ir.Modifier.CanModifyField)
		if err != nil {
			return nil, &Error{Path: b.path, Klass: kd.Name, Message: "field " + fd.Name, Err: err}
		}
		if _, err := k.NewField(t, fd.Name, mods); err != nil {
			return nil, &Error{Path: b.path, Klass: kd.Name, Message: "field " + fd.Name, Err: err}
		}
	}
	methods := make([]*ir.Method, 0, len(kd.Methods))
	for _, md := range kd.Methods {
		mods, err := modifiers(md.Modifiers, ir.Modifier.CanModifyMethod)
		if err != nil {
			return nil, &Error{Path: b.path, Klass: kd.Name, Method: md.Name, Message: "bad modifiers", Err: err}
		}
		m, err := k.NewMethodFromDescriptor(md.Name, md.Descriptor, mods)
		if err != nil {
			return nil, &Error{Path: b.path, Klass: kd.Name, Method: md.Name, Message: "failed to declare method", Err: err}
		}
		methods = append(methods, m)
	}
	return methods, nil
}

func (b *builder) body(m *ir.Method, md *methodDoc) error {
	kname := m.Klass().Name()
	mname := md.Name + md.Descriptor
	args := m.Arguments()
	if len(md.Arguments) > len(args) {
		return b.errorf(kname, mname, "%d argument names for %d arguments", len(md.Arguments), len(args))
	}
	for i, name := range md.Arguments {
		if err := args[i].SetName(name); err != nil {
			return &Error{Path: b.path, Klass: kname, Method: mname, Message: "bad argument name", Err: err}
		}
	}
	if len(md.Blocks) == 0 {
		if len(md.Locals) > 0 {
			return b.errorf(kname, mname, "locals declared without a body")
		}
		return nil
	}

	s := &scope{values: map[string]ir.Value{}}
	for _, a := range args {
		if err := s.define(a.Name(), a); err != nil {
			return b.errorf(kname, mname, "%v", err)
		}
	}
	for _, ld := range md.Locals {
		t, err := b.regular(ld.Type)
		if err != nil {
			return &Error{Path: b.path, Klass: kname, Method: mname, Message: "local " + ld.Name, Err: err}
		}
		v, err := m.NewLocal(t, ld.Name)
		if err != nil {
			return &Error{Path: b.path, Klass: kname, Method: mname, Message: "local " + ld.Name, Err: err}
		}
		if err := s.define(ld.Name, v); err != nil {
			return b.errorf(kname, mname, "%v", err)
		}
	}
	blocks := make([]*ir.BasicBlock, len(md.Blocks))
	for i, bd := range md.Blocks {
		bb, err := m.NewBlock(bd.Name)
		if err != nil {
			return &Error{Path: b.path, Klass: kname, Method: mname, Block: bd.Name, Message: "failed to create block", Err: err}
		}
		if err := s.define(bd.Name, bb); err != nil {
			return b.errorf(kname, mname, "%v", err)
		}
		blocks[i] = bb
	}

	var phis []pendingPhi
	for i, bd := range md.Blocks {
		for _, node := range bd.Code {
			fail := func(err error) error {
				return &Error{Path: b.path, Line: node.Line, Klass: kname, Method: mname, Block: bd.Name, Inst: node.Value, Message: "bad instruction", Err: err}
			}
			name, inst, rest, err := b.instruction(m, s, node.Value)
			if err != nil {
				return fail(err)
			}
			if name != "" {
				if err := inst.SetName(name); err != nil {
					return fail(err)
				}
				if err := s.define(name, inst); err != nil {
					return fail(err)
				}
			}
			if err := blocks[i].Append(inst); err != nil {
				return fail(err)
			}
			if phi, ok := inst.(*ir.PhiInst); ok {
				phis = append(phis, pendingPhi{phi: phi, inputs: rest, line: node.Line, text: node.Value, block: bd.Name})
			}
		}
	}
	for _, p := range phis {
		if err := b.phiInputs(s, p); err != nil {
			return &Error{Path: b.path, Line: p.line, Klass: kname, Method: mname, Block: p.block, Inst: p.text, Message: "bad phi input", Err: err}
		}
	}
	return nil
}

func (b *builder) phiInputs(s *scope, p pendingPhi) error {
	for _, in := range p.inputs {
		blockName, valueTok, ok := strings.Cut(in, "=")
		if !ok {
			return fmt.Errorf("want block=value, got %q", in)
		}
		pred, err := s.block(blockName)
		if err != nil {
			return err
		}
		v, err := b.operand(s, valueTok)
		if err != nil {
			return err
		}
		if _, err := p.phi.Put(pred, v); err != nil {
			return err
		}
	}
	return nil
}

// instruction parses one line. For phis rest holds the unresolved inputs.
func (b *builder) instruction(m *ir.Method, s *scope, line string) (name string, inst ir.Instruction, rest []string, err error) {
	toks, err := tokenize(line)
	if err != nil {
		return "", nil, nil, err
	}
	if len(toks) >= 2 && toks[1] == "=" {
		name, toks = toks[0], toks[2:]
	}
	if len(toks) == 0 {
		return "", nil, nil, fmt.Errorf("missing opcode")
	}
	op, ops := toks[0], toks[1:]
	if op == "phi" {
		if len(ops) == 0 {
			return "", nil, nil, fmt.Errorf("phi needs a type")
		}
		t, err := b.regular(ops[0])
		if err != nil {
			return "", nil, nil, err
		}
		phi, err := ir.NewPhi(t)
		if err != nil {
			return "", nil, nil, err
		}
		return name, phi, ops[1:], nil
	}
	inst, err = b.parseOp(m, s, op, ops)
	if err != nil {
		return "", nil, nil, err
	}
	return name, inst, nil, nil
}

func (b *builder) parseOp(m *ir.Method, s *scope, op string, ops []string) (ir.Instruction, error) {
	if binop, ok := ir.ParseBinaryOp(op); ok {
		vs, err := b.operands(s, op, ops, 2)
		if err != nil {
			return nil, err
		}
		return wrap(ir.NewBinary(vs[0], binop, vs[1]))
	}

	switch op {
	case "branch":
		if len(ops) != 5 {
			return nil, arity(op, 5, len(ops))
		}
		sense, ok := ir.ParseSense(ops[0])
		if !ok {
			return nil, fmt.Errorf("unknown branch sense %q", ops[0])
		}
		vs, err := b.operands(s, op, ops[1:3], 2)
		if err != nil {
			return nil, err
		}
		then, err := s.block(ops[3])
		if err != nil {
			return nil, err
		}
		otherwise, err := s.block(ops[4])
		if err != nil {
			return nil, err
		}
		return wrap(ir.NewBranch(vs[0], sense, vs[1], then, otherwise))
	case "jump":
		if len(ops) != 1 {
			return nil, arity(op, 1, len(ops))
		}
		target, err := s.block(ops[0])
		if err != nil {
			return nil, err
		}
		return wrap(ir.NewJump(target))
	case "switch":
		return b.switchInst(s, ops)
	case "return":
		return b.returnInst(m, s, ops)
	case "throw":
		vs, err := b.operands(s, op, ops, 1)
		if err != nil {
			return nil, err
		}
		return wrap(ir.NewThrow(vs[0]))
	case "call":
		if len(ops) == 0 {
			return nil, fmt.Errorf("call needs a method")
		}
		target, err := b.method(ops[0])
		if err != nil {
			return nil, err
		}
		vs, err := b.operands(s, op, ops[1:], -1)
		if err != nil {
			return nil, err
		}
		return wrap(ir.NewCall(target, vs...))
	case "cast":
		if len(ops) != 2 {
			return nil, arity(op, 2, len(ops))
		}
		t, err := b.regular(ops[0])
		if err != nil {
			return nil, err
		}
		v, err := b.operand(s, ops[1])
		if err != nil {
			return nil, err
		}
		return wrap(ir.NewCast(t, v))
	case "instanceof":
		if len(ops) != 2 {
			return nil, arity(op, 2, len(ops))
		}
		t, err := b.regular(ops[0])
		if err != nil {
			return nil, err
		}
		rt, ok := t.(ir.RefType)
		if !ok {
			return nil, fmt.Errorf("instanceof needs a reference type, got %s", t)
		}
		v, err := b.operand(s, ops[1])
		if err != nil {
			return nil, err
		}
		return wrap(ir.NewInstanceof(rt, v))
	case "newarray":
		if len(ops) < 2 {
			return nil, fmt.Errorf("newarray needs a type and dimensions")
		}
		t, err := b.regular(ops[0])
		if err != nil {
			return nil, err
		}
		at, ok := t.(*ir.ArrayType)
		if !ok {
			return nil, fmt.Errorf("newarray needs an array type, got %s", t)
		}
		dims, err := b.operands(s, op, ops[1:], -1)
		if err != nil {
			return nil, err
		}
		return wrap(ir.NewNewArray(at, dims...))
	case "arraylength":
		vs, err := b.operands(s, op, ops, 1)
		if err != nil {
			return nil, err
		}
		return wrap(ir.NewArrayLength(vs[0]))
	case "arrayload":
		vs, err := b.operands(s, op, ops, 2)
		if err != nil {
			return nil, err
		}
		return wrap(ir.NewArrayLoad(vs[0], vs[1]))
	case "arraystore":
		vs, err := b.operands(s, op, ops, 3)
		if err != nil {
			return nil, err
		}
		return wrap(ir.NewArrayStore(vs[0], vs[1], vs[2]))
	case "load":
		return b.load(s, ops)
	case "store":
		return b.store(s, ops)
	}
	return nil, fmt.Errorf("unknown opcode %q", op)
}

// operands resolves toks, which must number n unless n is negative.
func (b *builder) operands(s *scope, op string, toks []string, n int) ([]ir.Value, error) {
	if n >= 0 && len(toks) != n {
		return nil, arity(op, n, len(toks))
	}
	out := make([]ir.Value, len(toks))
	for i, t := range toks {
		v, err := b.operand(s, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func arity(op string, want, got int) error {
	return fmt.Errorf("%s takes %d operands, got %d", op, want, got)
}

// wrap converts a typed constructor result, keeping a nil instruction nil.
func wrap[T ir.Instruction](inst T, err error) (ir.Instruction, error) {
	if err != nil {
		return nil, err
	}
	return inst, nil
}

func (b *builder) switchInst(s *scope, ops []string) (ir.Instruction, error) {
	if len(ops) < 2 {
		return nil, fmt.Errorf("switch needs a value and a default block")
	}
	v, err := b.operand(s, ops[0])
	if err != nil {
		return nil, err
	}
	def, err := s.block(ops[1])
	if err != nil {
		return nil, err
	}
	sw, err := ir.NewSwitch(v, def)
	if err != nil {
		return nil, err
	}
	for _, c := range ops[2:] {
		key, target, ok := strings.Cut(c, "=")
		if !ok {
			return nil, fmt.Errorf("want value=block, got %q", c)
		}
		n, err := strconv.ParseInt(key, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("bad case %q: %w", key, err)
		}
		tb, err := s.block(target)
		if err != nil {
			return nil, err
		}
		if prev, err := sw.Put(b.mod.Constants().Int(int32(n)), tb); err != nil {
			return nil, err
		} else if prev != nil {
			return nil, fmt.Errorf("case %d listed twice", n)
		}
	}
	return sw, nil
}

func (b *builder) returnInst(m *ir.Method, s *scope, ops []string) (ir.Instruction, error) {
	if len(ops) == 0 {
		return ir.NewReturnVoid(b.mod), nil
	}
	if len(ops) != 1 {
		return nil, fmt.Errorf("return takes at most one operand")
	}
	v, err := b.operand(s, ops[0])
	if err != nil {
		return nil, err
	}
	return wrap(ir.NewReturn(m.ReturnType(), v))
}

// load handles "load local", "load Owner.field" and "load Owner.field obj".
func (b *builder) load(s *scope, ops []string) (ir.Instruction, error) {
	if len(ops) == 0 || len(ops) > 2 {
		return nil, fmt.Errorf("load takes a location and an optional instance")
	}
	if lv, ok := s.values[ops[0]].(*ir.LocalVariable); ok && len(ops) == 1 {
		return wrap(ir.NewLoadLocal(lv))
	}
	f, err := b.field(ops[0])
	if err != nil {
		return nil, err
	}
	if len(ops) == 1 {
		return wrap(ir.NewLoadStatic(f))
	}
	obj, err := b.operand(s, ops[1])
	if err != nil {
		return nil, err
	}
	return wrap(ir.NewLoadField(f, obj))
}

// store handles "store local v", "store Owner.field v" and
// "store Owner.field v obj".
func (b *builder) store(s *scope, ops []string) (ir.Instruction, error) {
	if len(ops) < 2 || len(ops) > 3 {
		return nil, fmt.Errorf("store takes a location, a value and an optional instance")
	}
	data, err := b.operand(s, ops[1])
	if err != nil {
		return nil, err
	}
	if lv, ok := s.values[ops[0]].(*ir.LocalVariable); ok && len(ops) == 2 {
		return wrap(ir.NewStoreLocal(lv, data))
	}
	f, err := b.field(ops[0])
	if err != nil {
		return nil, err
	}
	if len(ops) == 2 {
		return wrap(ir.NewStoreStatic(f, data))
	}
	obj, err := b.operand(s, ops[2])
	if err != nil {
		return nil, err
	}
	return wrap(ir.NewStoreField(f, data, obj))
}

func (b *builder) operand(s *scope, tok string) (ir.Value, error) {
	c, ok, err := literal(b.mod, tok)
	if err != nil {
		return nil, fmt.Errorf("bad literal %q: %w", tok, err)
	}
	if ok {
		return c, nil
	}
	if v, ok := s.values[tok]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("undefined value %q", tok)
}

func (b *builder) lookup(name string) (*ir.Klass, error) {
	k, err := b.mod.LookupKlass(name)
	if err != nil {
		return nil, err
	}
	if k == nil {
		return nil, fmt.Errorf("unknown class %s", name)
	}
	return k, nil
}

func (b *builder) regular(name string) (ir.RegularType, error) {
	t, err := b.mod.Types().ByName(name)
	if err != nil {
		return nil, err
	}
	rt, ok := t.(ir.RegularType)
	if !ok {
		return nil, fmt.Errorf("%s is not a value type", name)
	}
	return rt, nil
}

func (b *builder) field(ref string) (*ir.Field, error) {
	owner, name, desc, ok := splitMember(ref)
	if !ok || desc != "" {
		return nil, fmt.Errorf("want Owner.field, got %q", ref)
	}
	k, err := b.lookup(owner)
	if err != nil {
		return nil, err
	}
	f := k.Field(name)
	if f == nil {
		return nil, fmt.Errorf("%s has no field %s", owner, name)
	}
	return f, nil
}

func (b *builder) method(ref string) (*ir.Method, error) {
	owner, name, desc, ok := splitMember(ref)
	if !ok || desc == "" {
		return nil, fmt.Errorf("want Owner.name(descriptor), got %q", ref)
	}
	k, err := b.lookup(owner)
	if err != nil {
		return nil, err
	}
	m := k.MethodByDescriptor(name, desc)
	if m == nil {
		return nil, fmt.Errorf("%s has no method %s%s", owner, name, desc)
	}
	return m, nil
}

func modifiers(names []string, applies func(ir.Modifier) bool) (ir.Modifiers, error) {
	var mods ir.Modifiers
	for _, n := range names {
		m, ok := ir.ParseModifier(strings.ToLower(n))
		if !ok {
			return 0, fmt.Errorf("unknown modifier %q", n)
		}
		if !applies(m) {
			return 0, fmt.Errorf("modifier %s does not apply", m)
		}
		mods = mods.With(m)
	}
	return mods, nil
}

type scope struct {
	values map[string]ir.Value
}

func (s *scope) define(name string, v ir.Value) error {
	if _, ok := s.values[name]; ok {
		return fmt.Errorf("%q is defined twice", name)
	}
	s.values[name] = v
	return nil
}

func (s *scope) block(name string) (*ir.BasicBlock, error) {
	b, ok := s.values[name].(*ir.BasicBlock)
	if !ok {
		return nil, fmt.Errorf("undefined block %q", name)
	}
	return b, nil
}
