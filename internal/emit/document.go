package emit

import (
	"fmt"
	"math"
	"strconv"

	"github.com/roach88/bcir/internal/ir"
)

// KlassDocument describes k for emission: its modifier bits, superclass,
// interfaces, fields and methods with their bodies.
//
// Operands are stable references local to their method:
//
//	arg:N          argument N, counting the receiver
//	local:N        local variable N
//	block:N        basic block N
//	inst:B.I       instruction I of block B
//	field:O.f      a field, by owner and name
//	method:O.m()V  a method, by signature
//	int:5 long:-1 float:0x3fc00000 string:text class:java.lang.Object null
//
// Float and double constants are written as bit patterns.
func KlassDocument(k *ir.Klass) (Document, error) {
	doc := Document{
		"name":      k.Name(),
		"modifiers": int(k.Modifiers().Bits()),
	}
	if sup := k.Superclass(); sup != nil {
		doc["super"] = sup.Name()
	}
	ifaces := []string{}
	for _, in := range k.Interfaces() {
		ifaces = append(ifaces, in.Name())
	}
	doc["interfaces"] = ifaces

	fields := []Document{}
	for f := range k.Fields().All() {
		fields = append(fields, Document{
			"name":      f.Name(),
			"type":      f.Stored().Descriptor(),
			"modifiers": int(f.Modifiers().Bits()),
		})
	}
	doc["fields"] = fields

	methods := []Document{}
	for m := range k.Methods().All() {
		md, err := MethodDocument(m)
		if err != nil {
			return nil, err
		}
		methods = append(methods, md)
	}
	doc["methods"] = methods
	return doc, nil
}

// MethodDocument describes one method. Unresolved methods have no
// "locals" or "blocks".
func MethodDocument(m *ir.Method) (Document, error) {
	doc := Document{
		"name":       m.Name(),
		"descriptor": m.Descriptor(),
		"modifiers":  int(m.Modifiers().Bits()),
	}
	if !m.IsResolved() {
		return doc, nil
	}
	r := newRefs(m)
	locals := []Document{}
	for v := range m.LocalVariables().All() {
		locals = append(locals, Document{"name": v.Name(), "type": v.Stored().Descriptor()})
	}
	doc["locals"] = locals

	blocks := []Document{}
	for b := range m.Blocks().All() {
		insts := []Document{}
		for inst := range b.Instructions().All() {
			d, err := r.instruction(inst)
			if err != nil {
				return nil, fmt.Errorf("%s %%%s: %w", m.Signature(), b.Name(), err)
			}
			insts = append(insts, d)
		}
		blocks = append(blocks, Document{"name": b.Name(), "insts": insts})
	}
	doc["blocks"] = blocks
	return doc, nil
}

// refs numbers the values of one method.
type refs struct {
	method *ir.Method
	locals map[*ir.LocalVariable]int
	blocks map[*ir.BasicBlock]int
	insts  map[ir.Instruction]string
}

func newRefs(m *ir.Method) *refs {
	r := &refs{
		method: m,
		locals: map[*ir.LocalVariable]int{},
		blocks: map[*ir.BasicBlock]int{},
		insts:  map[ir.Instruction]string{},
	}
	for v := range m.LocalVariables().All() {
		r.locals[v] = len(r.locals)
	}
	for b := range m.Blocks().All() {
		bi := len(r.blocks)
		r.blocks[b] = bi
		i := 0
		for inst := range b.Instructions().All() {
			r.insts[inst] = fmt.Sprintf("inst:%d.%d", bi, i)
			i++
		}
	}
	return r
}

func (r *refs) ref(v ir.Value) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", fmt.Errorf("dropped operand")
	case *ir.Constant:
		return constant(x), nil
	case *ir.Field:
		return "field:" + x.String(), nil
	case *ir.Method:
		return "method:" + x.Signature(), nil
	case *ir.Argument:
		if x.Parent() != r.method {
			return "", fmt.Errorf("argument %s of another method", x.Name())
		}
		return "arg:" + strconv.Itoa(x.Index()), nil
	case *ir.LocalVariable:
		if i, ok := r.locals[x]; ok {
			return "local:" + strconv.Itoa(i), nil
		}
		return "", fmt.Errorf("local %s of another method", x.Name())
	case *ir.BasicBlock:
		if i, ok := r.blocks[x]; ok {
			return "block:" + strconv.Itoa(i), nil
		}
		return "", fmt.Errorf("block %s of another method", x.Name())
	case ir.Instruction:
		if s, ok := r.insts[x]; ok {
			return s, nil
		}
		return "", fmt.Errorf("instruction %s is not in this method", x.Name())
	}
	return "", fmt.Errorf("cannot emit operand %s of type %T", v.Name(), v)
}

func (r *refs) all(vs []ir.Value) ([]string, error) {
	out := make([]string, len(vs))
	for i, v := range vs {
		s, err := r.ref(v)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func (r *refs) instruction(inst ir.Instruction) (Document, error) {
	doc := Document{
		"op":   inst.Opcode().String(),
		"type": descriptor(inst.Type()),
	}
	if inst.Name() != "" {
		doc["name"] = inst.Name()
	}
	operands := inst.Operands()
	switch x := inst.(type) {
	case *ir.BinaryInst:
		doc["binop"] = x.Op().String()
	case *ir.BranchInst:
		doc["sense"] = x.Sense().String()
	case *ir.CallInst:
		doc["call"] = x.CallDescriptor()
	case *ir.SwitchInst:
		operands = operands[:2]
		cases := []Document{}
		for _, c := range x.Cases() {
			target, err := r.ref(c.Target)
			if err != nil {
				return nil, err
			}
			key, _ := c.Key.Int64()
			cases = append(cases, Document{"key": key, "target": target})
		}
		doc["cases"] = cases
	case *ir.PhiInst:
		operands = nil
		incoming := []Document{}
		for _, in := range x.Incoming() {
			b, err := r.ref(in.Block)
			if err != nil {
				return nil, err
			}
			v, err := r.ref(in.Value)
			if err != nil {
				return nil, err
			}
			incoming = append(incoming, Document{"block": b, "value": v})
		}
		doc["incoming"] = incoming
	}
	ops, err := r.all(operands)
	if err != nil {
		return nil, err
	}
	if ops == nil {
		ops = []string{}
	}
	doc["operands"] = ops
	return doc, nil
}

func descriptor(t ir.Type) string {
	if d, ok := t.(interface{ Descriptor() string }); ok {
		return d.Descriptor()
	}
	return t.String()
}

func constant(c *ir.Constant) string {
	switch x := c.Datum().(type) {
	case nil:
		return "null"
	case bool:
		return "bool:" + strconv.FormatBool(x)
	case int8:
		return "byte:" + strconv.Itoa(int(x))
	case uint16:
		return "char:" + strconv.Itoa(int(x))
	case int16:
		return "short:" + strconv.Itoa(int(x))
	case int32:
		return "int:" + strconv.Itoa(int(x))
	case int64:
		return "long:" + strconv.FormatInt(x, 10)
	case float32:
		return fmt.Sprintf("float:0x%08x", math.Float32bits(x))
	case float64:
		return fmt.Sprintf("double:0x%016x", math.Float64bits(x))
	case string:
		return "string:" + x
	case *ir.Klass:
		return "class:" + x.Name()
	}
	return c.String()
}
