package methods

import (
	"github.com/roach88/bcir/internal/ir"
)

// MethodHandleClass is the type of fields InvokeExactFromField loads.
const MethodHandleClass = "java.lang.invoke.MethodHandle"

const polymorphicDescriptor = "([Ljava/lang/Object;)Ljava/lang/Object;"

// CreateDefaultConstructor adds a public no-argument constructor to k that
// calls the superclass no-argument constructor and returns.
func CreateDefaultConstructor(k *ir.Klass) (*ir.Method, error) {
	const op = "CreateDefaultConstructor"
	super := k.Superclass()
	if super == nil {
		return nil, structuralErrorf(op, "%s has no superclass", k)
	}
	superInit := super.MethodByDescriptor(ir.ConstructorName, "()V")
	if superInit == nil {
		return nil, structuralErrorf(op, "%s has no no-argument constructor", super)
	}
	self, err := k.Module().Types().Reference(k)
	if err != nil {
		return nil, err
	}
	init, err := k.NewMethod(ir.ConstructorName, k.Module().Types().MethodType(self), ir.Mods(ir.Public))
	if err != nil {
		return nil, err
	}
	b, err := init.NewBlock("entry")
	if err != nil {
		return nil, err
	}
	call, err := ir.NewCall(superInit)
	if err != nil {
		return nil, err
	}
	if err := appendAll(b, call, ir.NewReturnVoid(k.Module())); err != nil {
		return nil, err
	}
	return init, nil
}

// FieldValue is one field for StaticFinalFieldInitializer. Type must be a
// reference type; Value is the host value generated code receives.
type FieldValue struct {
	Name  string
	Type  ir.RefType
	Value any
}

// StaticFinalFieldInitializer adds a <clinit> to k that initializes one
// private static final field per value. Each value goes into tr under a
// key derived from the field name; the initializer removes it from the
// trampoline map, casts it and stores it.
//
// Names are validated and keys reserved before k is changed. The
// generated method only works in the process holding tr.
func StaticFinalFieldInitializer(k *ir.Klass, values []FieldValue, tr *Trampoline) (*ir.Method, error) {
	const op = "StaticFinalFieldInitializer"
	mod := k.Module()
	tf := mod.Types()
	if tr == nil {
		return nil, structuralErrorf(op, "trampoline is nil")
	}
	mapKlass := mod.Klass(MapClass)
	if mapKlass == nil {
		return nil, structuralErrorf(op, "%s is not on the classpath", MapClass)
	}
	mapRemove := mapKlass.MethodByDescriptor("remove", "(Ljava/lang/Object;)Ljava/lang/Object;")
	if mapRemove == nil {
		return nil, structuralErrorf(op, "%s.remove is not available", MapClass)
	}
	seen := map[string]bool{}
	for _, fv := range values {
		switch {
		case fv.Type == nil:
			return nil, typeErrorf(op, "field %s has no type", fv.Name)
		case fv.Name == "" || seen[fv.Name] || k.Field(fv.Name) != nil:
			return nil, structuralErrorf(op, "field name %q is empty or already used", fv.Name)
		}
		seen[fv.Name] = true
	}
	if k.Method(ir.StaticInitializerName, tf.MethodType(tf.Void())) != nil {
		return nil, structuralErrorf(op, "%s already has a static initializer", k)
	}

	keys := make([]string, 0, len(values))
	fail := func(err error) (*ir.Method, error) {
		tr.Drop(keys...)
		return nil, err
	}
	for _, fv := range values {
		key, err := tr.Put(fv.Name, fv.Value)
		if err != nil {
			return fail(err)
		}
		keys = append(keys, key)
	}

	clinit, err := k.NewMethod(ir.StaticInitializerName, tf.MethodType(tf.Void()), ir.Mods(ir.Static))
	if err != nil {
		return fail(err)
	}
	b, err := clinit.NewBlock("entry")
	if err != nil {
		return fail(err)
	}
	getstatic, err := ir.NewLoadStatic(tr.Field())
	if err != nil {
		return fail(err)
	}
	insts := []ir.Instruction{getstatic}
	for i, fv := range values {
		field, err := k.NewField(fv.Type, fv.Name, ir.Mods(ir.Private, ir.Static, ir.Final))
		if err != nil {
			return fail(err)
		}
		remove, err := ir.NewCall(mapRemove, getstatic, mod.Constants().String(keys[i]))
		if err != nil {
			return fail(err)
		}
		cast, err := ir.NewCast(fv.Type, remove)
		if err != nil {
			return fail(err)
		}
		putstatic, err := ir.NewStoreStatic(field, cast)
		if err != nil {
			return fail(err)
		}
		insts = append(insts, remove, cast, putstatic)
	}
	insts = append(insts, ir.NewReturnVoid(mod))
	if err := appendAll(b, insts...); err != nil {
		return fail(err)
	}
	return clinit, nil
}

// InvokeExactFromField adds a method to k that loads a MethodHandle from
// field and invokes it exactly on the method's arguments, excluding the
// receiver. mhType is the handle's type; for instance methods the receiver
// is prepended. A static field is loaded directly, an instance field is
// loaded from the receiver.
func InvokeExactFromField(k *ir.Klass, field *ir.Field, mods ir.Modifiers, name string, mhType *ir.MethodType) (*ir.Method, error) {
	const op = "InvokeExactFromField"
	mod := k.Module()
	tf := mod.Types()
	mh := mod.Klass(MethodHandleClass)
	if mh == nil {
		return nil, structuralErrorf(op, "%s is not on the classpath", MethodHandleClass)
	}
	if field == nil {
		return nil, typeErrorf(op, "field is nil")
	}
	if ref, ok := field.Stored().(*ir.ReferenceType); !ok || ref.Klass() != mh {
		return nil, typeErrorf(op, "not a MethodHandle-type field: %s", field)
	}
	static := mods.Has(ir.Static)
	if !field.IsStatic() && static {
		return nil, structuralErrorf(op, "static method %s cannot load instance field %s", name, field)
	}
	invokeExact := mh.MethodByDescriptor("invokeExact", polymorphicDescriptor)
	if invokeExact == nil {
		return nil, structuralErrorf(op, "%s.invokeExact is not available", MethodHandleClass)
	}

	t := mhType
	if !static {
		self, err := tf.Reference(k)
		if err != nil {
			return nil, err
		}
		t = t.PrependArgument(self)
	}
	n, err := k.NewMethod(name, t, mods)
	if err != nil {
		return nil, err
	}
	b, err := n.NewBlock("entry")
	if err != nil {
		return nil, err
	}

	var getHandle *ir.LoadInst
	if field.IsStatic() {
		getHandle, err = ir.NewLoadStatic(field)
	} else {
		getHandle, err = ir.NewLoadField(field, n.Receiver())
	}
	if err != nil {
		return nil, err
	}

	args := []ir.Value{getHandle}
	callType := n.MethodType()
	for _, a := range n.Arguments() {
		if !a.IsReceiver() {
			args = append(args, a)
		}
	}
	if n.HasReceiver() {
		if callType, err = callType.DropFirstArgument(); err != nil {
			return nil, err
		}
	}
	handleType, err := tf.Reference(mh)
	if err != nil {
		return nil, err
	}
	callType = callType.PrependArgument(handleType)

	invoke, err := ir.NewCallWithType(invokeExact, callType, args...)
	if err != nil {
		return nil, err
	}
	var ret *ir.ReturnInst
	if _, void := callType.Return().(*ir.VoidType); void {
		ret = ir.NewReturnVoid(mod)
	} else if ret, err = ir.NewReturn(callType.Return(), invoke); err != nil {
		return nil, err
	}
	if err := appendAll(b, getHandle, invoke, ret); err != nil {
		return nil, err
	}
	return n, nil
}

func appendAll(b *ir.BasicBlock, insts ...ir.Instruction) error {
	for _, inst := range insts {
		if err := b.Append(inst); err != nil {
			return err
		}
	}
	return nil
}
