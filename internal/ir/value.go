package ir

import "slices"

// Value is a sealed interface for every node that can be referenced as an
// operand: arguments, local variables, basic blocks, fields, methods,
// constants, placeholders and instructions.
//
// Each Value keeps its use-set: one *Use per operand slot anywhere in the
// IR that currently points at it.
type Value interface {
	// Type returns the Value's interned type.
	Type() Type

	// Name returns the display name, possibly empty.
	Name() string

	// SetName changes the display name.
	SetName(name string) error

	// Uses returns a snapshot of the use-set.
	Uses() []*Use

	// Users returns the user of each use, one entry per use.
	Users() []User

	// NumUses returns the size of the use-set.
	NumUses() int

	// ReplaceAllUsesWith retargets every use of this Value to v.
	ReplaceAllUsesWith(v Value) error

	base() *valueBase
}

type valueBase struct {
	self Value
	typ  Type
	name string
	uses []*Use
}

func (v *valueBase) init(self Value, t Type, name string) {
	v.self = self
	v.typ = t
	v.name = name
}

func (v *valueBase) base() *valueBase { return v }

// Type returns the Value's type.
func (v *valueBase) Type() Type { return v.typ }

// Name returns the display name.
func (v *valueBase) Name() string { return v.name }

// SetName changes the display name.
func (v *valueBase) SetName(name string) error {
	v.name = name
	return nil
}

// Uses returns a snapshot of the use-set.
func (v *valueBase) Uses() []*Use { return slices.Clone(v.uses) }

// NumUses returns the size of the use-set.
func (v *valueBase) NumUses() int { return len(v.uses) }

// Users returns the user of each use.
func (v *valueBase) Users() []User {
	out := make([]User, len(v.uses))
	for i, u := range v.uses {
		out[i] = u.user
	}
	return out
}

func (v *valueBase) addUse(u *Use) {
	v.uses = append(v.uses, u)
}

func (v *valueBase) removeUse(u *Use) {
	if i := slices.Index(v.uses, u); i >= 0 {
		v.uses = slices.Delete(v.uses, i, i+1)
	}
}

// ReplaceAllUsesWith retargets every use to nv. Every affected operand slot
// is type-checked first; if any rejects nv nothing changes.
func (v *valueBase) ReplaceAllUsesWith(nv Value) error {
	if nv == nil {
		return typeErrorf("ReplaceAllUsesWith", "replacement value is nil")
	}
	if nv == v.self {
		return nil
	}
	snapshot := slices.Clone(v.uses)
	for _, u := range snapshot {
		if err := u.user.checkOperand(u.index, nv); err != nil {
			return err
		}
	}
	for _, u := range snapshot {
		u.set(nv)
	}
	return nil
}

// Use is one operand slot of a User pointing at a Value.
type Use struct {
	user  User
	index int
	value Value
}

// User returns the owner of the slot.
func (u *Use) User() User { return u.user }

// Index returns the operand index within the user.
func (u *Use) Index() int { return u.index }

// Value returns the current target, nil once operands have been dropped.
func (u *Use) Value() Value { return u.value }

// Set replaces the target after type-checking it against the slot.
func (u *Use) Set(v Value) error {
	return u.user.SetOperand(u.index, v)
}

// set moves the use between use-sets without checking.
func (u *Use) set(v Value) {
	if u.value == v {
		return
	}
	if u.value != nil {
		u.value.base().removeUse(u)
	}
	u.value = v
	if v != nil {
		v.base().addUse(u)
	}
}

// User is a Value that owns an ordered sequence of operand uses.
// Every instruction is a User.
type User interface {
	Value

	// NumOperands returns the number of operand slots.
	NumOperands() int

	// Operand returns the value in slot i, or nil when i is out of range.
	Operand(i int) Value

	// Operands returns a snapshot of the operand values.
	Operands() []Value

	// OperandUses returns a snapshot of the operand uses.
	OperandUses() []*Use

	// SetOperand type-checks v against slot i and stores it.
	SetOperand(i int, v Value) error

	// DropAllOperands clears every slot, removing this user from the
	// use-sets of its operands.
	DropAllOperands()

	checkOperand(i int, v Value) error
	userState() *userBase
}

type userBase struct {
	valueBase
	operands []*Use
}

func (u *userBase) userState() *userBase { return u }

func (u *userBase) owner() User { return u.self.(User) }

// NumOperands returns the number of operand slots.
func (u *userBase) NumOperands() int { return len(u.operands) }

// Operand returns the value in slot i.
func (u *userBase) Operand(i int) Value {
	if i < 0 || i >= len(u.operands) {
		return nil
	}
	return u.operands[i].value
}

// Operands returns a snapshot of the operand values.
func (u *userBase) Operands() []Value {
	out := make([]Value, len(u.operands))
	for i, use := range u.operands {
		out[i] = use.value
	}
	return out
}

// OperandUses returns a snapshot of the operand uses.
func (u *userBase) OperandUses() []*Use { return slices.Clone(u.operands) }

// SetOperand type-checks v against slot i and stores it.
// Setting the current value again is a no-op.
func (u *userBase) SetOperand(i int, v Value) error {
	if i < 0 || i >= len(u.operands) {
		return structuralErrorf("SetOperand", "operand index %d out of range [0, %d)", i, len(u.operands))
	}
	if v == nil {
		return typeErrorf("SetOperand", "operand %d: value is nil", i)
	}
	if u.operands[i].value == v {
		return nil
	}
	if err := u.owner().checkOperand(i, v); err != nil {
		return err
	}
	u.operands[i].set(v)
	return nil
}

// DropAllOperands clears every slot.
func (u *userBase) DropAllOperands() {
	for _, use := range u.operands {
		use.set(nil)
	}
}

// initOperands allocates one slot per value and fills them in order.
// On failure every slot already filled is dropped again.
func (u *userBase) initOperands(op string, vals ...Value) error {
	u.operands = make([]*Use, len(vals))
	for i := range vals {
		u.operands[i] = &Use{user: u.owner(), index: i}
	}
	for i, v := range vals {
		if v == nil {
			u.DropAllOperands()
			return typeErrorf(op, "operand %d: value is nil", i)
		}
		if err := u.owner().checkOperand(i, v); err != nil {
			u.DropAllOperands()
			return err
		}
		u.operands[i].set(v)
	}
	return nil
}

// addOperand inserts a checked operand at index i, shifting later uses up.
func (u *userBase) addOperand(i int, v Value) error {
	if i < 0 || i > len(u.operands) {
		return structuralErrorf("addOperand", "operand index %d out of range [0, %d]", i, len(u.operands))
	}
	if v == nil {
		return typeErrorf("addOperand", "operand %d: value is nil", i)
	}
	if err := u.owner().checkOperand(i, v); err != nil {
		return err
	}
	use := &Use{user: u.owner(), index: i}
	u.operands = slices.Insert(u.operands, i, use)
	for j := i + 1; j < len(u.operands); j++ {
		u.operands[j].index = j
	}
	use.set(v)
	return nil
}

// removeOperand deletes slot i, shifting later uses down.
func (u *userBase) removeOperand(i int) {
	u.operands[i].set(nil)
	u.operands = slices.Delete(u.operands, i, i+1)
	for j := i; j < len(u.operands); j++ {
		u.operands[j].index = j
	}
}

// UninitializedValue is a typed placeholder that stands in for a value that
// does not exist yet. Builders replace it with ReplaceAllUsesWith once the
// real value is known.
type UninitializedValue struct {
	valueBase
}

// NewUninitializedValue returns a fresh placeholder of type t.
func NewUninitializedValue(t Type, name string) *UninitializedValue {
	u := &UninitializedValue{}
	u.init(u, t, name)
	return u
}
