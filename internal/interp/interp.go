package interp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/roach88/bcir/internal/ir"
)

// DefaultMaxSteps bounds the instructions one Call may execute.
const DefaultMaxSteps = 1_000_000

// MaxDepth bounds call nesting.
const MaxDepth = 512

// Native implements a method without an IR body. args holds the receiver
// first for instance methods.
type Native func(ctx context.Context, in *Interpreter, args []any) (any, error)

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithMaxSteps sets the instruction budget of each Call.
func WithMaxSteps(n int) Option {
	return func(in *Interpreter) {
		in.maxSteps = n
	}
}

// WithNative installs fn for the method with the given signature, such as
// "java.lang.Math.abs(I)I". It replaces any builtin.
func WithNative(signature string, fn Native) Option {
	return func(in *Interpreter) {
		in.natives[signature] = fn
	}
}

// WithStatic presets a static field. The value is visible before the
// field's klass is initialized.
func WithStatic(f *ir.Field, v any) Option {
	return func(in *Interpreter) {
		in.statics[f] = v
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(in *Interpreter) {
		in.logger = l
	}
}

// Interpreter runs method bodies against a module. Static state persists
// across calls; an Interpreter is not safe for concurrent use.
type Interpreter struct {
	mod      *ir.Module
	natives  map[string]Native
	statics  map[*ir.Field]any
	inited   map[*ir.Klass]bool
	ids      map[any]int32
	logger   *slog.Logger
	maxSteps int

	steps int
}

// New creates an interpreter for methods of mod.
func New(mod *ir.Module, opts ...Option) *Interpreter {
	in := &Interpreter{
		mod:      mod,
		natives:  builtins(),
		statics:  map[*ir.Field]any{},
		inited:   map[*ir.Klass]bool{},
		ids:      map[any]int32{},
		logger:   slog.Default(),
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Module returns the module the interpreter runs against.
func (in *Interpreter) Module() *ir.Module { return in.mod }

// Steps returns the instructions executed by the last Call.
func (in *Interpreter) Steps() int { return in.steps }

// Static returns the current value of a static field, initializing its
// klass first.
func (in *Interpreter) Static(ctx context.Context, f *ir.Field) (any, error) {
	if err := in.initialize(ctx, f.Klass(), 0); err != nil {
		return nil, err
	}
	return in.static(f), nil
}

// SetStatic sets a static field without initializing its klass.
func (in *Interpreter) SetStatic(f *ir.Field, v any) {
	in.statics[f] = v
}

func (in *Interpreter) static(f *ir.Field) any {
	if v, ok := in.statics[f]; ok {
		return v
	}
	return Zero(f.Stored())
}

// Call runs m on args. Arguments are coerced with Coerce; instance methods
// take the receiver first.
func (in *Interpreter) Call(ctx context.Context, m *ir.Method, args ...any) (any, error) {
	params := m.MethodType().Params()
	if len(args) != len(params) {
		return nil, fmt.Errorf("%s takes %d arguments, got %d", m.Signature(), len(params), len(args))
	}
	vals := make([]any, len(args))
	for i, a := range args {
		v, err := Coerce(params[i], a)
		if err != nil {
			return nil, fmt.Errorf("argument %d of %s: %w", i, m.Signature(), err)
		}
		vals[i] = v
	}
	in.steps = 0
	ret, err := in.invoke(ctx, m, vals, 0)
	if errors.Is(err, ErrStepLimit) {
		in.logger.Warn("interpreter step limit reached", "method", m.Signature(), "max_steps", in.maxSteps)
	}
	return ret, err
}

// Handle returns a method handle that calls m through in. Its arguments
// are passed as is.
func (in *Interpreter) Handle(m *ir.Method) MethodHandle {
	return HandleFunc(func(ctx context.Context, args []any) (any, error) {
		return in.invoke(ctx, m, args, 1)
	})
}

// initialize runs the static initializer of k and its superclasses once.
func (in *Interpreter) initialize(ctx context.Context, k *ir.Klass, depth int) error {
	if k == nil || in.inited[k] {
		return nil
	}
	in.inited[k] = true
	if err := in.initialize(ctx, k.Superclass(), depth); err != nil {
		return err
	}
	tf := in.mod.Types()
	clinit := k.Method(ir.StaticInitializerName, tf.MethodType(tf.Void()))
	if clinit == nil || !clinit.IsResolved() || clinit.Blocks().Empty() {
		return nil
	}
	in.logger.Debug("running static initializer", "klass", k.Name())
	_, err := in.run(ctx, clinit, nil, depth+1)
	return err
}

func (in *Interpreter) invoke(ctx context.Context, m *ir.Method, args []any, depth int) (any, error) {
	if depth >= MaxDepth {
		return nil, ErrDepthLimit
	}
	if m.HasReceiver() && len(args) > 0 {
		if args[0] == nil {
			return nil, in.throw("java.lang.NullPointerException", "receiver of "+m.Signature())
		}
		if obj, ok := args[0].(*Object); ok && obj.Klass != m.Klass() {
			if o := obj.Klass.MethodByVirtual(m.Name(), m.Descriptor()); o != nil {
				m = o
			}
		}
	}
	if fn, ok := in.natives[m.Signature()]; ok {
		return fn(ctx, in, args)
	}
	if m.IsStatic() || m.IsConstructor() {
		if err := in.initialize(ctx, m.Klass(), depth); err != nil {
			return nil, err
		}
	}
	resolved := m.IsResolved() && !m.Blocks().Empty()
	switch {
	case m.IsConstructor() && resolved:
		obj := NewObject(m.Klass())
		if _, err := in.run(ctx, m, args, depth+1); err != nil {
			return nil, err
		}
		return obj, nil
	case m.IsConstructor():
		return construct(in, m, args), nil
	case resolved:
		return in.run(ctx, m, args, depth+1)
	}
	return nil, fmt.Errorf("interp: %s has no body and no native", m.Signature())
}

// identity returns a stable identity hash for a reference. Incomparable
// host values hash to 0.
func (in *Interpreter) identity(v any) int32 {
	if v == nil || !reflect.TypeOf(v).Comparable() {
		return 0
	}
	id, ok := in.ids[v]
	if !ok {
		id = int32(len(in.ids) + 1)
		in.ids[v] = id
	}
	return id
}

// throw builds an uncaught exception of the named platform class.
func (in *Interpreter) throw(class, msg string) error {
	k := in.mod.Klass(class)
	if k == nil {
		return fmt.Errorf("interp: %s: %s", class, msg)
	}
	obj := NewObject(k)
	obj.Native = msg
	return &Thrown{Value: obj}
}

type frame struct {
	method *ir.Method
	values map[ir.Value]any
	locals map[*ir.LocalVariable]any
}

func (f *frame) local(v *ir.LocalVariable) any {
	if x, ok := f.locals[v]; ok {
		return x
	}
	return Zero(v.Stored())
}

func (in *Interpreter) run(ctx context.Context, m *ir.Method, args []any, depth int) (any, error) {
	if m.Blocks().Empty() {
		return nil, fmt.Errorf("interp: %s has no body", m.Signature())
	}
	f := &frame{method: m, values: map[ir.Value]any{}, locals: map[*ir.LocalVariable]any{}}
	for i, a := range m.Arguments() {
		if i < len(args) {
			f.values[a] = args[i]
		}
	}
	var prev *ir.BasicBlock
	b := m.Blocks().First()
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, ret, err := in.block(ctx, f, b, prev, depth)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return ret, nil
		}
		prev, b = b, next
	}
}

// block runs b entered from prev and returns the successor, or a nil
// successor and the return value.
func (in *Interpreter) block(ctx context.Context, f *frame, b, prev *ir.BasicBlock, depth int) (*ir.BasicBlock, any, error) {
	var phis []*ir.PhiInst
	var incoming []any
	for inst := range b.Instructions().All() {
		phi, ok := inst.(*ir.PhiInst)
		if !ok {
			break
		}
		if prev == nil {
			return nil, nil, fmt.Errorf("interp: phi %s in the entry block", phi.Name())
		}
		v := phi.Get(prev)
		if v == nil {
			return nil, nil, fmt.Errorf("interp: phi %s has no input from %%%s", phi.Name(), prev.Name())
		}
		x, err := in.value(f, v)
		if err != nil {
			return nil, nil, err
		}
		phis = append(phis, phi)
		incoming = append(incoming, x)
	}
	for i, phi := range phis {
		f.values[phi] = incoming[i]
	}

	for inst := range b.Instructions().All() {
		if _, ok := inst.(*ir.PhiInst); ok {
			continue
		}
		in.steps++
		if in.maxSteps > 0 && in.steps > in.maxSteps {
			return nil, nil, ErrStepLimit
		}
		next, ret, done, err := in.exec(ctx, f, inst, depth)
		if err != nil {
			return nil, nil, err
		}
		if done {
			return next, ret, nil
		}
	}
	return nil, nil, fmt.Errorf("interp: %%%s of %s falls off its end", b.Name(), f.method.Signature())
}

func (in *Interpreter) value(f *frame, v ir.Value) (any, error) {
	if c, ok := v.(*ir.Constant); ok {
		return constant(c), nil
	}
	x, ok := f.values[v]
	if !ok {
		return nil, fmt.Errorf("interp: %s used before it is defined", v.Name())
	}
	return x, nil
}

func (in *Interpreter) values(f *frame, vs []ir.Value) ([]any, error) {
	out := make([]any, len(vs))
	for i, v := range vs {
		x, err := in.value(f, v)
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}
