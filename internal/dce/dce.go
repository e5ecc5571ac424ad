package dce

import (
	"context"
	"log/slog"

	"github.com/roach88/bcir/internal/ir"
)

// DefaultPureMethods lists the methods UnusedPureCalls may erase when no
// allow-list is configured: the eight primitive boxing factories.
var DefaultPureMethods = defaultPureMethods()

func defaultPureMethods() []string {
	out := make([]string, 0, len(ir.PrimitiveKinds))
	for _, k := range ir.PrimitiveKinds {
		out = append(out, boxSignature(k))
	}
	return out
}

func boxSignature(k ir.PrimitiveKind) string {
	w := k.WrapperName()
	return w + ".valueOf(" + k.Descriptor() + ")L" + internalName(w) + ";"
}

func unboxSignature(k ir.PrimitiveKind) string {
	return k.WrapperName() + "." + k.UnboxMethodName() + "()" + k.Descriptor()
}

func internalName(binary string) string {
	b := []byte(binary)
	for i, c := range b {
		if c == '.' {
			b[i] = '/'
		}
	}
	return string(b)
}

// Firing describes one rule application. Names are formatted before the
// rewrite, so Inst shows the instruction as it was.
type Firing struct {
	Rule   Rule
	Method string
	Block  string
	Inst   string
}

// Option configures an Eliminator.
type Option func(*Eliminator)

// WithPureMethods replaces the UnusedPureCalls allow-list. Entries are
// method signatures such as "java.lang.Math.abs(I)I".
func WithPureMethods(signatures ...string) Option {
	return func(e *Eliminator) {
		e.pure = make(map[string]bool, len(signatures))
		for _, s := range signatures {
			e.pure[s] = true
		}
	}
}

// WithRules restricts the eliminator to the given rules. Application order
// stays the order of Rules.
func WithRules(rules ...Rule) Option {
	return func(e *Eliminator) {
		enabled := make(map[Rule]bool, len(rules))
		for _, r := range rules {
			enabled[r] = true
		}
		e.rules = e.rules[:0]
		for _, r := range Rules {
			if enabled[r] {
				e.rules = append(e.rules, r)
			}
		}
	}
}

// WithLogger sets the logger used for rule firings. Without it the
// eliminator logs to slog.Default() as it is at each firing.
func WithLogger(l *slog.Logger) Option {
	return func(e *Eliminator) {
		e.logger = l
	}
}

// WithTrace registers fn to be called after every successful rewrite.
func WithTrace(fn func(Firing)) Option {
	return func(e *Eliminator) {
		e.trace = fn
	}
}

// Eliminator runs the rules over blocks, methods and modules. It holds no
// per-run state and may be reused.
type Eliminator struct {
	rules  []Rule
	pure   map[string]bool
	unbox  map[string]string
	logger *slog.Logger
	trace  func(Firing)
}

// New creates an Eliminator running every rule with the default allow-list.
func New(opts ...Option) *Eliminator {
	e := &Eliminator{
		rules: append([]Rule(nil), Rules...),
		unbox: make(map[string]string, len(ir.PrimitiveKinds)),
	}
	WithPureMethods(DefaultPureMethods...)(e)
	for _, k := range ir.PrimitiveKinds {
		e.unbox[unboxSignature(k)] = boxSignature(k)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var std = New()

// Block runs every rule over b with the default eliminator.
func Block(b *ir.BasicBlock) (bool, error) { return std.Block(b) }

// Method runs every rule over m with the default eliminator.
func Method(m *ir.Method) (bool, error) { return std.Method(m) }

// Module runs every rule over each resolved method of each mutable klass
// with the default eliminator.
func Module(mod *ir.Module) (bool, error) { return std.Module(mod) }

// Block applies the configured rules to b until none fires.
func (e *Eliminator) Block(b *ir.BasicBlock) (bool, error) {
	changed := false
	for {
		progress := false
		for _, r := range e.rules {
			fired, err := e.RuleBlock(r, b)
			if err != nil {
				return changed, err
			}
			progress = progress || fired
		}
		if !progress {
			return changed, nil
		}
		changed = true
	}
}

// Method applies Block to every block of m until a full pass changes
// nothing. Methods without a body report no change.
func (e *Eliminator) Method(m *ir.Method) (bool, error) {
	if !m.IsResolved() {
		return false, nil
	}
	changed := false
	for {
		progress := false
		for _, b := range m.Blocks().Slice() {
			if b.Parent() != m {
				continue
			}
			fired, err := e.Block(b)
			if err != nil {
				return changed, err
			}
			progress = progress || fired
		}
		if !progress {
			return changed, nil
		}
		changed = true
	}
}

// Module applies Method to every resolved method of every mutable klass.
func (e *Eliminator) Module(mod *ir.Module) (bool, error) {
	changed := false
	for _, k := range mod.Klasses() {
		if !k.IsMutable() {
			continue
		}
		for _, m := range k.Methods().Slice() {
			fired, err := e.Method(m)
			if err != nil {
				return changed, err
			}
			changed = changed || fired
		}
	}
	return changed, nil
}

// RuleBlock applies a single rule to b until it stops firing.
func (e *Eliminator) RuleBlock(r Rule, b *ir.BasicBlock) (bool, error) {
	apply := e.ruleFunc(r)
	changed := false
	for {
		progress := false
		for _, inst := range b.Instructions().Slice() {
			if inst.Parent() != b {
				continue
			}
			var before string
			if e.observing() {
				before = inst.String()
			}
			fired, err := apply(inst)
			if err != nil {
				return changed, err
			}
			if fired {
				e.fired(r, b, before)
				progress = true
			}
		}
		if !progress {
			return changed, nil
		}
		changed = true
	}
}

// RuleMethod applies a single rule to every block of m until it stops
// firing.
func (e *Eliminator) RuleMethod(r Rule, m *ir.Method) (bool, error) {
	if !m.IsResolved() {
		return false, nil
	}
	changed := false
	for {
		progress := false
		for _, b := range m.Blocks().Slice() {
			if b.Parent() != m {
				continue
			}
			fired, err := e.RuleBlock(r, b)
			if err != nil {
				return changed, err
			}
			progress = progress || fired
		}
		if !progress {
			return changed, nil
		}
		changed = true
	}
}

func (e *Eliminator) log() *slog.Logger {
	if e.logger == nil {
		return slog.Default()
	}
	return e.logger
}

func (e *Eliminator) observing() bool {
	return e.trace != nil || e.log().Enabled(context.Background(), slog.LevelDebug)
}

func (e *Eliminator) fired(r Rule, b *ir.BasicBlock, inst string) {
	f := Firing{Rule: r, Block: "%" + b.Name(), Inst: inst}
	if m := b.Parent(); m != nil {
		f.Method = m.Signature()
	}
	e.log().Debug("dce rule fired",
		"rule", r.String(),
		"method", f.Method,
		"block", f.Block,
		"inst", f.Inst,
	)
	if e.trace != nil {
		e.trace(f)
	}
}
