// Package cloning copies basic blocks and method bodies.
//
// Cloning runs in two phases. Instructions are first copied with their
// original operands, recording old-to-new pairs in a ValueMap. A second
// pass rewrites every operand found in the map, which resolves references
// to instructions and blocks that had not been copied yet.
package cloning

import (
	"fmt"
	"maps"

	"github.com/roach88/bcir/internal/ir"
)

// Suffix is appended to the names of cloned values.
const Suffix = "_clone"

// ValueMap maps values of the source to their counterparts in the clone.
type ValueMap map[ir.Value]ir.Value

func preconditionf(op, format string, args ...any) error {
	return &ir.Error{Kind: ir.KindStructural, Op: op, Message: fmt.Sprintf(format, args...)}
}

func cloneName(name string) string {
	if name == "" {
		return ""
	}
	return name + Suffix
}

// CloneBasicBlock returns a detached copy of src. Each instruction is
// copied with its operands unchanged and recorded in vmap; callers remap
// operands once every block they need is copied.
func CloneBasicBlock(src *ir.BasicBlock, vmap ValueMap) (*ir.BasicBlock, error) {
	const op = "CloneBasicBlock"
	if src == nil {
		return nil, preconditionf(op, "source block is nil")
	}
	if vmap == nil {
		return nil, preconditionf(op, "value map is nil")
	}
	dest := ir.NewBasicBlock(src.Module(), cloneName(src.Name()))
	for inst := range src.Instructions().All() {
		c, err := ir.Clone(inst, nil)
		if err == nil {
			err = c.SetName(cloneName(inst.Name()))
		}
		if err == nil {
			err = dest.Append(c)
		}
		if err != nil {
			if c != nil && c.Parent() == nil {
				c.DropAllOperands()
			}
			release(dest)
			return nil, err
		}
		vmap[inst] = c
	}
	return dest, nil
}

// release drops the operands of every instruction in b so the values it
// used no longer list them.
func release(b *ir.BasicBlock) {
	for inst := range b.Instructions().All() {
		inst.DropAllOperands()
	}
}

// CloneMethod copies the body of src into dest.
//
// Both methods must be resolved, dest must have no blocks, and vmap must
// map every argument of src. Local variables of src without an entry get a
// fresh local in dest. Precondition failures return a structural error
// before dest is touched; any later failure removes the blocks and locals
// added to dest and restores vmap.
func CloneMethod(src, dest *ir.Method, vmap ValueMap) error {
	const op = "CloneMethod"
	switch {
	case src == nil || dest == nil:
		return preconditionf(op, "source and destination are required")
	case vmap == nil:
		return preconditionf(op, "value map is nil")
	case !src.IsResolved():
		return preconditionf(op, "source %s is not resolved", src.Signature())
	case !dest.IsResolved():
		return preconditionf(op, "destination %s is not resolved", dest.Signature())
	case !dest.Blocks().Empty():
		return preconditionf(op, "destination %s already has blocks", dest.Signature())
	}
	for _, a := range src.Arguments() {
		if _, ok := vmap[a]; !ok {
			return preconditionf(op, "argument %s of %s is not mapped", a.Name(), src.Signature())
		}
	}

	before := maps.Clone(vmap)
	var locals []*ir.LocalVariable
	if err := cloneBody(src, dest, vmap, &locals); err != nil {
		for nb := range dest.Blocks().All() {
			release(nb)
		}
		for _, nb := range dest.Blocks().Slice() {
			_ = nb.RemoveFromParent()
		}
		for _, v := range locals {
			_ = v.RemoveFromParent()
		}
		clear(vmap)
		maps.Copy(vmap, before)
		return err
	}

	for _, a := range src.Arguments() {
		if na, ok := vmap[a].(*ir.Argument); ok {
			if err := na.SetName(cloneName(a.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

func cloneBody(src, dest *ir.Method, vmap ValueMap, locals *[]*ir.LocalVariable) error {
	if src.IsMutable() {
		for v := range src.LocalVariables().All() {
			if _, ok := vmap[v]; ok {
				continue
			}
			nv, err := dest.NewLocal(v.Stored(), v.Name())
			if err != nil {
				return err
			}
			*locals = append(*locals, nv)
			vmap[v] = nv
		}
	}

	for old := range src.Blocks().All() {
		nb, err := CloneBasicBlock(old, vmap)
		if err != nil {
			return err
		}
		if err := dest.Blocks().Append(nb); err != nil {
			release(nb)
			return err
		}
		vmap[old] = nb
	}

	for nb := range dest.Blocks().All() {
		for inst := range nb.Instructions().All() {
			if err := Remap(inst, vmap); err != nil {
				return err
			}
		}
	}
	return nil
}

// Remap rewrites every operand of u that vmap has an entry for.
func Remap(u ir.User, vmap ValueMap) error {
	for i, v := range u.Operands() {
		nv, ok := vmap[v]
		if !ok || v == nil {
			continue
		}
		if err := u.SetOperand(i, nv); err != nil {
			return err
		}
	}
	return nil
}
