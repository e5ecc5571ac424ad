// Package ir provides the in-memory intermediate representation for
// object-oriented, JVM-style bytecode.
//
// The package is the foundational layer: every other internal package
// imports ir, and ir imports nothing internal. It contains
//   - the interned type system (TypeFactory and the Type variants)
//   - the Value/Use/User graph with bidirectional def-use bookkeeping
//   - parented intrusive lists that own klasses, fields, methods, blocks,
//     local variables and instructions
//   - the closed instruction set and its local operand type checks
//   - the entity model (Module, Klass, Field, Method, BasicBlock)
//
// Key design constraints:
//   - Types and constants are interned per Module, so identity is equality
//   - A Use is owned by exactly one operand slot of one User and is mirrored
//     in the use-set of the Value it points to
//   - Every operand write is type-checked before it is committed; a failed
//     check leaves the graph unchanged
//   - Descriptor-backed klasses are immutable and populate their members
//     lazily on first access
//
// The package is single-writer. Concurrent mutation of a Module requires
// external synchronization.
package ir
