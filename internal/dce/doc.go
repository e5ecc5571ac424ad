// Package dce removes dead code from IR method bodies.
//
// An Eliminator applies six rewrite rules until none of them fires:
//
//   - UnusedInstructions: erases unused instructions without side effects.
//     Integral division and remainder stay unless the divisor is a nonzero
//     constant; only local-variable loads are removed, field and array
//     loads are kept.
//   - BoxUnbox: replaces wrapper.valueOf(x).primValue() by x.
//   - DeadCasts: replaces a cast to the operand's own type by the operand.
//   - DeadStores: erases a local-variable store with no load of the same
//     variable on any path that follows it.
//   - UnusedPureCalls: erases unused calls to allow-listed pure methods.
//   - UselessPhis: replaces a phi that can only select one value, looking
//     through other phis, by that value.
//
// Every rule runs to a fixpoint over a block, and the block and method
// runners repeat until a whole pass makes no change, so a second run over
// the same method always reports no change.
//
// Errors from the ir package are returned unchanged and abort the pass.
// A rule that finds nothing to rewrite is not an error.
package dce
