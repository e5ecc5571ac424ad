// Package methods synthesizes common method bodies on mutable klasses.
//
//   - CreateDefaultConstructor: a no-argument constructor chaining to the
//     superclass constructor.
//   - StaticFinalFieldInitializer: a <clinit> that fills private static
//     final fields with host values passed through a Trampoline.
//   - InvokeExactFromField: a method forwarding its arguments to a
//     MethodHandle stored in a field.
//
// The trampoline is a process-local key/value table bound to a static
// java.util.Map field. Generated code removes its value from the map by
// key, so an initializer is only meaningful in the process that created
// it.
package methods
