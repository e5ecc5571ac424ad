// Package classpath loads descriptions of existing classes and serves them
// to an ir.Module as an ir.ClassSource.
//
// Class descriptors come from documents in YAML or CUE. Both carry a
// format version that must satisfy SupportedFormat:
//
//	format: "1.0.0"
//	classes:
//	  - name: java.util.Map
//	    modifiers: [public, interface, abstract]
//	    methods:
//	      - {name: size, descriptor: "()I", modifiers: [public, abstract]}
//
// The CUE form keys classes by binary name:
//
//	format: "1.0.0"
//	class: "java.util.Map": {
//		modifiers: ["public", "interface", "abstract"]
//		methods: [{name: "size", descriptor: "()I", modifiers: ["public", "abstract"]}]
//	}
//
// Descriptor strings are not resolved here. A member whose types the
// module cannot resolve is skipped when its klass is first used.
//
// Platform returns the embedded description of the runtime classes the
// tools rely on (collections, method handles, Math, StringBuilder).
package classpath
